package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Center places box in the middle of a width x height base view. Styled
// text on either side of the box is preserved.
func Center(base, box string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	boxLines := strings.Split(box, "\n")

	boxWidth := 0
	for _, l := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}
	top := max((height-len(boxLines))/2, 0)
	left := max((width-boxWidth)/2, 0)

	for i, boxLine := range boxLines {
		row := top + i
		if row >= len(baseLines) {
			break
		}
		line := baseLines[row]
		if w := ansi.StringWidth(line); w < width {
			line += strings.Repeat(" ", width-w)
		}
		right := left + ansi.StringWidth(boxLine)
		baseLines[row] = ansi.Cut(line, 0, left) + boxLine + ansi.Cut(line, right, width)
	}
	return strings.Join(baseLines, "\n")
}
