// Package headerbar renders the one-line title above the verse panel.
package headerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/tilawa/internal/ui/render"
	"github.com/llehouerou/tilawa/internal/ui/styles"
)

// Height is the fixed height of the header bar (single line).
const Height = 1

// Info describes the surah shown in the header.
type Info struct {
	Number      int
	Name        string // transliterated name, e.g. "Al-Fatiha"
	ArabicName  string
	TotalVerses int
}

// Render returns the header for the given width: the surah title on the
// left and a help hint on the right.
func Render(info Info, width int) string {
	if width < 20 {
		return ""
	}
	t := styles.T()

	name := info.Name
	if name == "" {
		name = fmt.Sprintf("Surah %d", info.Number)
	}
	title := styles.Gradient(fmt.Sprintf("%d. %s", info.Number, render.Sanitize(name)))

	var meta []string
	if info.ArabicName != "" {
		meta = append(meta, render.Sanitize(info.ArabicName))
	}
	if info.TotalVerses > 0 {
		meta = append(meta, fmt.Sprintf("%d verses", info.TotalVerses))
	}
	left := title
	if len(meta) > 0 {
		left += t.S().Muted.Render("  " + strings.Join(meta, " · "))
	}

	hint := t.S().Subtle.Render("? help")
	if lipgloss.Width(left)+lipgloss.Width(hint)+1 > width {
		return ansi.Truncate(left, width, "…")
	}
	return render.Row(left, hint, width)
}
