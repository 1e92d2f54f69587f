// Package popup frames modal content and draws it over the player screen.
package popup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tilawa/internal/ui/render"
	"github.com/llehouerou/tilawa/internal/ui/styles"
)

// Dialog is a titled box with a body and an optional footer.
type Dialog struct {
	Title  string
	Body   string
	Footer string
	// Width is the inner width; 0 fits the content.
	Width int
}

// Frame wraps content in the rounded popup border, capped to maxWidth.
func Frame(content string, maxWidth int) string {
	width := min(maxLineWidth(content), max(maxWidth-4, 1))
	return styles.BoxStyle().Width(width + 2).Render(content)
}

// Render returns the framed dialog.
func (d Dialog) Render(maxWidth int) string {
	s := styles.T().S()
	inner := d.Width
	if inner == 0 {
		inner = max(maxLineWidth(d.Body), lipgloss.Width(d.Title), lipgloss.Width(d.Footer))
	}
	inner = min(inner, max(maxWidth-4, 1))

	var lines []string
	if d.Title != "" {
		lines = append(lines, s.Title.Render(d.Title), "")
	}
	for line := range strings.SplitSeq(d.Body, "\n") {
		if lipgloss.Width(line) > inner {
			lines = append(lines, render.Wrap(line, inner)...)
			continue
		}
		lines = append(lines, line)
	}
	if d.Footer != "" {
		lines = append(lines, "", s.Subtle.Render(d.Footer))
	}
	return styles.BoxStyle().Width(inner + 2).Render(strings.Join(lines, "\n"))
}

// Overlay draws box centered over base.
func Overlay(base, box string, width, height int) string {
	return render.Center(base, box, width, height)
}

func maxLineWidth(s string) int {
	maxW := 0
	for line := range strings.SplitSeq(s, "\n") {
		maxW = max(maxW, lipgloss.Width(line))
	}
	return maxW
}
