package styles

import "github.com/charmbracelet/lipgloss"

// PanelStyle returns the rounded panel border, highlighted while playing.
func PanelStyle(active bool) lipgloss.Style {
	t := T()
	color := t.Border
	if active {
		color = t.BorderFocus
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color)
}

// BoxStyle is the bordered box used for popups and notices.
func BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(T().Border).
		Padding(0, 1)
}
