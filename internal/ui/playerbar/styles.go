package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tilawa/internal/ui/styles"
)

var barStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

func titleStyle() lipgloss.Style        { return styles.T().S().Title }
func metaStyle() lipgloss.Style         { return styles.T().S().Muted }
func progressTimeStyle() lipgloss.Style { return styles.T().S().Subtle }
func progressBarFilled() lipgloss.Style { return lipgloss.NewStyle().Foreground(styles.T().Primary) }
func progressBarEmpty() lipgloss.Style  { return lipgloss.NewStyle().Foreground(styles.T().FgSubtle) }
func statusStyle() lipgloss.Style       { return styles.T().S().Warning }
