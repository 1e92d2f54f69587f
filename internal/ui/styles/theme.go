package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles for the player.
type Theme struct {
	Primary   lipgloss.Color // current verse, active states
	Secondary lipgloss.Color // header gradient end, accents

	FgBase   lipgloss.Color // verse text
	FgMuted  lipgloss.Color // translations, metadata
	FgSubtle lipgloss.Color // hints, footers

	BgCursor lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color

	styles *Styles
}

// Styles contains pre-built lipgloss styles for common UI patterns.
type Styles struct {
	Base        lipgloss.Style
	Muted       lipgloss.Style
	Subtle      lipgloss.Style
	Title       lipgloss.Style
	Playing     lipgloss.Style // verse being recited
	Cursor      lipgloss.Style
	Number      lipgloss.Style // verse number gutter
	Translation lipgloss.Style
	Locked      lipgloss.Style // verses past the preview
	Success     lipgloss.Style
	Error       lipgloss.Style
	Warning     lipgloss.Style
}

var defaultTheme = Theme{
	Primary:   lipgloss.Color("#4fb286"),
	Secondary: lipgloss.Color("#e0b85a"),

	FgBase:   lipgloss.Color("#d0d0d0"),
	FgMuted:  lipgloss.Color("#8a8a8a"),
	FgSubtle: lipgloss.Color("#5c5c5c"),

	BgCursor: lipgloss.Color("#2e2e2e"),

	Border:      lipgloss.Color("#585858"),
	BorderFocus: lipgloss.Color("#4fb286"),

	Success: lipgloss.Color("#42b883"),
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#e0b85a"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	return &Styles{
		Base:   base,
		Muted:  lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle: lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title:  base.Bold(true),
		Playing: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(t.BgCursor).
			Foreground(t.FgBase),
		Number:      lipgloss.NewStyle().Foreground(t.Secondary),
		Translation: lipgloss.NewStyle().Foreground(t.FgMuted).Italic(true),
		Locked:      lipgloss.NewStyle().Foreground(t.FgSubtle),
		Success:     lipgloss.NewStyle().Foreground(t.Success),
		Error:       lipgloss.NewStyle().Foreground(t.Error),
		Warning:     lipgloss.NewStyle().Foreground(t.Warning),
	}
}
