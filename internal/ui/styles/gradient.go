package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Gradient renders bold text blended from the theme's primary to its
// secondary color.
func Gradient(text string) string {
	t := T()
	return ApplyGradient(text, t.Primary, t.Secondary, true)
}

// ApplyGradient renders text with a horizontal color gradient. Colors are
// assigned per grapheme cluster so combining marks keep their base letter's
// color.
func ApplyGradient(text string, from, to lipgloss.Color, bold bool) string {
	clusters := graphemes(text)
	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return lipgloss.NewStyle().Foreground(from).Bold(bold).Render(text)
	}

	colors := blend(len(clusters), from, to)
	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors[i].Hex())).
			Bold(bold)
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

func graphemes(text string) []string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	return clusters
}

// blend returns size colors between from and to, blended in HCL space.
func blend(size int, from, to lipgloss.Color) []colorful.Color {
	c1 := toColorful(from)
	c2 := toColorful(to)
	colors := make([]colorful.Color, size)
	for i := range size {
		colors[i] = c1.BlendHcl(c2, float64(i)/float64(size-1)).Clamped()
	}
	return colors
}

// toColorful parses a "#rrggbb" color. ANSI palette indexes fall back to gray.
func toColorful(c lipgloss.Color) colorful.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	gray, _ := colorful.MakeColor(color.Gray{Y: 128})
	return gray
}
