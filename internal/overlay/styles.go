package overlay

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Theme is the overlay palette.
type Theme struct {
	AuthorFrom lipgloss.Color
	AuthorTo   lipgloss.Color

	Text   lipgloss.Color
	Muted  lipgloss.Color
	Subtle lipgloss.Color

	Liked lipgloss.Color
	Saved lipgloss.Color

	Error   lipgloss.Color
	Warning lipgloss.Color
	Accent  lipgloss.Color
}

// DefaultTheme is used when a Renderer is built without one.
var DefaultTheme = Theme{
	AuthorFrom: lipgloss.Color("#a78bfa"),
	AuthorTo:   lipgloss.Color("#f1a208"),
	Text:       lipgloss.Color("#e0e0e0"),
	Muted:      lipgloss.Color("#909090"),
	Subtle:     lipgloss.Color("#585858"),
	Liked:      lipgloss.Color("#ff5f87"),
	Saved:      lipgloss.Color("#f1a208"),
	Error:      lipgloss.Color("#ff5555"),
	Warning:    lipgloss.Color("#f1a208"),
	Accent:     lipgloss.Color("#42b883"),
}

type styles struct {
	text    lipgloss.Style
	muted   lipgloss.Style
	subtle  lipgloss.Style
	liked   lipgloss.Style
	saved   lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	accent  lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		text:    lipgloss.NewStyle().Foreground(t.Text),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
		subtle:  lipgloss.NewStyle().Foreground(t.Subtle),
		liked:   lipgloss.NewStyle().Foreground(t.Liked).Bold(true),
		saved:   lipgloss.NewStyle().Foreground(t.Saved).Bold(true),
		err:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		warning: lipgloss.NewStyle().Foreground(t.Warning),
		accent:  lipgloss.NewStyle().Foreground(t.Accent),
	}
}

// gradient renders bold text blended from one color to another, one
// grapheme cluster at a time.
func gradient(text string, from, to lipgloss.Color) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return lipgloss.NewStyle().Foreground(from).Bold(true).Render(text)
	}

	c1 := toColorful(from)
	c2 := toColorful(to)
	last := float64(len(clusters) - 1)

	var b strings.Builder
	for i, cluster := range clusters {
		c := c1.BlendHcl(c2, float64(i)/last).Clamped()
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Hex())).
			Bold(true).
			Render(cluster))
	}
	return b.String()
}

// toColorful parses a #rrggbb color. ANSI palette indexes blend as gray.
func toColorful(c lipgloss.Color) colorful.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	gray, _ := colorful.MakeColor(color.Gray{Y: 128})
	return gray
}
