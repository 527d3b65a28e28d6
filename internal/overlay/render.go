package overlay

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/reels/internal/icons"
	"github.com/llehouerou/reels/internal/playback"
)

const (
	filledBlock = "▓"
	emptyBlock  = "░"
)

// Renderer draws Views as terminal text.
type Renderer struct {
	theme  Theme
	st     styles
	glyphs icons.Icons
}

// NewRenderer creates a renderer for theme using the active icon set.
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme, st: theme.styles(), glyphs: icons.Current()}
}

// WithIcons returns a copy of r drawing with set.
func (r *Renderer) WithIcons(set icons.Icons) *Renderer {
	c := *r
	c.glyphs = set
	return &c
}

// Render draws v with the default theme.
func Render(v View, width int) string {
	return NewRenderer(DefaultTheme).Render(v, width)
}

// Render draws v into at most width columns. An invisible view renders as
// the empty string. While a scrub is in progress only the progress bar is
// drawn.
func (r *Renderer) Render(v View, width int) string {
	if !v.Visible || width <= 0 {
		return ""
	}

	bar := r.progressLine(v, width)
	if v.ChromeHidden {
		return bar
	}

	var lines []string
	lines = append(lines, r.header(v, width))
	if v.Description != "" {
		desc := r.st.text.Width(width).Render(v.Description)
		lines = append(lines, desc)
	}
	lines = append(lines, r.counters(v))
	if status := r.status(v); status != "" {
		lines = append(lines, status)
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (r *Renderer) header(v View, width int) string {
	author := v.Author
	if author == "" {
		author = "unknown"
	}
	tag := ""
	if v.Preview {
		tag = "  · preview"
	}
	handle := runewidth.Truncate("@"+author, max(width-runewidth.StringWidth(tag), 2), "…")
	h := gradient(handle, r.theme.AuthorFrom, r.theme.AuthorTo)
	if tag != "" {
		h += r.st.subtle.Render(tag)
	}
	return h
}

func (r *Renderer) counters(v View) string {
	g := r.glyphs
	like := r.st.muted.Render(g.Like + " " + humanize.Comma(v.Interaction.LikeCount))
	if v.Interaction.Liked {
		like = r.st.liked.Render(g.Liked + " " + humanize.Comma(v.Interaction.LikeCount))
	}
	save := r.st.muted.Render(g.Save + " " + humanize.Comma(v.Interaction.SaveCount))
	if v.Interaction.Saved {
		save = r.st.saved.Render(g.Saved + " " + humanize.Comma(v.Interaction.SaveCount))
	}
	return like + "  " + save
}

func (r *Renderer) status(v View) string {
	g := r.glyphs
	switch {
	case v.Unplayable:
		return r.st.err.Render(g.Unplayable + " can't play this video")
	case v.ShowRetry:
		msg := g.Warning + " " + v.ErrorText
		return r.st.err.Render(msg) + r.st.muted.Render(
			fmt.Sprintf("  [r] retry (%d left)", v.RetriesLeft))
	case v.State == playback.StateError:
		return r.st.err.Render(g.Warning + " " + v.ErrorText)
	case v.ShowReplay:
		return r.st.accent.Render(g.Replay + " replay")
	case v.Loading:
		return r.st.warning.Render(g.Loading + " loading")
	}
	return ""
}

func (r *Renderer) progressLine(v View, width int) string {
	var tags []string
	if v.Muted {
		tags = append(tags, r.glyphs.Muted)
	}
	if v.Rate != 0 && v.Rate != 1 {
		tags = append(tags, fmt.Sprintf("%gx", v.Rate))
	}
	suffix := ""
	if len(tags) > 0 {
		suffix = "  " + strings.Join(tags, " ")
	}
	playing := v.State == playback.StatePlaying && !v.Paused
	bar := progressBar(r.glyphs, v.Position, v.Duration, width-lipgloss.Width(suffix), playing)
	return bar + r.st.subtle.Render(suffix)
}

// ProgressBar renders a block progress bar such as
// "▶  1:23  ▓▓▓▓▓░░░░░  4:56" with the active icon set. Below three cells
// of bar only the times are shown.
func ProgressBar(position, duration time.Duration, width int, playing bool) string {
	return progressBar(icons.Current(), position, duration, width, playing)
}

func progressBar(g icons.Icons, position, duration time.Duration, width int, playing bool) string {
	status := g.Play
	if !playing {
		status = g.Pause
	}
	pos := formatDuration(position)
	dur := formatDuration(duration)

	fixed := lipgloss.Width(status) + lipgloss.Width(pos) + lipgloss.Width(dur) + 6
	barWidth := width - fixed
	if barWidth < 3 {
		return status + "  " + pos + " / " + dur
	}

	var ratio float64
	if duration > 0 {
		ratio = min(max(float64(position)/float64(duration), 0), 1)
	}
	filled := int(float64(barWidth) * ratio)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, barWidth-filled)

	return status + "  " + pos + "  " + bar + "  " + dur
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
