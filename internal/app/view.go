package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/icons"
	"github.com/llehouerou/reels/internal/playback"
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#585858")).
	Align(lipgloss.Center, lipgloss.Center)

var (
	activeBorder = lipgloss.Color("#a78bfa")
	thumbStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#585858"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1a208"))
)

// View renders the list, the overlay over the active item and the status
// line.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	h := m.surface.PageHeight()
	list := m.renderList(h)

	if chrome := m.overlay.View(); chrome != "" {
		snap := m.feed.Store().Snapshot()
		top := snap.ActiveIndex*h - m.surface.Offset()
		blockHeight := lipgloss.Height(chrome)
		row := top + h - 1 - blockHeight
		if top >= 0 && row >= 1 && row+blockHeight <= h {
			list = placeBlock(list, chrome, row, 2, m.width)
		}
	}

	parts := []string{list, m.renderStatus()}
	if m.help.ShowAll {
		parts = append(parts, m.help.View(m.helpKeys))
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderList(h int) string {
	blank := strings.Repeat(" ", m.width)
	cards := make(map[int][]string)
	lines := make([]string, h)
	for r := range h {
		index, row, ok := m.surface.Row(r)
		if !ok {
			lines[r] = blank
			continue
		}
		card, found := cards[index]
		if !found {
			card = m.renderCard(index, h)
			cards[index] = card
		}
		if row < len(card) {
			lines[r] = card[row]
		} else {
			lines[r] = blank
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCard(index, h int) []string {
	item, ok := m.feed.Sequence().At(index)
	if !ok {
		return nil
	}
	active := m.feed.Store().ActiveID() == item.ID
	state := playback.StateIdle
	if rt, ok := m.feed.Playback().Runtime(item.ID); ok {
		state = rt.State
	}

	style := cardStyle.Width(max(m.width-2, 1)).Height(max(h-2, 1))
	if active {
		style = style.BorderForeground(activeBorder)
	}
	body := fmt.Sprintf("#%d  %s\n\n%s\n\n%s",
		index, item.ID, thumbStyle.Render(thumbnail(item)), stateGlyph(state))
	return strings.Split(style.Render(body), "\n")
}

func thumbnail(item feed.Item) string {
	if item.ThumbnailURI == "" {
		return "[ no preview ]"
	}
	name := item.ThumbnailURI[strings.LastIndex(item.ThumbnailURI, "/")+1:]
	return "[ " + name + " ]"
}

func stateGlyph(s playback.State) string {
	g := icons.Current()
	switch s {
	case playback.StatePlaying:
		return g.Play + " playing"
	case playback.StatePaused:
		return g.Pause + " paused"
	case playback.StateLoading:
		return g.Loading + " loading"
	case playback.StateFinished:
		return g.Replay + " finished"
	case playback.StateError:
		return g.Warning + " error"
	default:
		return "·"
	}
}

func (m Model) renderStatus() string {
	seq := m.feed.Sequence()
	snap := m.feed.Store().Snapshot()

	pos := "-"
	if snap.HasActive() {
		pos = fmt.Sprintf("%d/%d", snap.ActiveIndex+1, seq.Len())
	}
	fields := []string{pos}
	if seq.HasMore() {
		fields = append(fields, "more")
	}
	if m.uploads > 0 {
		fields = append(fields, fmt.Sprintf("%d uploaded", m.uploads))
	}
	status := statusStyle.Render(strings.Join(fields, " · "))

	var flags []string
	if !m.focused {
		flags = append(flags, "unfocused")
	}
	if !m.foreground {
		flags = append(flags, "background")
	}
	if len(flags) > 0 {
		status += "  " + warnStyle.Render(strings.Join(flags, " "))
	}

	if !m.help.ShowAll {
		status += "   " + m.help.ShortHelpView(m.helpKeys.ShortHelp())
	}
	return ansi.Truncate(status, m.width, "…")
}
