package keymap

import "github.com/charmbracelet/bubbles/key"

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "scroll", "navigation", "playback", "feed"
}

// Bindings contains all key bindings.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", "global"},
	{ActionHelp, []string{"?"}, "help", "global"},
	{ActionToggleFocus, []string{"tab"}, "toggle screen focus", "global"},
	{ActionBackground, []string{"b"}, "toggle background", "global"},

	// Scroll
	{ActionDragDown, []string{"j", "down"}, "drag down", "scroll"},
	{ActionDragUp, []string{"k", "up"}, "drag up", "scroll"},
	{ActionSwipeDown, []string{"J", "pgdown"}, "swipe down", "scroll"},
	{ActionSwipeUp, []string{"K", "pgup"}, "swipe up", "scroll"},

	// Navigation
	{ActionNext, []string{"n"}, "next item", "navigation"},
	{ActionPrev, []string{"p"}, "previous item", "navigation"},
	{ActionJumpStart, []string{"g", "home"}, "first item", "navigation"},
	{ActionJumpEnd, []string{"G", "end"}, "last item", "navigation"},

	// Playback
	{ActionPlayPause, []string{" ", "space"}, "play/pause", "playback"},
	{ActionMute, []string{"m"}, "mute", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "seek +5s", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "seek -5s", "playback"},
	{ActionFaster, []string{"]"}, "faster", "playback"},
	{ActionSlower, []string{"["}, "slower", "playback"},
	{ActionRetry, []string{"r"}, "retry", "playback"},
	{ActionReplay, []string{"R"}, "replay", "playback"},

	// Feed
	{ActionUpload, []string{"u"}, "simulate upload", "feed"},
	{ActionRemove, []string{"x"}, "remove item", "feed"},
	{ActionRefresh, []string{"ctrl+r"}, "refresh", "feed"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// Key converts b to a bubbles key binding for help rendering.
func (b Binding) Key() key.Binding {
	keys := b.Keys
	label := keys[0]
	if label == " " && len(keys) > 1 {
		label = keys[1]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, b.Description))
}

// Help implements help.KeyMap over a set of bindings.
type Help struct {
	Short []Binding
	Full  [][]Binding
}

// DefaultHelp shows the gestures in the short view and every context in
// the full view.
func DefaultHelp() Help {
	return Help{
		Short: []Binding{
			find(ActionSwipeDown), find(ActionSwipeUp), find(ActionPlayPause),
			find(ActionUpload), find(ActionHelp), find(ActionQuit),
		},
		Full: [][]Binding{
			ByContext("scroll"),
			ByContext("navigation"),
			ByContext("playback"),
			append(ByContext("feed"), ByContext("global")...),
		},
	}
}

// ShortHelp returns the one-line bindings.
func (h Help) ShortHelp() []key.Binding {
	return toKeys(h.Short)
}

// FullHelp returns the bindings grouped in columns.
func (h Help) FullHelp() [][]key.Binding {
	cols := make([][]key.Binding, 0, len(h.Full))
	for _, col := range h.Full {
		cols = append(cols, toKeys(col))
	}
	return cols
}

func toKeys(bindings []Binding) []key.Binding {
	keys := make([]key.Binding, 0, len(bindings))
	for _, b := range bindings {
		keys = append(keys, b.Key())
	}
	return keys
}

func find(action Action) Binding {
	for _, b := range Bindings {
		if b.Action == action {
			return b
		}
	}
	return Binding{Action: action, Keys: []string{""}}
}
