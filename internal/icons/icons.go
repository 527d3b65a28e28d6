// Package icons holds the glyph sets of the overlay.
package icons

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the glyphs for one style.
type Icons struct {
	Like       string
	Liked      string
	Save       string
	Saved      string
	Unplayable string
	Warning    string
	Replay     string
	Loading    string
	Play       string
	Pause      string
	Muted      string
}

var (
	nerdIcons = Icons{
		Like:       "\U000F02D5", // nf-md-heart_outline
		Liked:      "\U000F02D1", // nf-md-heart
		Save:       "\U000F00C3", // nf-md-bookmark_outline
		Saved:      "\U000F00C0", // nf-md-bookmark
		Unplayable: "\U000F05D6", // nf-md-video_off
		Warning:    "\uf071",     // nf-fa-warning
		Replay:     "\U000F0459", // nf-md-replay
		Loading:    "\U000F051F", // nf-md-timer_sand
		Play:       "\uf04b",     // nf-fa-play
		Pause:      "\uf04c",     // nf-fa-pause
		Muted:      "\U000F075F", // nf-md-volume_off
	}

	unicodeIcons = Icons{
		Like:       "♡",
		Liked:      "♥",
		Save:       "☆",
		Saved:      "★",
		Unplayable: "✗",
		Warning:    "⚠",
		Replay:     "↻",
		Loading:    "…",
		Play:       "▶",
		Pause:      "⏸",
		Muted:      "muted",
	}

	noneIcons = Icons{
		Like:       "likes",
		Liked:      "liked",
		Save:       "saves",
		Saved:      "saved",
		Unplayable: "x",
		Warning:    "!",
		Replay:     "replay:",
		Loading:    "...",
		Play:       ">",
		Pause:      "||",
		Muted:      "muted",
	}

	// current holds the active icon set
	current = unicodeIcons
)

// Init selects the icon set. Call this once at startup with the config
// value. Unknown styles fall back to unicode.
func Init(style string) {
	current = For(style)
}

// For returns the icon set of style.
func For(style string) Icons {
	switch Style(style) {
	case StyleNerd:
		return nerdIcons
	case StyleNone:
		return noneIcons
	default:
		return unicodeIcons
	}
}

// Current returns the active icon set.
func Current() Icons {
	return current
}
