package icons

import (
	"testing"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		expected Icons
	}{
		{"nerd style", "nerd", nerdIcons},
		{"unicode style", "unicode", unicodeIcons},
		{"none style", "none", noneIcons},
		{"empty string defaults to unicode", "", unicodeIcons},
		{"unknown style defaults to unicode", "invalid", unicodeIcons},
		{"case sensitive - NERD defaults to unicode", "NERD", unicodeIcons},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.style)
			if Current() != tt.expected {
				t.Errorf("Init(%q) selected the wrong set", tt.style)
			}
		})
	}

	// Reset to default
	Init("unicode")
}

func TestSetsAreComplete(t *testing.T) {
	for _, style := range []Style{StyleNerd, StyleUnicode, StyleNone} {
		t.Run(string(style), func(t *testing.T) {
			s := For(string(style))
			for name, glyph := range map[string]string{
				"Like": s.Like, "Liked": s.Liked, "Save": s.Save, "Saved": s.Saved,
				"Unplayable": s.Unplayable, "Warning": s.Warning, "Replay": s.Replay,
				"Loading": s.Loading, "Play": s.Play, "Pause": s.Pause, "Muted": s.Muted,
			} {
				if glyph == "" {
					t.Errorf("%s is empty", name)
				}
			}
			if s.Like == s.Liked {
				t.Error("liked and not liked must differ")
			}
			if s.Play == s.Pause {
				t.Error("play and pause must differ")
			}
		})
	}
}

func TestNoneIsASCII(t *testing.T) {
	s := For("none")
	for _, glyph := range []string{
		s.Like, s.Liked, s.Save, s.Saved, s.Unplayable, s.Warning,
		s.Replay, s.Loading, s.Play, s.Pause, s.Muted,
	} {
		for _, r := range glyph {
			if r > 127 {
				t.Errorf("%q is not ASCII", glyph)
			}
		}
	}
}
