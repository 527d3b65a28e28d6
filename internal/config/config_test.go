//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/cache",
			expected: filepath.Join(home, "cache"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/.local/share/reels/cache.db",
			expected: filepath.Join(home, ".local", "share", "reels", "cache.db"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/var/cache/reels",
			expected: "/var/cache/reels",
		},
		{
			name:     "relative path unchanged",
			input:    "cache/reels.db",
			expected: "cache/reels.db",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "reels", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestDefaults(t *testing.T) {
	cfg := Config{}

	vp := cfg.GetViewportConfig()
	if vp.VisiblePercent != 40 {
		t.Errorf("VisiblePercent = %v, want 40", vp.VisiblePercent)
	}
	if vp.MinDwell != 50*time.Millisecond {
		t.Errorf("MinDwell = %v, want 50ms", vp.MinDwell)
	}

	pb := cfg.GetPlaybackConfig()
	if pb.RetryCeiling != 3 {
		t.Errorf("RetryCeiling = %d, want 3", pb.RetryCeiling)
	}
	if pb.WindowBehind != 1 || pb.WindowAhead != 3 {
		t.Errorf("window = -%d/+%d, want -1/+3", pb.WindowBehind, pb.WindowAhead)
	}
	if pb.MaxLoops != 2 {
		t.Errorf("MaxLoops = %d, want 2", pb.MaxLoops)
	}
	if pb.LoopDebounce != time.Second {
		t.Errorf("LoopDebounce = %v, want 1s", pb.LoopDebounce)
	}
	if !pb.AutoRemoveUnplayable {
		t.Error("AutoRemoveUnplayable = false, want true")
	}

	sc := cfg.GetSchedulerConfig()
	if !sc.PauseWhileSeeking {
		t.Error("PauseWhileSeeking = false, want true")
	}
	if sc.LoadMoreThreshold != 3 {
		t.Errorf("LoadMoreThreshold = %d, want 3", sc.LoadMoreThreshold)
	}
	if sc.AutoAdvance {
		t.Error("AutoAdvance = true, want false")
	}

	if cfg.GetFeedConfig().PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.GetFeedConfig().PageSize)
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() = false, want true")
	}
	if cfg.CacheMaxBytes() != 512_000_000 {
		t.Errorf("CacheMaxBytes() = %d, want 512000000", cfg.CacheMaxBytes())
	}
	if cfg.CacheTimeout() != 100*time.Millisecond {
		t.Errorf("CacheTimeout() = %v, want 100ms", cfg.CacheTimeout())
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("LogLevel() = %q, want info", cfg.LogLevel())
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	negative := -1
	cfg := Config{
		Viewport: ViewportConfig{VisiblePercent: 150, MinDwell: "soon"},
		Playback: PlaybackConfig{
			RetryCeiling: -2,
			WindowAhead:  &negative,
			LoopDebounce: "-1s",
		},
		Cache: CacheConfig{MaxSize: "lots"},
	}

	if got := cfg.GetViewportConfig(); got.VisiblePercent != 40 || got.MinDwell != 50*time.Millisecond {
		t.Errorf("GetViewportConfig() = %+v, want defaults", got)
	}
	pb := cfg.GetPlaybackConfig()
	if pb.RetryCeiling != 3 || pb.WindowAhead != 3 || pb.LoopDebounce != time.Second {
		t.Errorf("GetPlaybackConfig() = %+v, want defaults", pb)
	}
	if cfg.CacheMaxBytes() != 512_000_000 {
		t.Errorf("CacheMaxBytes() = %d, want default", cfg.CacheMaxBytes())
	}
}

func TestExplicitZeroesAreKept(t *testing.T) {
	zero := 0
	off := false
	cfg := Config{
		Playback: PlaybackConfig{
			WindowBehind:         &zero,
			MaxLoops:             &zero,
			PauseWhileSeeking:    &off,
			AutoRemoveUnplayable: &off,
		},
		Cache: CacheConfig{Enabled: &off},
	}

	pb := cfg.GetPlaybackConfig()
	if pb.WindowBehind != 0 {
		t.Errorf("WindowBehind = %d, want 0", pb.WindowBehind)
	}
	if pb.MaxLoops != 0 {
		t.Errorf("MaxLoops = %d, want 0 (loop forever)", pb.MaxLoops)
	}
	if pb.AutoRemoveUnplayable {
		t.Error("AutoRemoveUnplayable = true, want false")
	}
	if cfg.GetSchedulerConfig().PauseWhileSeeking {
		t.Error("PauseWhileSeeking = true, want false")
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true, want false")
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.toml")
	local := filepath.Join(dir, "local.toml")

	writeFile(t, global, `
[viewport]
visible_percent = 70
min_dwell = "200ms"

[playback]
retry_ceiling = 5
max_loops = 0

[log]
level = "DEBUG"
`)
	writeFile(t, local, `
[viewport]
visible_percent = 55

[cache]
path = "~/reels-cache.db"
max_size = "1 GiB"
`)

	cfg, err := LoadFrom(global, local, filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	vp := cfg.GetViewportConfig()
	if vp.VisiblePercent != 55 {
		t.Errorf("VisiblePercent = %v, want 55 (local wins)", vp.VisiblePercent)
	}
	if vp.MinDwell != 200*time.Millisecond {
		t.Errorf("MinDwell = %v, want 200ms", vp.MinDwell)
	}
	pb := cfg.GetPlaybackConfig()
	if pb.RetryCeiling != 5 || pb.MaxLoops != 0 {
		t.Errorf("playback = %+v, want ceiling 5 and endless loops", pb)
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %q, want debug", cfg.LogLevel())
	}
	if cfg.CacheMaxBytes() != 1<<30 {
		t.Errorf("CacheMaxBytes() = %d, want 1GiB", cfg.CacheMaxBytes())
	}
	if home, err := os.UserHomeDir(); err == nil {
		if want := filepath.Join(home, "reels-cache.db"); cfg.Cache.Path != want {
			t.Errorf("Cache.Path = %q, want %q", cfg.Cache.Path, want)
		}
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	writeFile(t, path, "[viewport\nvisible_percent = ")

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() succeeded on invalid TOML")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
