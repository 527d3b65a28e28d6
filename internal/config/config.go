package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/scheduler"
	"github.com/llehouerou/reels/internal/viewport"
)

type Config struct {
	Icons    string         `koanf:"icons"` // "nerd", "unicode", or "none" (default: "unicode")
	Viewport ViewportConfig `koanf:"viewport"`
	Playback PlaybackConfig `koanf:"playback"`
	Feed     FeedConfig     `koanf:"feed"`
	Cache    CacheConfig    `koanf:"cache"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ViewportConfig holds the activation thresholds of the visibility tracker.
type ViewportConfig struct {
	VisiblePercent float64 `koanf:"visible_percent"` // minimum visible fraction, 0-100 (default: 40)
	MinDwell       string  `koanf:"min_dwell"`       // minimum time on screen (default: "50ms")
}

// PlaybackConfig holds the playback controller settings.
type PlaybackConfig struct {
	RetryCeiling         int    `koanf:"retry_ceiling"`          // failed loads before an item is unplayable (default: 3)
	WindowBehind         *int   `koanf:"window_behind"`          // runtimes kept before the active item (default: 1)
	WindowAhead          *int   `koanf:"window_ahead"`           // runtimes kept after the active item (default: 3)
	MaxLoops             *int   `koanf:"max_loops"`              // passes before an item finishes, 0 loops forever (default: 2)
	LoopDebounce         string `koanf:"loop_debounce"`          // minimum time between two loops (default: "1s")
	PauseWhileSeeking    *bool  `koanf:"pause_while_seeking"`    // (default: true)
	AutoRemoveUnplayable *bool  `koanf:"auto_remove_unplayable"` // (default: true)
	AutoAdvance          bool   `koanf:"auto_advance"`           // move on when an item finishes (default: false)
}

// FeedConfig holds paging settings.
type FeedConfig struct {
	LoadMoreThreshold int `koanf:"load_more_threshold"` // items from the end that trigger a page load (default: 3)
	PageSize          int `koanf:"page_size"`           // items per page (default: 10)
}

// CacheConfig holds the media cache settings.
type CacheConfig struct {
	Enabled *bool  `koanf:"enabled"`  // (default: true)
	Path    string `koanf:"path"`     // index database, empty means the XDG data dir
	MaxSize string `koanf:"max_size"` // e.g. "512MB" (default: "512MB")
	Timeout string `koanf:"timeout"`  // lookup budget on activation (default: "100ms")
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File  string `koanf:"file"`  // log file, empty means the XDG state dir
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `koanf:"addr"` // listen address, empty disables the endpoint
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given files in order; later files win. Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/reels/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "reels", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func intOr(p *int, def int) int {
	if p == nil || *p < 0 {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// GetViewportConfig returns the tracker thresholds with defaults applied.
func (c *Config) GetViewportConfig() viewport.Config {
	cfg := viewport.Config{
		VisiblePercent: c.Viewport.VisiblePercent,
		MinDwell:       parseDuration(c.Viewport.MinDwell, 50*time.Millisecond),
	}
	if cfg.VisiblePercent <= 0 || cfg.VisiblePercent > 100 {
		cfg.VisiblePercent = 40
	}
	return cfg
}

// GetPlaybackConfig returns the controller settings with defaults applied.
func (c *Config) GetPlaybackConfig() playback.Config {
	def := playback.DefaultConfig()
	p := c.Playback

	cfg := playback.Config{
		RetryCeiling:         p.RetryCeiling,
		WindowBehind:         intOr(p.WindowBehind, def.WindowBehind),
		WindowAhead:          intOr(p.WindowAhead, def.WindowAhead),
		MaxLoops:             intOr(p.MaxLoops, def.MaxLoops),
		LoopDebounce:         parseDuration(p.LoopDebounce, def.LoopDebounce),
		AutoRemoveUnplayable: boolOr(p.AutoRemoveUnplayable, def.AutoRemoveUnplayable),
	}
	if cfg.RetryCeiling <= 0 {
		cfg.RetryCeiling = def.RetryCeiling
	}
	return cfg
}

// GetFeedConfig returns the paging settings with defaults applied.
func (c *Config) GetFeedConfig() FeedConfig {
	cfg := c.Feed
	if cfg.LoadMoreThreshold <= 0 {
		cfg.LoadMoreThreshold = 3
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return cfg
}

// GetSchedulerConfig assembles the scheduler tunables.
func (c *Config) GetSchedulerConfig() scheduler.Config {
	return scheduler.Config{
		Viewport:          c.GetViewportConfig(),
		Playback:          c.GetPlaybackConfig(),
		PauseWhileSeeking: boolOr(c.Playback.PauseWhileSeeking, true),
		LoadMoreThreshold: c.GetFeedConfig().LoadMoreThreshold,
		AutoAdvance:       c.Playback.AutoAdvance,
	}
}

// CacheEnabled reports whether the media cache is used.
func (c *Config) CacheEnabled() bool {
	return boolOr(c.Cache.Enabled, true)
}

// CacheMaxBytes returns the cache size limit in bytes.
func (c *Config) CacheMaxBytes() int64 {
	const def = 512 * 1000 * 1000
	if c.Cache.MaxSize == "" {
		return def
	}
	n, err := humanize.ParseBytes(c.Cache.MaxSize)
	if err != nil || n == 0 {
		return def
	}
	return int64(n)
}

// CacheTimeout returns the lookup budget of the cache resolver.
func (c *Config) CacheTimeout() time.Duration {
	return parseDuration(c.Cache.Timeout, 100*time.Millisecond)
}

// LogLevel returns the configured level, "info" when unset.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}
