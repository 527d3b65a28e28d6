// Package replay runs scripted scroll traces against the scheduler without
// a screen. Each step of a trace is one tick of the loop.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/scheduler"
	"github.com/llehouerou/reels/internal/viewport"
)

// ErrEmptyStep is returned for a step that names no event.
var ErrEmptyStep = errors.New("step has no event")

// Trace is a scripted session.
type Trace struct {
	Name  string `yaml:"name"`
	Items int    `yaml:"items"` // synthetic items in the feed
	Steps []Step `yaml:"steps"`
}

// Step is one tick. Exactly one event field is expected, except Tick,
// which groups several events into the same tick.
type Step struct {
	Label string `yaml:"label"`

	Samples  []Sample `yaml:"samples"`
	Drag     string   `yaml:"drag"` // "begin" or "end"
	Momentum *int     `yaml:"momentum_end"`
	Navigate *Nav     `yaml:"navigate"`
	Relative int      `yaml:"relative"`
	Insert   string   `yaml:"insert"`
	Remove   string   `yaml:"remove"`
	Media    *Media   `yaml:"media"`
	Control  string   `yaml:"control"`
	Seek     string   `yaml:"seek"`
	Rate     float64  `yaml:"rate"`

	Foreground *bool `yaml:"foreground"`
	Focus      *bool `yaml:"focus"`

	Tick []Step `yaml:"tick"`
}

// Sample is a visibility report. ID defaults to the item at Index.
type Sample struct {
	ID      string  `yaml:"id"`
	Index   int     `yaml:"index"`
	Visible float64 `yaml:"visible"`
	Dwell   string  `yaml:"dwell"`
}

// Nav is an external navigation.
type Nav struct {
	ID    string `yaml:"id"`
	Index int    `yaml:"index"`
	Mode  string `yaml:"mode"` // "animated" (default) or "immediate"
}

// Media is a primitive callback. A zero generation means the current load.
type Media struct {
	Item       string `yaml:"item"`
	Kind       string `yaml:"kind"`
	Position   string `yaml:"position"`
	Duration   string `yaml:"duration"`
	Generation uint64 `yaml:"generation"`
}

// Load reads a trace file.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a trace.
func Parse(r io.Reader) (*Trace, error) {
	var t Trace
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if t.Items < 0 {
		return nil, fmt.Errorf("items must not be negative, got %d", t.Items)
	}
	for i, s := range t.Steps {
		if _, err := s.events(func(int) string { return "" }); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &t, nil
}

// events converts the step into scheduler events. idAt resolves sample
// indexes to ids.
func (s Step) events(idAt func(int) string) ([]scheduler.Event, error) {
	var out []scheduler.Event
	add := func(ev scheduler.Event) { out = append(out, ev) }

	if len(s.Samples) > 0 {
		samples := make([]viewport.Sample, 0, len(s.Samples))
		for _, smp := range s.Samples {
			dwell, err := duration(smp.Dwell)
			if err != nil {
				return nil, fmt.Errorf("sample dwell: %w", err)
			}
			id := smp.ID
			if id == "" {
				id = idAt(smp.Index)
			}
			samples = append(samples, viewport.Sample{
				ItemID: id, Index: smp.Index, VisiblePercent: smp.Visible, Dwell: dwell,
			})
		}
		add(scheduler.ViewportSamples{Samples: samples})
	}
	switch s.Drag {
	case "":
	case "begin":
		add(scheduler.DragBegan{})
	case "end":
		add(scheduler.DragEnded{})
	default:
		return nil, fmt.Errorf("unknown drag %q", s.Drag)
	}
	if s.Momentum != nil {
		add(scheduler.MomentumEnded{Index: *s.Momentum})
	}
	if s.Navigate != nil {
		mode, err := parseMode(s.Navigate.Mode)
		if err != nil {
			return nil, err
		}
		add(scheduler.Navigate{ID: s.Navigate.ID, Index: s.Navigate.Index, Mode: mode})
	}
	if s.Relative != 0 {
		add(scheduler.NavigateRelative{Delta: s.Relative})
	}
	if s.Insert != "" {
		add(scheduler.InsertItem{Item: feed.Uploaded(s.Insert)})
	}
	if s.Remove != "" {
		add(scheduler.RemoveItem{ID: s.Remove})
	}
	if s.Media != nil {
		ev, err := s.Media.event()
		if err != nil {
			return nil, err
		}
		add(scheduler.MediaEvent{Event: ev})
	}
	if s.Control != "" {
		ev, err := control(s.Control)
		if err != nil {
			return nil, err
		}
		add(ev)
	}
	if s.Seek != "" {
		pos, err := duration(s.Seek)
		if err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
		add(scheduler.SeekTo{Position: pos})
	}
	if s.Rate != 0 {
		add(scheduler.SetRate{Rate: s.Rate})
	}
	if s.Foreground != nil {
		add(scheduler.AppForegroundChanged{Foreground: *s.Foreground})
	}
	if s.Focus != nil {
		add(scheduler.ScreenFocusChanged{Focused: *s.Focus})
	}
	for _, child := range s.Tick {
		evs, err := child.events(idAt)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}

	if len(out) == 0 {
		return nil, ErrEmptyStep
	}
	return out, nil
}

func (m Media) event() (media.Event, error) {
	kind, err := parseKind(m.Kind)
	if err != nil {
		return media.Event{}, err
	}
	pos, err := duration(m.Position)
	if err != nil {
		return media.Event{}, fmt.Errorf("media position: %w", err)
	}
	dur, err := duration(m.Duration)
	if err != nil {
		return media.Event{}, fmt.Errorf("media duration: %w", err)
	}
	ev := media.Event{Kind: kind, ItemID: m.Item, Generation: m.Generation, Position: pos, Duration: dur}
	if kind == media.Error {
		ev.Err = errors.New("scripted media error")
	}
	return ev, nil
}

func parseKind(s string) (media.EventKind, error) {
	for k := media.Ready; k <= media.Buffered; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown media event %q", s)
}

func parseMode(s string) (reconcile.Mode, error) {
	switch strings.ToLower(s) {
	case "", "animated":
		return reconcile.Animated, nil
	case "immediate":
		return reconcile.Immediate, nil
	}
	return 0, fmt.Errorf("unknown navigation mode %q", s)
}

func control(name string) (scheduler.Event, error) {
	switch name {
	case "toggle_pause":
		return scheduler.TogglePause{}, nil
	case "pause":
		return scheduler.SetPaused{Paused: true}, nil
	case "resume":
		return scheduler.SetPaused{Paused: false}, nil
	case "toggle_mute":
		return scheduler.ToggleMute{}, nil
	case "mute":
		return scheduler.SetMuted{Muted: true}, nil
	case "unmute":
		return scheduler.SetMuted{Muted: false}, nil
	case "begin_seek":
		return scheduler.BeginSeek{}, nil
	case "retry":
		return scheduler.Retry{}, nil
	case "replay":
		return scheduler.Replay{}, nil
	}
	return nil, fmt.Errorf("unknown control %q", name)
}

func duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
