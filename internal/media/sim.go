package media

import (
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"
)

// ErrSimulatedFailure is reported by Sim for sources marked as broken.
var ErrSimulatedFailure = errors.New("simulated decode failure")

// SimConfig tunes the simulated primitive.
type SimConfig struct {
	Tick        time.Duration // progress interval
	LoadDelay   time.Duration // time from Load to Ready
	MinDuration time.Duration
	MaxDuration time.Duration
	FailMarker  string // URIs containing it fail to load
	StallMarker string // URIs containing it stall halfway through
}

// DefaultSimConfig returns the settings used by the demo.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Tick:        250 * time.Millisecond,
		LoadDelay:   300 * time.Millisecond,
		MinDuration: 6 * time.Second,
		MaxDuration: 20 * time.Second,
		FailMarker:  "broken",
		StallMarker: "stall",
	}
}

// Sim is a clock-driven primitive that behaves like a decoder without
// decoding anything. It backs the terminal demo.
type Sim struct {
	cfg  SimConfig
	sink Sink

	mu       sync.Mutex
	itemID   string
	src      Source
	loading  bool
	loadLeft time.Duration
	loaded   bool
	playing  bool
	stalled  bool
	muted    bool
	rate     float64
	pos      time.Duration
	dur      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSimFactory returns a Factory producing Sims.
func NewSimFactory(cfg SimConfig) Factory {
	return func(itemID string, sink Sink) Primitive {
		return NewSim(itemID, sink, cfg)
	}
}

// NewSim creates a simulated primitive and starts its clock.
func NewSim(itemID string, sink Sink, cfg SimConfig) *Sim {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultSimConfig().Tick
	}
	s := &Sim{
		cfg:    cfg,
		sink:   sink,
		itemID: itemID,
		rate:   1.0,
		stop:   make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Sim) loop() {
	t := time.NewTicker(s.cfg.Tick)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.tick()
		}
	}
}

func (s *Sim) tick() {
	s.mu.Lock()
	var events []Event
	base := Event{ItemID: s.itemID, Generation: s.src.Generation}

	switch {
	case s.loading:
		s.loadLeft -= s.cfg.Tick
		if s.loadLeft > 0 {
			break
		}
		s.loading = false
		if s.cfg.FailMarker != "" && strings.Contains(s.src.URI, s.cfg.FailMarker) {
			e := base
			e.Kind = Error
			e.Err = ErrSimulatedFailure
			events = append(events, e)
			break
		}
		s.loaded = true
		e := base
		e.Kind = Ready
		e.Duration = s.dur
		events = append(events, e)

	case s.loaded && s.playing:
		s.pos += time.Duration(float64(s.cfg.Tick) * s.rate)
		if s.shouldStall() {
			s.stalled = true
			s.playing = false
			e := base
			e.Kind = Stall
			e.Position = s.pos
			e.Err = ErrSimulatedFailure
			events = append(events, e)
			break
		}
		e := base
		e.Position = s.pos
		e.Duration = s.dur
		if s.pos >= s.dur {
			s.pos = s.dur
			s.playing = false
			e.Kind = End
			e.Position = s.dur
		} else {
			e.Kind = Progress
		}
		events = append(events, e)
	}
	s.mu.Unlock()

	for _, e := range events {
		s.sink(e)
	}
}

func (s *Sim) shouldStall() bool {
	return !s.stalled &&
		s.cfg.StallMarker != "" &&
		strings.Contains(s.src.URI, s.cfg.StallMarker) &&
		s.pos >= s.dur/2
}

func (s *Sim) Load(src Source) error {
	if src.URI == "" {
		return ErrNoSource
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src = src
	s.loading = true
	s.loadLeft = s.cfg.LoadDelay
	s.loaded = false
	s.playing = false
	s.stalled = false
	s.pos = 0
	s.dur = s.durationFor(src.URI)
	return nil
}

// durationFor derives a stable duration from the URI.
func (s *Sim) durationFor(uri string) time.Duration {
	base := max(s.cfg.MinDuration, time.Second)
	span := int64((s.cfg.MaxDuration - base) / time.Second)
	if span <= 0 {
		return base
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(uri))
	return base + time.Duration(int64(h.Sum32())%span)*time.Second
}

func (s *Sim) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
}

func (s *Sim) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

func (s *Sim) Seek(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = min(max(pos, 0), s.dur)
}

func (s *Sim) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

func (s *Sim) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rate > 0 {
		s.rate = rate
	}
}

func (s *Sim) Release() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Position returns the simulated playhead.
func (s *Sim) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

var _ Primitive = (*Sim)(nil)
