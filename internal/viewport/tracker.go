// Package viewport turns raw visibility samples from the virtualized list
// into discrete "this item became dominant" candidates.
package viewport

import (
	"time"

	"github.com/rs/zerolog"
)

// Sample is one visibility report from the list.
type Sample struct {
	ItemID         string
	Index          int
	VisiblePercent float64       // 0-100
	Dwell          time.Duration // how long the item has been visible at this fraction
}

// Candidate is emitted once per transition of the dominant item.
type Candidate struct {
	ItemID string
	Index  int
}

// Config holds the dominance thresholds.
type Config struct {
	VisiblePercent float64
	MinDwell       time.Duration
}

// Qualifies reports whether s crosses both thresholds.
func (c Config) Qualifies(s Sample) bool {
	return s.ItemID != "" && s.VisiblePercent >= c.VisiblePercent && s.Dwell >= c.MinDwell
}

// Tracker deduplicates dominance transitions.
//
// It compares against the last id it emitted itself, never against the
// store, so an active item set from outside cannot be re-observed as a new
// candidate once the reconciler has seeded it.
//
// A Tracker is not safe for concurrent use; it lives on the scheduler loop.
type Tracker struct {
	cfg       Config
	lastID    string
	lastIndex int
	emitted   int
	logger    zerolog.Logger
}

// New creates a tracker.
func New(cfg Config, logger zerolog.Logger) *Tracker {
	return &Tracker{
		cfg:       cfg,
		lastIndex: -1,
		logger:    logger.With().Str("component", "viewport").Logger(),
	}
}

// Observe consumes one batch of samples and returns a candidate when the
// dominant item differs from the last one this tracker knows about.
func (t *Tracker) Observe(samples ...Sample) (Candidate, bool) {
	best, ok := t.dominant(samples)
	if !ok {
		return Candidate{}, false
	}
	if best.ItemID == t.lastID {
		// Same item, possibly shifted by an insertion above it.
		t.lastIndex = best.Index
		return Candidate{}, false
	}

	t.lastID = best.ItemID
	t.lastIndex = best.Index
	t.emitted++
	t.logger.Debug().
		Str("item", best.ItemID).
		Int("index", best.Index).
		Float64("visible", best.VisiblePercent).
		Dur("dwell", best.Dwell).
		Msg("dominant item changed")
	return Candidate{ItemID: best.ItemID, Index: best.Index}, true
}

// dominant picks the qualifying sample with the largest visible fraction,
// preferring the topmost one on ties.
func (t *Tracker) dominant(samples []Sample) (Sample, bool) {
	var best Sample
	found := false
	for _, s := range samples {
		if !t.cfg.Qualifies(s) {
			continue
		}
		if !found ||
			s.VisiblePercent > best.VisiblePercent ||
			(s.VisiblePercent == best.VisiblePercent && s.Index < best.Index) {
			best = s
			found = true
		}
	}
	return best, found
}

// Seed records id as already known, as if the tracker had emitted it.
// The reconciler calls it for positions it scrolled to itself.
func (t *Tracker) Seed(id string, index int) {
	t.lastID = id
	t.lastIndex = index
}

// Reset forgets the last emitted item.
func (t *Tracker) Reset() {
	t.lastID = ""
	t.lastIndex = -1
}

// Last returns the last item the tracker emitted or was seeded with.
func (t *Tracker) Last() (id string, index int) {
	return t.lastID, t.lastIndex
}

// Emitted returns the number of candidates emitted so far.
func (t *Tracker) Emitted() int {
	return t.emitted
}
