// Package insertion places new items into the feed and removes dead ones
// while keeping the active pointer and the list position consistent.
package insertion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/telemetry"
)

// Sequence is the part of the feed the coordinator mutates.
type Sequence interface {
	Len() int
	At(index int) (feed.Item, bool)
	IndexOf(id string) int
	Prepend(items ...feed.Item) int
	Remove(id string) bool
}

// Jumper performs an explicit scroll.
type Jumper interface {
	JumpTo(index int, mode reconcile.Mode) error
}

// ItemFetcher fetches a freshly uploaded item by id.
type ItemFetcher interface {
	FetchItem(ctx context.Context, id string) (feed.Item, error)
}

// FetcherFunc adapts a function to ItemFetcher.
type FetcherFunc func(ctx context.Context, id string) (feed.Item, error)

// FetchItem calls f.
func (f FetcherFunc) FetchItem(ctx context.Context, id string) (feed.Item, error) {
	return f(ctx, id)
}

// Coordinator prepends uploaded items and makes them active.
type Coordinator struct {
	seq     Sequence
	store   *active.Store
	jumper  Jumper
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

// NewCoordinator creates a coordinator. metrics may be nil.
func NewCoordinator(seq Sequence, store *active.Store, jumper Jumper, metrics *telemetry.Metrics, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		seq:     seq,
		store:   store,
		jumper:  jumper,
		metrics: metrics,
		logger:  logger.With().Str("component", "insertion").Logger(),
	}
}

// PrependAndActivate inserts item at the top, activates it and jumps to it
// without animation. The order is fixed: sequence, store, scroll.
func (c *Coordinator) PrependAndActivate(item feed.Item) error {
	return c.PrependAll(item)
}

// PrependAll handles every insertion that arrived in the same tick. All
// items are prepended in arrival order; only the last one, which ends up
// on top, is activated, and a single jump is issued.
//
// An item whose id is already in the feed is not inserted again; it is
// activated where it is.
func (c *Coordinator) PrependAll(items ...feed.Item) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) > 1 {
		c.logger.Info().
			Err(playback.ErrInsertionRace).
			Int("count", len(items)).
			Msg("several insertions in one tick, activating the last")
	}

	fresh := make([]feed.Item, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if c.seq.IndexOf(it.ID) >= 0 {
			c.logger.Debug().Str("item", it.ID).Msg("item already in feed, activating in place")
			continue
		}
		fresh = append(fresh, it)
	}
	if len(fresh) > 0 {
		c.seq.Prepend(fresh...)
	}

	target := items[len(items)-1]
	index := c.seq.IndexOf(target.ID)
	if index < 0 {
		return fmt.Errorf("activate inserted item %q: %w", target.ID, feed.ErrSequenceInconsistency)
	}

	c.store.SetActive(target.ID, index)
	if err := c.jumper.JumpTo(index, reconcile.Immediate); err != nil {
		return fmt.Errorf("jump to inserted item %q: %w", target.ID, err)
	}
	c.metrics.Inserted(len(fresh))
	c.logger.Info().
		Str("item", target.ID).
		Int("index", index).
		Int("inserted", len(fresh)).
		Msg("item inserted")
	return nil
}
