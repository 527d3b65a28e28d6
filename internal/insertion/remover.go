package insertion

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/telemetry"
)

// Runtimes is the playback side of a removal.
type Runtimes interface {
	Teardown(id string)
	RefreshWindow()
}

// Remover deletes items from the feed. It is the deletion hook of the
// playback controller.
type Remover struct {
	seq      Sequence
	store    *active.Store
	runtimes Runtimes
	jumper   Jumper
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
}

// NewRemover creates a remover. metrics may be nil.
func NewRemover(seq Sequence, store *active.Store, runtimes Runtimes, jumper Jumper, metrics *telemetry.Metrics, logger zerolog.Logger) *Remover {
	return &Remover{
		seq:      seq,
		store:    store,
		runtimes: runtimes,
		jumper:   jumper,
		metrics:  metrics,
		logger:   logger.With().Str("component", "remover").Logger(),
	}
}

// RemoveItem removes id from the feed and tears down its runtime.
//
// When id was active, the item that slides into its slot (or the new last
// item) becomes active. When an earlier item is removed, the active item
// keeps playing and the list jumps to its new index. An empty feed clears
// the store.
func (r *Remover) RemoveItem(id string) {
	index := r.seq.IndexOf(id)
	if index < 0 {
		r.logger.Debug().Str("item", id).Msg("remove: item not in feed")
		return
	}
	snap := r.store.Snapshot()

	r.seq.Remove(id)
	r.runtimes.Teardown(id)
	r.metrics.Removed()
	r.logger.Info().Str("item", id).Int("index", index).Msg("item removed")

	n := r.seq.Len()
	switch {
	case n == 0:
		r.store.Clear()
	case snap.ActiveID == id:
		next := min(index, n-1)
		if item, ok := r.seq.At(next); ok {
			r.store.SetActive(item.ID, next)
		}
	case snap.HasActive():
		current := r.seq.IndexOf(snap.ActiveID)
		if current >= 0 && current != snap.ActiveIndex {
			r.store.Reposition(snap.ActiveID, current)
			if err := r.jumper.JumpTo(current, reconcile.Immediate); err != nil {
				r.logger.Debug().Err(err).Msg("reposition jump skipped")
			}
		}
	}
	r.runtimes.RefreshWindow()
}
