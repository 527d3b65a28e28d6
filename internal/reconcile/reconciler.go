// Package reconcile keeps the scroll position of the list in line with the
// active item when the active item changes from outside the list.
package reconcile

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
)

// Mode selects how a jump is performed.
type Mode int

const (
	// Animated is used for in-feed navigation.
	Animated Mode = iota
	// Immediate is used for discontinuous contexts: deep links, grid to
	// feed transitions, refreshes and insertions.
	Immediate
)

func (m Mode) String() string {
	if m == Immediate {
		return "immediate"
	}
	return "animated"
}

// Scroller is the imperative scroll handle of the list.
type Scroller interface {
	ScrollToIndex(index int, animated bool)
}

// ScrollerFunc adapts a function to Scroller.
type ScrollerFunc func(index int, animated bool)

// ScrollToIndex calls f.
func (f ScrollerFunc) ScrollToIndex(index int, animated bool) {
	f(index, animated)
}

// Seeder receives the positions the reconciler scrolled to itself.
type Seeder interface {
	Seed(id string, index int)
}

// Items is the read side of the sequence needed for bounds checks.
type Items interface {
	Len() int
	At(index int) (feed.Item, bool)
}

// Reconciler turns external active-index changes into scroll commands.
//
// It remembers the index the list is at: NoteScrolled records user
// scrolling and every jump records its own target. A store change whose
// index equals that memory came from the list and is ignored. Anything
// else is queued and resolved with a single jump on Flush.
//
// A Reconciler is not safe for concurrent use.
type Reconciler struct {
	items    Items
	scroller Scroller
	seeder   Seeder
	logger   zerolog.Logger

	listIndex    int
	pending      bool
	pendingIndex int
	mode         Mode
	dragging     bool
	jumps        int
}

// New creates a reconciler. seeder may be nil.
func New(items Items, scroller Scroller, seeder Seeder, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		items:     items,
		scroller:  scroller,
		seeder:    seeder,
		logger:    logger.With().Str("component", "reconcile").Logger(),
		listIndex: -1,
	}
}

// Attach registers the reconciler as an observer of store.
func (r *Reconciler) Attach(store *active.Store) {
	store.Observe(r.OnChange)
}

// OnChange is the store observer.
func (r *Reconciler) OnChange(c active.Change) {
	if !c.Has(active.FieldActiveID | active.FieldActiveIndex) {
		return
	}
	idx := c.Current.ActiveIndex
	if !c.Current.HasActive() || idx < 0 || idx == r.listIndex {
		r.pending = false
		return
	}
	r.pending = true
	r.pendingIndex = idx
}

// NoteScrolled records that the user scrolled the list to index.
func (r *Reconciler) NoteScrolled(index int) {
	r.listIndex = index
}

// Expect sets the mode used for the next external change.
func (r *Reconciler) Expect(mode Mode) {
	r.mode = mode
}

// Pending reports whether a jump is queued for the next Flush.
func (r *Reconciler) Pending() (index int, ok bool) {
	return r.pendingIndex, r.pending
}

// JumpTo scrolls to index now and drops any queued jump.
func (r *Reconciler) JumpTo(index int, mode Mode) error {
	r.pending = false
	r.mode = Animated
	return r.jump(index, mode)
}

// Flush issues the queued jump, if any. It is called once at the end of
// every scheduler tick, so several store writes in one tick produce at most
// one scroll command.
func (r *Reconciler) Flush() error {
	mode := r.mode
	r.mode = Animated
	if !r.pending {
		return nil
	}
	r.pending = false
	return r.jump(r.pendingIndex, mode)
}

// DragBegin marks the start of a user drag.
func (r *Reconciler) DragBegin() {
	r.dragging = true
}

// DragEnd marks the release of a user drag. Momentum may still follow.
func (r *Reconciler) DragEnd() {
	r.dragging = false
}

// MomentumEnd is called when scrolling settles at index. An index past
// the last item means the list overscrolled into the footer; it is pulled
// back to the last item.
func (r *Reconciler) MomentumEnd(index int) {
	if r.dragging {
		return
	}
	last := r.items.Len() - 1
	if last < 0 {
		return
	}
	if index > last {
		r.logger.Debug().Int("settled", index).Int("last", last).Msg("overscroll, snapping back")
		_ = r.jump(last, Animated)
		return
	}
	r.listIndex = index
}

// Reset forgets the list position and any queued jump.
func (r *Reconciler) Reset() {
	r.listIndex = -1
	r.pending = false
	r.mode = Animated
}

// ListIndex returns the index the list is believed to be at.
func (r *Reconciler) ListIndex() int {
	return r.listIndex
}

// Jumps returns the number of scroll commands issued.
func (r *Reconciler) Jumps() int {
	return r.jumps
}

func (r *Reconciler) jump(index int, mode Mode) error {
	n := r.items.Len()
	if index < 0 || index >= n {
		err := fmt.Errorf("jump to index %d of %d: %w", index, n, feed.ErrSequenceInconsistency)
		r.logger.Debug().Err(err).Msg("jump skipped")
		return err
	}

	r.listIndex = index
	r.jumps++
	r.scroller.ScrollToIndex(index, mode == Animated)
	if r.seeder != nil {
		if it, ok := r.items.At(index); ok {
			r.seeder.Seed(it.ID, index)
		}
	}
	r.logger.Debug().Int("index", index).Stringer("mode", mode).Msg("scrolled to index")
	return nil
}
