// Package overlay presents the chrome drawn over the active item: author,
// caption, counters, progress and the retry or replay affordances.
//
// It only reads. Nothing here writes to the store or the controller, and
// nothing here depends on the scroll surface.
package overlay

import (
	"time"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/errmsg"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/playback"
)

// Runtimes is the read side of the playback controller.
type Runtimes interface {
	Runtime(id string) (playback.Runtime, bool)
	Config() playback.Config
}

// Items looks feed items up by id.
type Items interface {
	Lookup(id string) (feed.Item, bool)
}

// View is everything the overlay shows for the active item.
type View struct {
	Visible bool

	ItemID      string
	Index       int
	Author      string
	Description string
	Preview     bool
	Interaction feed.Interaction

	State    playback.State
	Position time.Duration
	Duration time.Duration
	Loading  bool
	Loops    int

	Paused       bool
	Muted        bool
	Rate         float64
	ChromeHidden bool

	ShowRetry   bool
	RetriesLeft int
	ShowReplay  bool
	Unplayable  bool
	ErrorText   string
}

// Presenter assembles Views.
type Presenter struct {
	store    *active.Store
	runtimes Runtimes
	items    Items
}

// NewPresenter creates a presenter.
func NewPresenter(store *active.Store, runtimes Runtimes, items Items) *Presenter {
	return &Presenter{store: store, runtimes: runtimes, items: items}
}

// View returns the view of the active item. The zero View, which renders
// nothing, is returned when nothing is active or the active id is unknown
// to the feed.
func (p *Presenter) View() View {
	return p.ViewOf(p.store.Snapshot())
}

// ViewOf builds the view for snap.
func (p *Presenter) ViewOf(snap active.Snapshot) View {
	if !snap.HasActive() {
		return View{}
	}
	item, ok := p.items.Lookup(snap.ActiveID)
	if !ok {
		return View{}
	}

	v := View{
		Visible:      true,
		ItemID:       item.ID,
		Index:        item.Index,
		Author:       item.Author,
		Description:  item.Description,
		Preview:      item.Preview,
		Interaction:  item.Interaction,
		State:        playback.StateIdle,
		Paused:       snap.EffectivePaused,
		Muted:        snap.Muted,
		Rate:         snap.Rate,
		ChromeHidden: snap.Seeking,
	}
	if v.Rate <= 0 {
		v.Rate = 1
	}

	rt, ok := p.runtimes.Runtime(item.ID)
	if !ok {
		return v
	}
	ceiling := p.runtimes.Config().RetryCeiling

	v.State = rt.State
	v.Position = rt.CurrentTime
	v.Duration = rt.Duration
	v.Loading = rt.Loading
	v.Loops = rt.LoopCount
	v.Unplayable = rt.Unplayable
	v.ShowReplay = rt.State == playback.StateFinished
	if rt.HasError {
		v.ErrorText = errmsg.Format(errmsg.OpPlaybackStart, rt.Err)
		v.ShowRetry = rt.State == playback.StateError && rt.CanRetry(ceiling)
		v.RetriesLeft = max(ceiling-rt.RetryCount, 0)
	}
	return v
}
