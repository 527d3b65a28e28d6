package scheduler

import (
	"time"

	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/viewport"
)

// Event is one input to the scheduler loop.
type Event interface {
	event()
}

// ViewportSamples carries one batch of visibility reports from the list.
type ViewportSamples struct {
	Samples []viewport.Sample
}

// DragBegan is sent when the user touches the list.
type DragBegan struct{}

// DragEnded is sent when the user releases the list.
type DragEnded struct{}

// MomentumEnded is sent when scrolling settles at Index.
type MomentumEnded struct {
	Index int
}

// Navigate activates an item from outside the list: a grid tap, a deep link
// or a keyboard shortcut. ID wins over Index when set.
type Navigate struct {
	ID    string
	Index int
	Mode  reconcile.Mode
}

// NavigateRelative moves the active item by Delta positions.
type NavigateRelative struct {
	Delta int
}

// InsertItem prepends a fetched upload and activates it.
type InsertItem struct {
	Item feed.Item
}

// RemoveItem deletes an item from the feed.
type RemoveItem struct {
	ID string
}

// MediaEvent wraps a primitive callback.
type MediaEvent struct {
	media.Event
}

// AppForegroundChanged reports the host lifecycle.
type AppForegroundChanged struct {
	Foreground bool
}

// ScreenFocusChanged reports whether the feed screen has focus.
type ScreenFocusChanged struct {
	Focused bool
}

type (
	TogglePause struct{}
	SetPaused   struct{ Paused bool }
	ToggleMute  struct{}
	SetMuted    struct{ Muted bool }
	SetRate     struct{ Rate float64 }
	BeginSeek   struct{}
	ScrubTo     struct{ Position time.Duration }
	EndSeek     struct{ Position time.Duration }
	SeekTo      struct{ Position time.Duration }
	Retry       struct{}
	Replay      struct{}
	LoadMore    struct{}
	Refresh     struct{}
)

// PageLoaded reports the end of an off-loop page load.
type PageLoaded struct {
	Page feed.Page
	Err  error
}

// Refreshed carries the first page of a refreshed feed.
type Refreshed struct {
	Page feed.Page
	Err  error
}

func (ViewportSamples) event()      {}
func (DragBegan) event()            {}
func (DragEnded) event()            {}
func (MomentumEnded) event()        {}
func (Navigate) event()             {}
func (NavigateRelative) event()     {}
func (InsertItem) event()           {}
func (RemoveItem) event()           {}
func (MediaEvent) event()           {}
func (AppForegroundChanged) event() {}
func (ScreenFocusChanged) event()   {}
func (TogglePause) event()          {}
func (SetPaused) event()            {}
func (ToggleMute) event()           {}
func (SetMuted) event()             {}
func (SetRate) event()              {}
func (BeginSeek) event()            {}
func (ScrubTo) event()              {}
func (EndSeek) event()              {}
func (SeekTo) event()               {}
func (Retry) event()                {}
func (Replay) event()               {}
func (LoadMore) event()             {}
func (Refresh) event()              {}
func (PageLoaded) event()           {}
func (Refreshed) event()            {}
