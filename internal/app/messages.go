// Package app is the terminal host of the feed: a simulated paged list
// that drives the scheduler the way a touch list would, with the overlay
// drawn over the active item.
package app

import "time"

// FrameMsg advances the list animation and samples visibility.
type FrameMsg time.Time

// ScrollMsg is a scroll command issued by the scheduler.
type ScrollMsg struct {
	Index    int
	Animated bool
}

// DragReleaseMsg ends a drag once no drag key arrived for a while.
// Version ignores releases superseded by a later key press.
type DragReleaseMsg struct {
	Version int
}
