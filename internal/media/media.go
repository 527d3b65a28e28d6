// Package media defines the boundary to the video decode primitive.
// The scheduler never touches a decoder directly; it loads sources into a
// Primitive and receives tagged Events back through a Sink.
package media

import (
	"errors"
	"time"
)

// ErrNoSource is returned by Load when the source has no URI.
var ErrNoSource = errors.New("no media source")

// Source identifies what to load. Generation is echoed back on every event
// so late callbacks from a previous load can be recognised and dropped.
type Source struct {
	ItemID     string
	Generation uint64
	URI        string
}

// Primitive is one decode/render instance bound to a single item.
type Primitive interface {
	Load(src Source) error
	Play()
	Pause()
	Seek(pos time.Duration)
	SetMuted(muted bool)
	SetRate(rate float64)
	// Release frees the decoder. No events are delivered afterwards.
	Release()
}

// EventKind enumerates primitive callbacks.
type EventKind int

const (
	Ready EventKind = iota
	Progress
	End
	Error
	Stall
	Rebuffer
	Buffered
)

// String returns the event name for debugging.
func (k EventKind) String() string {
	switch k {
	case Ready:
		return "Ready"
	case Progress:
		return "Progress"
	case End:
		return "End"
	case Error:
		return "Error"
	case Stall:
		return "Stall"
	case Rebuffer:
		return "Rebuffer"
	case Buffered:
		return "Buffered"
	default:
		return "Unknown"
	}
}

// Event is a callback from a primitive.
type Event struct {
	Kind       EventKind
	ItemID     string
	Generation uint64
	Position   time.Duration
	Duration   time.Duration
	Err        error
}

// Sink receives primitive events. It may be called from any goroutine.
type Sink func(Event)

// Factory creates the primitive for an item.
type Factory func(itemID string, sink Sink) Primitive
