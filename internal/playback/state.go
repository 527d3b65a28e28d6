// internal/playback/state.go
package playback

import "errors"

// State is the playback state of one item.
//
//	┌──────┐ activate ┌─────────┐  ready  ┌─────────┐  end (last loop)  ┌──────────┐
//	│ Idle │ ───────▶ │ Loading │ ──────▶ │ Playing │ ────────────────▶ │ Finished │
//	└──────┘          └─────────┘         └─────────┘                   └──────────┘
//	                       │  ▲             │   ▲                            │
//	                 error │  │ rebuffer    │   │ effective pause             │ replay
//	                       ▼  │ /buffered   ▼   │                            ▼
//	                  ┌───────┐          ┌────────┐                       Playing
//	                  │ Error │ ◀─────── │ Paused │
//	                  └───────┘  error   └────────┘
//
// Error is reachable from Loading, Playing and Paused. Deactivation resets
// any state to Idle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateFinished
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateFinished:
		return "Finished"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if media is loaded and positioned (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// CanSeek returns true if a scrub may start in this state.
func (s State) CanSeek() bool {
	return s == StatePlaying || s == StatePaused || s == StateFinished
}

// ErrorKind classifies a media failure.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	LoadError
	StallError
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case LoadError:
		return "load"
	case StallError:
		return "stall"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for the kind.
func (k ErrorKind) Err() error {
	switch k {
	case LoadError:
		return ErrLoad
	case StallError:
		return ErrStall
	default:
		return nil
	}
}

var (
	// ErrLoad means the media source failed to load or decode.
	ErrLoad = errors.New("media load failed")
	// ErrStall means playback stalled and did not recover.
	ErrStall = errors.New("media playback stalled")
	// ErrInsertionRace means several insertions landed in the same tick.
	ErrInsertionRace = errors.New("concurrent insertions")
	// ErrNotActive is returned by commands that only apply to the active item.
	ErrNotActive = errors.New("item is not active")
	// ErrRetriesExhausted is returned by Retry once the ceiling is reached.
	ErrRetriesExhausted = errors.New("retry limit reached")
	// ErrInvalidState is returned when a command does not apply to the
	// current state.
	ErrInvalidState = errors.New("invalid playback state")
)
