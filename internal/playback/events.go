package playback

import "time"

// StateChange is emitted when an item changes playback state.
type StateChange struct {
	ItemID   string
	Previous State
	Current  State
}

// ProgressChange is emitted when the playhead of the active item moves,
// from media progress, a loop restart or a scrub.
type ProgressChange struct {
	ItemID   string
	Position time.Duration
	Duration time.Duration
}

// ErrorEvent is emitted when a load attempt fails.
type ErrorEvent struct {
	ItemID     string
	Kind       ErrorKind
	RetryCount int
	Err        error
}

// UnplayableEvent is emitted once when an item reaches the retry ceiling.
type UnplayableEvent struct {
	ItemID     string
	RetryCount int
}
