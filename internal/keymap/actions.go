// Package keymap defines key bindings and action dispatch for the demo host.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionHelp        Action = "help"
	ActionToggleFocus Action = "toggle_focus"
	ActionBackground  Action = "background"

	// Scroll gestures on the list
	ActionDragDown  Action = "drag_down"
	ActionDragUp    Action = "drag_up"
	ActionSwipeDown Action = "swipe_down"
	ActionSwipeUp   Action = "swipe_up"

	// Programmatic navigation
	ActionNext      Action = "next"
	ActionPrev      Action = "prev"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"

	// Playback controls
	ActionPlayPause   Action = "play_pause"
	ActionMute        Action = "mute"
	ActionSeekForward Action = "seek_forward"
	ActionSeekBack    Action = "seek_back"
	ActionFaster      Action = "faster"
	ActionSlower      Action = "slower"
	ActionRetry       Action = "retry"
	ActionReplay      Action = "replay"

	// Feed mutations
	ActionUpload  Action = "upload"
	ActionRemove  Action = "remove"
	ActionRefresh Action = "refresh"
)
