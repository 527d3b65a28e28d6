package overlay

// StoreChangedMsg is sent when the active store emitted an event.
type StoreChangedMsg struct{}

// PlaybackChangedMsg is sent when the playback controller emitted an event.
type PlaybackChangedMsg struct{}

// ClosedMsg is sent once a subscription has been closed.
type ClosedMsg struct{}
