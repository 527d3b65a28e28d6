package active

const eventBufferSize = 16

// ActiveChange is emitted when the active item or its index changes.
type ActiveChange struct {
	PreviousID    string
	PreviousIndex int
	ID            string
	Index         int
}

// Subscription provides event channels for a subscriber.
type Subscription struct {
	ActiveChanged   <-chan ActiveChange
	StateChanged    <-chan Snapshot
	EffectivePaused <-chan bool
	Done            <-chan struct{}

	// Internal write channels
	activeCh chan ActiveChange
	stateCh  chan Snapshot
	pauseCh  chan bool
	doneCh   chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		activeCh: make(chan ActiveChange, eventBufferSize),
		stateCh:  make(chan Snapshot, eventBufferSize),
		pauseCh:  make(chan bool, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.ActiveChanged = s.activeCh
	s.StateChanged = s.stateCh
	s.EffectivePaused = s.pauseCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendActive sends an active change (non-blocking).
func (s *Subscription) sendActive(e ActiveChange) {
	select {
	case s.activeCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendState sends a state snapshot (non-blocking).
func (s *Subscription) sendState(st Snapshot) {
	select {
	case s.stateCh <- st:
	default:
	}
}

// sendPause sends an effective pause value (non-blocking).
func (s *Subscription) sendPause(paused bool) {
	select {
	case s.pauseCh <- paused:
	default:
	}
}
