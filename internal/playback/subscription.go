package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged    <-chan StateChange
	ProgressChanged <-chan ProgressChange
	Error           <-chan ErrorEvent
	Unplayable      <-chan UnplayableEvent
	Done            <-chan struct{}

	// Internal write channels
	stateCh      chan StateChange
	progressCh   chan ProgressChange
	errorCh      chan ErrorEvent
	unplayableCh chan UnplayableEvent
	doneCh       chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:      make(chan StateChange, eventBufferSize),
		progressCh:   make(chan ProgressChange, eventBufferSize),
		errorCh:      make(chan ErrorEvent, eventBufferSize),
		unplayableCh: make(chan UnplayableEvent, eventBufferSize),
		doneCh:       make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.ProgressChanged = s.progressCh
	s.Error = s.errorCh
	s.Unplayable = s.unplayableCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// send dispatches e to the matching channel (non-blocking).
func (s *Subscription) send(e any) {
	switch e := e.(type) {
	case StateChange:
		s.sendState(e)
	case ProgressChange:
		s.sendProgress(e)
	case ErrorEvent:
		s.sendError(e)
	case UnplayableEvent:
		s.sendUnplayable(e)
	}
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendProgress sends a progress event (non-blocking).
func (s *Subscription) sendProgress(e ProgressChange) {
	select {
	case s.progressCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

// sendUnplayable sends an unplayable event (non-blocking).
func (s *Subscription) sendUnplayable(e UnplayableEvent) {
	select {
	case s.unplayableCh <- e:
	default:
	}
}
