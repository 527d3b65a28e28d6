// internal/active/store.go
package active

import (
	"slices"
	"sync"
)

// Observer is called synchronously after every write that changed state.
type Observer func(Change)

// Options configures a Store.
type Options struct {
	// PauseWhileSeeking makes an active scrub part of the effective pause.
	PauseWhileSeeking bool
}

// Store is the single source of truth for which item owns playback.
// It performs no I/O; consumers react through Observe or Subscribe.
// Every setter is one atomic assignment under the lock, so readers never
// see a partially applied state.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
	opts  Options

	obsMu     sync.RWMutex
	observers []Observer

	subsMu sync.RWMutex
	subs   []*Subscription
	pauses []chan bool
	closed bool
}

// NewStore creates a store with nothing active, the app in the foreground
// and the screen focused.
func NewStore(opts Options) *Store {
	s := &Store{
		opts: opts,
		state: Snapshot{
			ActiveIndex:   -1,
			AppForeground: true,
			ScreenFocused: true,
			Rate:          1.0,
		},
	}
	s.state.EffectivePaused = s.effectivePaused(s.state)
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ActiveID returns the active item id, or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveID
}

// EffectivePaused returns the resolved pause flag.
func (s *Store) EffectivePaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.EffectivePaused
}

// SetActive makes id the active item at index. It is a no-op when id is
// already active. Otherwise the user pause and seeking flags are reset for
// the new item. Unknown ids are stored as given.
func (s *Store) SetActive(id string, index int) {
	s.write(0, func(st *Snapshot) {
		if st.ActiveID == id {
			return
		}
		st.ActiveID = id
		st.ActiveIndex = index
		st.UserPaused = false
		st.Seeking = false
	})
}

// Reposition updates the index of the active item after the sequence
// shifted. It does nothing unless id is the active item.
func (s *Store) Reposition(id string, index int) {
	s.write(0, func(st *Snapshot) {
		if st.ActiveID != id || id == "" {
			return
		}
		st.ActiveIndex = index
	})
}

// Clear drops the active item.
func (s *Store) Clear() {
	s.write(0, func(st *Snapshot) {
		st.ActiveID = ""
		st.ActiveIndex = -1
		st.UserPaused = false
		st.Seeking = false
	})
}

// TogglePause flips the user pause intent.
func (s *Store) TogglePause() {
	s.write(FieldUserPaused, func(st *Snapshot) {
		st.UserPaused = !st.UserPaused
	})
}

// SetPaused sets the user pause intent.
func (s *Store) SetPaused(paused bool) {
	s.write(FieldUserPaused, func(st *Snapshot) {
		st.UserPaused = paused
	})
}

// SetMuted sets the global mute flag.
func (s *Store) SetMuted(muted bool) {
	s.write(0, func(st *Snapshot) {
		st.Muted = muted
	})
}

// ToggleMute flips the global mute flag.
func (s *Store) ToggleMute() {
	s.write(0, func(st *Snapshot) {
		st.Muted = !st.Muted
	})
}

// SetPlaybackRate sets the global playback rate. A rate <= 0 means 1.0.
func (s *Store) SetPlaybackRate(rate float64) {
	if rate <= 0 {
		rate = 1.0
	}
	s.write(0, func(st *Snapshot) {
		st.Rate = rate
	})
}

// SetSeeking marks whether a manual scrub is in progress.
func (s *Store) SetSeeking(seeking bool) {
	s.write(FieldSeeking, func(st *Snapshot) {
		st.Seeking = seeking
	})
}

// SetScreenFocused records whether the feed screen has focus.
// Losing focus never clears the active item.
func (s *Store) SetScreenFocused(focused bool) {
	s.write(FieldScreenFocused, func(st *Snapshot) {
		st.ScreenFocused = focused
	})
}

// SetAppForeground records whether the app is in the foreground.
func (s *Store) SetAppForeground(foreground bool) {
	s.write(FieldAppForeground, func(st *Snapshot) {
		st.AppForeground = foreground
	})
}

// Observe registers fn to be called after every state change.
func (s *Store) Observe(fn Observer) {
	if fn == nil {
		return
	}
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

// Subscribe creates a new event subscription.
func (s *Store) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Unsubscribe stops sub and closes its Done channel.
func (s *Store) Unsubscribe(sub *Subscription) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	i := slices.Index(s.subs, sub)
	if i < 0 {
		return
	}
	s.subs = slices.Delete(s.subs, i, i+1)
	sub.close()
}

// ObserveEffectivePaused returns a stream receiving the effective pause
// value after every write to one of its inputs, and a stop function that
// closes it. Values are dropped while the buffer is full.
func (s *Store) ObserveEffectivePaused() (<-chan bool, func()) {
	ch := make(chan bool, eventBufferSize)
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.pauses = append(s.pauses, ch)
	stop := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if i := slices.Index(s.pauses, ch); i >= 0 {
			s.pauses = slices.Delete(s.pauses, i, i+1)
			close(ch)
		}
	}
	return ch, stop
}

// Close signals all subscribers to stop.
func (s *Store) Close() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	for _, ch := range s.pauses {
		close(ch)
	}
	s.pauses = nil
}

// write applies mutate atomically, then notifies. written lists the
// pause inputs the setter writes, so the pause stream fires even when the
// value did not change.
func (s *Store) write(written Field, mutate func(*Snapshot)) {
	s.mu.Lock()
	prev := s.state
	next := prev
	mutate(&next)
	next.EffectivePaused = s.effectivePaused(next)
	s.state = next
	s.mu.Unlock()

	change := Change{Previous: prev, Current: next, Fields: diff(prev, next)}

	if written&pauseFields != 0 || change.Fields&pauseFields != 0 {
		s.broadcastPause(next.EffectivePaused)
	}
	if change.Fields == 0 {
		return
	}

	s.obsMu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()
	for _, fn := range observers {
		fn(change)
	}
	s.broadcast(change)
}

func (s *Store) effectivePaused(st Snapshot) bool {
	return st.UserPaused ||
		!st.AppForeground ||
		!st.ScreenFocused ||
		(st.Seeking && s.opts.PauseWhileSeeking)
}

func diff(a, b Snapshot) Field {
	var f Field
	if a.ActiveID != b.ActiveID {
		f |= FieldActiveID
	}
	if a.ActiveIndex != b.ActiveIndex {
		f |= FieldActiveIndex
	}
	if a.AppForeground != b.AppForeground {
		f |= FieldAppForeground
	}
	if a.ScreenFocused != b.ScreenFocused {
		f |= FieldScreenFocused
	}
	if a.UserPaused != b.UserPaused {
		f |= FieldUserPaused
	}
	if a.Muted != b.Muted {
		f |= FieldMuted
	}
	if a.Rate != b.Rate {
		f |= FieldRate
	}
	if a.Seeking != b.Seeking {
		f |= FieldSeeking
	}
	return f
}

func (s *Store) broadcast(c Change) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		if c.Has(FieldActiveID | FieldActiveIndex) {
			sub.sendActive(ActiveChange{
				PreviousID:    c.Previous.ActiveID,
				PreviousIndex: c.Previous.ActiveIndex,
				ID:            c.Current.ActiveID,
				Index:         c.Current.ActiveIndex,
			})
		}
		sub.sendState(c.Current)
	}
}

func (s *Store) broadcastPause(paused bool) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendPause(paused)
	}
	for _, ch := range s.pauses {
		select {
		case ch <- paused:
		default:
		}
	}
}
