// internal/playback/controller.go
package playback

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/telemetry"
)

// Verify Controller implements Service at compile time.
var _ Service = (*Controller)(nil)

// Deps are the collaborators of a Controller. Resolver, Hook and Metrics
// are optional.
type Deps struct {
	Store    *active.Store
	Items    Items
	Pool     *media.Pool
	Resolver Resolver
	Hook     DeletionHook
	Metrics  *telemetry.Metrics
	Logger   zerolog.Logger
}

// Controller turns the active store into media side effects. It follows
// the store through a synchronous observer, so every store write on the
// scheduler loop is applied before the write returns.
//
// Writes happen on the scheduler loop only. Queries are safe from any
// goroutine.
type Controller struct {
	mu sync.RWMutex

	cfg      Config
	store    *active.Store
	items    Items
	pool     *media.Pool
	resolver Resolver
	hook     DeletionHook
	metrics  *telemetry.Metrics
	logger   zerolog.Logger
	now      func() time.Time

	snap       active.Snapshot
	runtimes   map[string]*Runtime
	generation uint64
	seeking    bool

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// effects are collected under the lock and run after it is released.
type effects struct {
	events []any
	remove []string
}

// New creates a controller and attaches it to the store.
func New(cfg Config, deps Deps) *Controller {
	if cfg.RetryCeiling <= 0 {
		cfg.RetryCeiling = DefaultConfig().RetryCeiling
	}
	c := &Controller{
		cfg:      cfg,
		store:    deps.Store,
		items:    deps.Items,
		pool:     deps.Pool,
		resolver: deps.Resolver,
		hook:     deps.Hook,
		metrics:  deps.Metrics,
		logger:   deps.Logger.With().Str("component", "playback").Logger(),
		now:      time.Now,
		runtimes: make(map[string]*Runtime),
	}

	initial := c.store.Snapshot()
	c.store.Observe(c.onChange)
	if initial.HasActive() {
		c.onChange(active.Change{
			Previous: active.Snapshot{ActiveIndex: -1},
			Current:  initial,
			Fields:   active.FieldActiveID | active.FieldActiveIndex,
		})
	} else {
		c.mu.Lock()
		c.snap = initial
		c.mu.Unlock()
	}
	return c
}

// SetDeletionHook sets the hook called for unplayable items.
func (c *Controller) SetDeletionHook(h DeletionHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = h
}

func (c *Controller) onChange(ch active.Change) {
	var fx effects
	c.mu.Lock()
	prev := c.snap
	c.snap = ch.Current

	switch {
	case ch.Has(active.FieldActiveID):
		c.seeking = false
		c.deactivateLocked(prev.ActiveID, &fx)
		c.applyWindowLocked()
		c.activateLocked(&fx)
	case ch.Has(active.FieldActiveIndex):
		c.applyWindowLocked()
	}

	if !ch.Has(active.FieldActiveID) {
		if ch.Has(active.FieldSeeking) && !ch.Current.Seeking {
			c.seeking = false
		}
		if ch.PauseChanged() {
			c.applyPauseLocked(&fx)
		}
		if prim := c.activePrimitiveLocked(); prim != nil {
			if ch.Has(active.FieldMuted) {
				prim.SetMuted(ch.Current.Muted)
			}
			if ch.Has(active.FieldRate) {
				prim.SetRate(ch.Current.Rate)
			}
		}
	}
	c.mu.Unlock()
	c.flush(fx)
}

func (c *Controller) deactivateLocked(id string, fx *effects) {
	if id == "" {
		return
	}
	rt, ok := c.runtimes[id]
	if !ok {
		return
	}
	if prim, ok := c.pool.Get(id); ok {
		prim.Pause()
	}
	// Late callbacks from the previous load must not touch the slot.
	c.generation++
	rt.Generation = c.generation
	rt.Loading = false
	rt.Finished = false
	rt.CurrentTime = 0
	rt.LoopCount = 0
	rt.rebuffering = false
	c.setStateLocked(rt, StateIdle, fx)
}

// applyWindowLocked keeps runtimes for active-WindowBehind..active+WindowAhead.
func (c *Controller) applyWindowLocked() {
	center := -1
	if id := c.snap.ActiveID; id != "" {
		center = c.items.IndexOf(id)
		if center < 0 {
			center = c.snap.ActiveIndex
		}
	}

	keep := make(map[string]bool)
	if center >= 0 {
		for i := center - c.cfg.WindowBehind; i <= center+c.cfg.WindowAhead; i++ {
			item, ok := c.items.At(i)
			if !ok {
				continue
			}
			keep[item.ID] = true
			if _, exists := c.runtimes[item.ID]; !exists {
				c.runtimes[item.ID] = &Runtime{ItemID: item.ID}
			}
		}
	}
	for id := range c.runtimes {
		if !keep[id] {
			c.teardownLocked(id)
		}
	}
}

func (c *Controller) teardownLocked(id string) {
	c.pool.Release(id)
	delete(c.runtimes, id)
}

func (c *Controller) activateLocked(fx *effects) {
	id := c.snap.ActiveID
	if id == "" {
		c.metrics.Cleared()
		return
	}
	item, ok := c.items.Lookup(id)
	if !ok {
		c.logger.Debug().
			Err(fmt.Errorf("activate %q: %w", id, feed.ErrSequenceInconsistency)).
			Msg("active item not in sequence")
		return
	}
	rt, ok := c.runtimes[id]
	if !ok {
		rt = &Runtime{ItemID: id}
		c.runtimes[id] = rt
	}
	c.metrics.Activated(c.items.IndexOf(id))

	if rt.HasError {
		// Errors are only retried on request.
		c.setStateLocked(rt, StateError, fx)
		return
	}
	c.loadLocked(rt, item, fx)
}

func (c *Controller) loadLocked(rt *Runtime, item feed.Item, fx *effects) {
	c.generation++
	rt.Generation = c.generation
	rt.resetForLoad(c.now())
	c.setStateLocked(rt, StateLoading, fx)

	uri := item.MediaURI
	if c.resolver != nil {
		uri = c.resolver.Resolve(uri)
	}

	prim := c.pool.Acquire(rt.ItemID)
	prim.SetMuted(c.snap.Muted)
	prim.SetRate(c.snap.Rate)
	err := prim.Load(media.Source{ItemID: rt.ItemID, Generation: rt.Generation, URI: uri})
	if err != nil {
		c.failLocked(rt, LoadError, err, fx)
		return
	}
	c.logger.Debug().
		Str("item", rt.ItemID).
		Uint64("generation", rt.Generation).
		Str("uri", uri).
		Msg("loading")
}

func (c *Controller) failLocked(rt *Runtime, kind ErrorKind, cause error, fx *effects) {
	err := kind.Err()
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind.Err(), cause)
	}

	rt.HasError = true
	rt.ErrorKind = kind
	rt.Err = err
	rt.Loading = false
	rt.rebuffering = false
	rt.RetryCount++
	if prim, ok := c.pool.Get(rt.ItemID); ok {
		prim.Pause()
	}
	c.metrics.MediaError(kind.String())
	c.setStateLocked(rt, StateError, fx)
	fx.events = append(fx.events, ErrorEvent{
		ItemID:     rt.ItemID,
		Kind:       kind,
		RetryCount: rt.RetryCount,
		Err:        err,
	})
	c.logger.Warn().
		Err(err).
		Str("item", rt.ItemID).
		Int("retries", rt.RetryCount).
		Msg("playback failed")

	if rt.RetryCount < c.cfg.RetryCeiling || rt.Unplayable {
		return
	}
	rt.Unplayable = true
	c.metrics.ItemUnplayable()
	fx.events = append(fx.events, UnplayableEvent{ItemID: rt.ItemID, RetryCount: rt.RetryCount})
	c.logger.Warn().Str("item", rt.ItemID).Msg("item unplayable")
	if c.cfg.AutoRemoveUnplayable && c.hook != nil && !rt.removalRequested {
		rt.removalRequested = true
		fx.remove = append(fx.remove, rt.ItemID)
	}
}

func (c *Controller) applyPauseLocked(fx *effects) {
	rt := c.activeRuntimeLocked()
	if rt == nil {
		return
	}
	prim, ok := c.pool.Get(rt.ItemID)
	if !ok {
		return
	}
	paused := c.snap.EffectivePaused
	switch rt.State {
	case StatePlaying:
		if paused {
			prim.Pause()
			c.setStateLocked(rt, StatePaused, fx)
		}
	case StatePaused:
		if !paused {
			prim.Play()
			c.setStateLocked(rt, StatePlaying, fx)
		}
	default:
		// Loading resolves on Ready or Buffered; other states do not play.
	}
}

// resumeLocked puts an item that is ready to play into Playing or Paused
// depending on paused.
func (c *Controller) resumeLocked(rt *Runtime, paused bool, fx *effects) {
	prim, ok := c.pool.Get(rt.ItemID)
	if !ok {
		return
	}
	if paused {
		prim.Pause()
		c.setStateLocked(rt, StatePaused, fx)
		return
	}
	prim.Play()
	c.setStateLocked(rt, StatePlaying, fx)
}

// HandleEvent applies a media callback. It returns false when the event
// was dropped by the generation guard.
func (c *Controller) HandleEvent(ev media.Event) bool {
	var fx effects
	c.mu.Lock()
	rt, ok := c.runtimes[ev.ItemID]
	if !ok || ev.Generation != rt.Generation {
		c.mu.Unlock()
		c.metrics.StaleEvent()
		c.logger.Debug().
			Str("item", ev.ItemID).
			Stringer("kind", ev.Kind).
			Uint64("generation", ev.Generation).
			Msg("stale media event dropped")
		return false
	}

	switch ev.Kind {
	case media.Ready:
		c.onReadyLocked(rt, ev, &fx)
	case media.Progress:
		c.onProgressLocked(rt, ev, &fx)
	case media.End:
		c.onEndLocked(rt, &fx)
	case media.Error:
		c.onErrorLocked(rt, LoadError, ev.Err, &fx)
	case media.Stall:
		c.onErrorLocked(rt, StallError, ev.Err, &fx)
	case media.Rebuffer:
		if rt.State.IsActive() {
			rt.rebuffering = true
			rt.Loading = true
			c.setStateLocked(rt, StateLoading, &fx)
		}
	case media.Buffered:
		if rt.rebuffering {
			rt.rebuffering = false
			rt.Loading = false
			c.resumeLocked(rt, c.snap.EffectivePaused, &fx)
		}
	}
	c.mu.Unlock()
	c.flush(fx)
	return true
}

func (c *Controller) onReadyLocked(rt *Runtime, ev media.Event, fx *effects) {
	if rt.State != StateLoading || rt.rebuffering || rt.ItemID != c.snap.ActiveID {
		return
	}
	rt.Loading = false
	if ev.Duration > 0 {
		rt.Duration = ev.Duration
	}
	c.resumeLocked(rt, c.snap.EffectivePaused, fx)
}

func (c *Controller) onProgressLocked(rt *Runtime, ev media.Event, fx *effects) {
	// The store flag also covers hosts that drive seeking without BeginSeek.
	if !rt.State.IsActive() || c.seeking || c.snap.Seeking {
		return
	}
	rt.CurrentTime = ev.Position
	if ev.Duration > 0 {
		rt.Duration = ev.Duration
	}
	fx.events = append(fx.events, ProgressChange{
		ItemID:   rt.ItemID,
		Position: rt.CurrentTime,
		Duration: rt.Duration,
	})
}

func (c *Controller) onEndLocked(rt *Runtime, fx *effects) {
	if !rt.State.IsActive() {
		return
	}
	now := c.now()
	if now.Sub(rt.lastEnd) < c.cfg.LoopDebounce {
		return
	}
	rt.lastEnd = now
	rt.LoopCount++

	item, _ := c.items.Lookup(rt.ItemID)
	loop := !item.Preview && (c.cfg.MaxLoops <= 0 || rt.LoopCount < c.cfg.MaxLoops)
	if !loop {
		rt.Finished = true
		rt.CurrentTime = rt.Duration
		c.setStateLocked(rt, StateFinished, fx)
		return
	}

	if prim, ok := c.pool.Get(rt.ItemID); ok {
		prim.Seek(0)
		if rt.State == StatePlaying {
			prim.Play()
		}
	}
	rt.CurrentTime = 0
	fx.events = append(fx.events, ProgressChange{ItemID: rt.ItemID, Duration: rt.Duration})
}

func (c *Controller) onErrorLocked(rt *Runtime, kind ErrorKind, cause error, fx *effects) {
	// Every failure of the current load counts. Idle runtimes have nothing
	// loaded, and an unplayable item stays at the ceiling.
	if rt.State == StateIdle || rt.Unplayable {
		return
	}
	c.failLocked(rt, kind, cause, fx)
}

// Retry reloads the active item after an error, with a new generation.
func (c *Controller) Retry() error {
	var fx effects
	c.mu.Lock()
	rt := c.activeRuntimeLocked()
	if rt == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	if !rt.HasError {
		c.mu.Unlock()
		return fmt.Errorf("retry %q in state %v: %w", rt.ItemID, rt.State, ErrInvalidState)
	}
	if !rt.CanRetry(c.cfg.RetryCeiling) {
		c.mu.Unlock()
		return fmt.Errorf("retry %q: %w", rt.ItemID, ErrRetriesExhausted)
	}
	item, ok := c.items.Lookup(rt.ItemID)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("retry %q: %w", rt.ItemID, feed.ErrSequenceInconsistency)
	}
	rt.HasError = false
	rt.ErrorKind = ErrorNone
	rt.Err = nil
	c.metrics.Retry()
	c.loadLocked(rt, item, &fx)
	c.mu.Unlock()
	c.flush(fx)
	return nil
}

// Replay restarts a finished active item.
func (c *Controller) Replay() error {
	var fx effects
	c.mu.Lock()
	rt := c.activeRuntimeLocked()
	if rt == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	if rt.State != StateFinished {
		c.mu.Unlock()
		return fmt.Errorf("replay %q in state %v: %w", rt.ItemID, rt.State, ErrInvalidState)
	}
	if prim, ok := c.pool.Get(rt.ItemID); ok {
		prim.Seek(0)
	}
	rt.Finished = false
	rt.LoopCount = 0
	rt.CurrentTime = 0
	rt.lastEnd = c.now()
	c.resumeLocked(rt, c.snap.EffectivePaused, &fx)
	fx.events = append(fx.events, ProgressChange{ItemID: rt.ItemID, Duration: rt.Duration})
	c.mu.Unlock()
	c.flush(fx)
	return nil
}

// BeginSeek starts a scrub on the active item and marks the store as
// seeking. Media progress is ignored until EndSeek.
func (c *Controller) BeginSeek() error {
	c.mu.Lock()
	rt := c.activeRuntimeLocked()
	if rt == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	if !rt.State.CanSeek() {
		c.mu.Unlock()
		return fmt.Errorf("seek %q in state %v: %w", rt.ItemID, rt.State, ErrInvalidState)
	}
	c.seeking = true
	c.mu.Unlock()

	c.store.SetSeeking(true)
	return nil
}

// ScrubTo moves the playhead while a scrub is in progress.
func (c *Controller) ScrubTo(pos time.Duration) error {
	var fx effects
	c.mu.Lock()
	if !c.seeking {
		c.mu.Unlock()
		return fmt.Errorf("scrub without seek: %w", ErrInvalidState)
	}
	rt := c.activeRuntimeLocked()
	if rt == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	c.seekLocked(rt, pos, &fx)
	c.mu.Unlock()
	c.flush(fx)
	return nil
}

// EndSeek commits the scrub at pos and clears the seeking flag.
func (c *Controller) EndSeek(pos time.Duration) error {
	var fx effects
	c.mu.Lock()
	if !c.seeking {
		c.mu.Unlock()
		return fmt.Errorf("end seek without seek: %w", ErrInvalidState)
	}
	rt := c.activeRuntimeLocked()
	if rt == nil {
		c.seeking = false
		c.mu.Unlock()
		return ErrNotActive
	}
	c.seeking = false
	c.seekLocked(rt, pos, &fx)
	c.settleAfterSeekLocked(rt, c.pausedWithoutSeeking(), &fx)
	c.mu.Unlock()
	c.flush(fx)

	c.store.SetSeeking(false)
	return nil
}

// SeekTo jumps the active item to pos in one shot.
func (c *Controller) SeekTo(pos time.Duration) error {
	var fx effects
	c.mu.Lock()
	rt := c.activeRuntimeLocked()
	if rt == nil {
		c.mu.Unlock()
		return ErrNotActive
	}
	if !rt.State.CanSeek() {
		c.mu.Unlock()
		return fmt.Errorf("seek %q in state %v: %w", rt.ItemID, rt.State, ErrInvalidState)
	}
	c.seekLocked(rt, pos, &fx)
	c.settleAfterSeekLocked(rt, c.snap.EffectivePaused, &fx)
	c.mu.Unlock()
	c.flush(fx)
	return nil
}

func (c *Controller) seekLocked(rt *Runtime, pos time.Duration, fx *effects) {
	pos = max(pos, 0)
	if rt.Duration > 0 {
		pos = min(pos, rt.Duration)
	}
	if prim, ok := c.pool.Get(rt.ItemID); ok {
		prim.Seek(pos)
	}
	rt.CurrentTime = pos
	fx.events = append(fx.events, ProgressChange{
		ItemID:   rt.ItemID,
		Position: pos,
		Duration: rt.Duration,
	})
}

// settleAfterSeekLocked brings a positioned item to the state the pause
// flag asks for. A finished item seeked back before its end resumes.
func (c *Controller) settleAfterSeekLocked(rt *Runtime, paused bool, fx *effects) {
	if rt.rebuffering {
		return
	}
	if rt.State == StateFinished {
		if rt.Duration > 0 && rt.CurrentTime >= rt.Duration {
			return
		}
		rt.Finished = false
		rt.LoopCount = 0
		rt.lastEnd = c.now()
	} else if !rt.State.IsActive() {
		return
	}
	c.resumeLocked(rt, paused, fx)
}

// pausedWithoutSeeking is the effective pause once the seeking flag clears.
func (c *Controller) pausedWithoutSeeking() bool {
	return c.snap.UserPaused || !c.snap.AppForeground || !c.snap.ScreenFocused
}

// RefreshWindow recomputes the runtime window after the sequence changed
// without an active index change, such as after a page load.
func (c *Controller) RefreshWindow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyWindowLocked()
}

// Teardown destroys the runtime of id and releases its primitive.
func (c *Controller) Teardown(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.snap.ActiveID {
		c.seeking = false
	}
	c.teardownLocked(id)
}

// Runtime returns a copy of the runtime for id.
func (c *Controller) Runtime(id string) (Runtime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rt, ok := c.runtimes[id]
	if !ok {
		return Runtime{}, false
	}
	return *rt, true
}

// ActiveRuntime returns a copy of the runtime of the active item.
func (c *Controller) ActiveRuntime() (Runtime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rt := c.activeRuntimeLocked()
	if rt == nil {
		return Runtime{}, false
	}
	return *rt, true
}

// Seeking reports whether a scrub is in progress.
func (c *Controller) Seeking() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seeking
}

// WindowIDs returns the ids holding a runtime, in sequence order.
func (c *Controller) WindowIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.runtimes))
	for id := range c.runtimes {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return c.items.IndexOf(a) - c.items.IndexOf(b)
	})
	return ids
}

// Config returns the controller thresholds.
func (c *Controller) Config() Config {
	return c.cfg
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	if c.closed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

// Close releases every primitive and signals subscribers to stop.
func (c *Controller) Close() error {
	c.subsMu.Lock()
	if c.closed {
		c.subsMu.Unlock()
		return nil
	}
	c.closed = true
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	c.mu.Lock()
	c.runtimes = make(map[string]*Runtime)
	c.mu.Unlock()
	c.pool.ReleaseAll()
	return nil
}

func (c *Controller) activeRuntimeLocked() *Runtime {
	if c.snap.ActiveID == "" {
		return nil
	}
	return c.runtimes[c.snap.ActiveID]
}

func (c *Controller) activePrimitiveLocked() media.Primitive {
	if c.activeRuntimeLocked() == nil {
		return nil
	}
	prim, ok := c.pool.Get(c.snap.ActiveID)
	if !ok {
		return nil
	}
	return prim
}

func (c *Controller) setStateLocked(rt *Runtime, s State, fx *effects) {
	if rt.State == s {
		return
	}
	prev := rt.State
	rt.State = s
	fx.events = append(fx.events, StateChange{ItemID: rt.ItemID, Previous: prev, Current: s})
	c.logger.Debug().
		Str("item", rt.ItemID).
		Stringer("from", prev).
		Stringer("to", s).
		Msg("state changed")
}

func (c *Controller) flush(fx effects) {
	if len(fx.events) > 0 {
		c.subsMu.RLock()
		for _, e := range fx.events {
			for _, sub := range c.subs {
				sub.send(e)
			}
		}
		c.subsMu.RUnlock()
	}
	if len(fx.remove) == 0 {
		return
	}
	c.mu.RLock()
	hook := c.hook
	c.mu.RUnlock()
	for _, id := range fx.remove {
		hook.RemoveItem(id)
	}
}
