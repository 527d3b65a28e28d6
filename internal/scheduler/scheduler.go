// Package scheduler runs the single-writer loop that owns the active item.
//
// Every input (viewport samples, navigation, insertions, removals, media
// callbacks, lifecycle changes, user controls) becomes an Event. Events are
// drained into ticks and processed in arrival order on one goroutine, so
// the sequence, the store, the tracker and the reconciler are only ever
// written from that goroutine. Slow work (page loads, refreshes, item
// fetches) runs off the loop and posts its result back as an Event.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/insertion"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/telemetry"
	"github.com/llehouerou/reels/internal/viewport"
)

const eventBuffer = 256

// Config holds the tunables of the loop and its components.
type Config struct {
	Viewport viewport.Config
	Playback playback.Config

	// PauseWhileSeeking makes an active scrub pause playback.
	PauseWhileSeeking bool
	// LoadMoreThreshold starts a page load when the active item is this
	// close to the end of the feed.
	LoadMoreThreshold int
	// AutoAdvance moves to the next item when the active item finishes.
	AutoAdvance bool
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		Viewport:          viewport.Config{VisiblePercent: 40, MinDwell: 50 * time.Millisecond},
		Playback:          playback.DefaultConfig(),
		PauseWhileSeeking: true,
		LoadMoreThreshold: 3,
	}
}

// Prefetcher warms media ahead of activation.
type Prefetcher interface {
	Prefetch(uris ...string)
}

// Deps are the collaborators of a Scheduler. Resolver, Fetcher,
// Prefetcher and Metrics are optional.
type Deps struct {
	Sequence   *feed.Sequence
	Scroller   reconcile.Scroller
	Factory    media.Factory
	Resolver   playback.Resolver
	Fetcher    insertion.ItemFetcher
	Prefetcher Prefetcher
	Metrics    *telemetry.Metrics
	Logger     zerolog.Logger
}

// Scheduler owns the active item of the feed.
type Scheduler struct {
	cfg        Config
	seq        *feed.Sequence
	store      *active.Store
	tracker    *viewport.Tracker
	reconciler *reconcile.Reconciler
	pool       *media.Pool
	ctrl       *playback.Controller
	coord      *insertion.Coordinator
	remover    *insertion.Remover
	fetcher    insertion.ItemFetcher
	prefetcher Prefetcher
	metrics    *telemetry.Metrics
	logger     zerolog.Logger
	now        func() time.Time

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Loop-owned state.
	pageLoading  bool
	refreshing   bool
	lastActiveID string
	lastIndex    int
	lastActiveAt time.Time
	advancedFrom string
}

// New wires the components of the loop together. The first item of the
// feed is activated on the first tick.
func New(cfg Config, deps Deps) *Scheduler {
	if cfg.LoadMoreThreshold <= 0 {
		cfg.LoadMoreThreshold = DefaultConfig().LoadMoreThreshold
	}
	s := &Scheduler{
		cfg:        cfg,
		seq:        deps.Sequence,
		fetcher:    deps.Fetcher,
		prefetcher: deps.Prefetcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With().Str("component", "scheduler").Logger(),
		now:        time.Now,
		events:     make(chan Event, eventBuffer),
		done:       make(chan struct{}),
		lastIndex:  -1,
	}

	s.store = active.NewStore(active.Options{PauseWhileSeeking: cfg.PauseWhileSeeking})
	s.tracker = viewport.New(cfg.Viewport, deps.Logger)
	s.reconciler = reconcile.New(s.seq, countingScroller{deps.Scroller, s.metrics}, s.tracker, deps.Logger)
	s.reconciler.Attach(s.store)

	s.pool = media.NewPool(deps.Factory, s.postMedia)
	s.ctrl = playback.New(cfg.Playback, playback.Deps{
		Store:    s.store,
		Items:    s.seq,
		Pool:     s.pool,
		Resolver: deps.Resolver,
		Metrics:  s.metrics,
		Logger:   deps.Logger,
	})
	s.coord = insertion.NewCoordinator(s.seq, s.store, s.reconciler, s.metrics, deps.Logger)
	s.remover = insertion.NewRemover(s.seq, s.store, s.ctrl, s.reconciler, s.metrics, deps.Logger)
	s.ctrl.SetDeletionHook(s.remover)
	return s
}

// Store returns the active store. Consumers read and subscribe only.
func (s *Scheduler) Store() *active.Store { return s.store }

// Playback returns the playback controller for queries and subscriptions.
func (s *Scheduler) Playback() *playback.Controller { return s.ctrl }

// Sequence returns the feed.
func (s *Scheduler) Sequence() *feed.Sequence { return s.seq }

// Post queues ev for the loop. It blocks while the queue is full and
// returns without effect once the loop has stopped.
func (s *Scheduler) Post(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Scheduler) postMedia(ev media.Event) {
	s.Post(MediaEvent{ev})
}

// ItemReady fetches an uploaded item off the loop and inserts it at the
// top of the feed once it arrives.
func (s *Scheduler) ItemReady(ctx context.Context, id string) {
	if s.fetcher == nil {
		s.logger.Warn().Str("item", id).Msg("item ready but no fetcher configured")
		return
	}
	s.goAsync(func() {
		item, err := s.fetcher.FetchItem(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("item", id).Msg("fetch uploaded item")
			return
		}
		s.Post(InsertItem{Item: item})
	})
}

// Run processes events until ctx is done. Events that are already queued
// when a tick starts are processed in that tick.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.stop()
	s.Dispatch(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			batch := []Event{ev}
		drain:
			for {
				select {
				case ev := <-s.events:
					batch = append(batch, ev)
				default:
					break drain
				}
			}
			s.Dispatch(ctx, batch...)
		}
	}
}

// Close stops the loop, waits for off-loop work and releases every
// media primitive.
func (s *Scheduler) Close() error {
	s.stop()
	s.wg.Wait()
	err := s.ctrl.Close()
	s.store.Close()
	return err
}

func (s *Scheduler) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *Scheduler) goAsync(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Dispatch processes events as one tick. It must only be called from the
// loop goroutine; Run calls it for every drained batch.
//
// An insertion wins its tick: viewport samples in the same tick describe
// the list before the insertion moved it and are dropped. All insertions
// of a tick are applied together, so only the last one is activated.
func (s *Scheduler) Dispatch(ctx context.Context, events ...Event) {
	var inserts []feed.Item
	for _, ev := range events {
		if ins, ok := ev.(InsertItem); ok {
			inserts = append(inserts, ins.Item)
		}
	}

	seenInserts := 0
	dropped := 0
	for _, ev := range events {
		switch e := ev.(type) {
		case ViewportSamples:
			if len(inserts) > 0 {
				dropped += len(e.Samples)
				continue
			}
			s.observe(e.Samples)
		case InsertItem:
			seenInserts++
			if seenInserts == len(inserts) {
				if err := s.coord.PrependAll(inserts...); err != nil {
					s.logger.Warn().Err(err).Msg("insert item")
				}
				s.ctrl.RefreshWindow()
			}
		default:
			s.handle(ctx, ev)
		}
	}
	if dropped > 0 {
		s.metrics.SamplesDropped(dropped)
		s.logger.Debug().Int("samples", dropped).Msg("viewport samples dropped, insertion in tick")
	}

	s.endTick(ctx)
}

func (s *Scheduler) handle(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case DragBegan:
		s.reconciler.DragBegin()
	case DragEnded:
		s.reconciler.DragEnd()
	case MomentumEnded:
		s.reconciler.MomentumEnd(e.Index)
	case Navigate:
		s.navigate(e)
	case NavigateRelative:
		s.navigateRelative(e.Delta)
	case RemoveItem:
		s.remover.RemoveItem(e.ID)
	case MediaEvent:
		s.ctrl.HandleEvent(e.Event)
		s.maybeAdvance()
	case AppForegroundChanged:
		s.store.SetAppForeground(e.Foreground)
	case ScreenFocusChanged:
		s.store.SetScreenFocused(e.Focused)
	case TogglePause:
		s.store.TogglePause()
	case SetPaused:
		s.store.SetPaused(e.Paused)
	case ToggleMute:
		s.store.ToggleMute()
	case SetMuted:
		s.store.SetMuted(e.Muted)
	case SetRate:
		s.store.SetPlaybackRate(e.Rate)
	case BeginSeek:
		s.control("begin seek", s.ctrl.BeginSeek())
	case ScrubTo:
		s.control("scrub", s.ctrl.ScrubTo(e.Position))
	case EndSeek:
		s.control("end seek", s.ctrl.EndSeek(e.Position))
	case SeekTo:
		s.control("seek", s.ctrl.SeekTo(e.Position))
	case Retry:
		s.control("retry", s.ctrl.Retry())
	case Replay:
		s.control("replay", s.ctrl.Replay())
	case LoadMore:
		s.startLoadMore(ctx)
	case PageLoaded:
		s.pageLoaded(e)
	case Refresh:
		s.startRefresh(ctx)
	case Refreshed:
		s.refreshed(e)
	default:
		s.logger.Warn().Type("event", ev).Msg("unknown event")
	}
}

func (s *Scheduler) control(op string, err error) {
	if err != nil {
		s.logger.Debug().Err(err).Str("op", op).Msg("control ignored")
	}
}

func (s *Scheduler) observe(samples []viewport.Sample) {
	c, ok := s.tracker.Observe(samples...)
	if !ok {
		return
	}
	s.metrics.Candidate()
	s.reconciler.NoteScrolled(c.Index)
	s.store.SetActive(c.ItemID, c.Index)
}

func (s *Scheduler) navigate(e Navigate) {
	id, index := e.ID, e.Index
	if id != "" {
		if i := s.seq.IndexOf(id); i >= 0 {
			index = i
		}
	} else {
		item, ok := s.seq.At(index)
		if !ok {
			s.logger.Debug().Int("index", index).Msg("navigate: no item at index")
			return
		}
		id = item.ID
	}
	s.reconciler.Expect(e.Mode)
	s.store.SetActive(id, index)
}

func (s *Scheduler) navigateRelative(delta int) {
	snap := s.store.Snapshot()
	if !snap.HasActive() {
		return
	}
	target := snap.ActiveIndex + delta
	if target < 0 || target >= s.seq.Len() {
		return
	}
	s.navigate(Navigate{Index: target, Mode: reconcile.Animated})
}

func (s *Scheduler) maybeAdvance() {
	if !s.cfg.AutoAdvance {
		return
	}
	rt, ok := s.ctrl.ActiveRuntime()
	if !ok || rt.State != playback.StateFinished || rt.ItemID == s.advancedFrom {
		return
	}
	s.advancedFrom = rt.ItemID
	s.navigateRelative(1)
}

func (s *Scheduler) startLoadMore(ctx context.Context) {
	if s.pageLoading || !s.seq.HasMore() {
		return
	}
	s.pageLoading = true
	s.goAsync(func() {
		page, err := s.seq.FetchNextPage(ctx)
		s.Post(PageLoaded{Page: page, Err: err})
	})
}

func (s *Scheduler) pageLoaded(e PageLoaded) {
	s.pageLoading = false
	if errors.Is(e.Err, feed.ErrLoadInProgress) {
		return
	}
	s.metrics.PageLoad(e.Err)
	if e.Err != nil {
		s.logger.Warn().Err(e.Err).Msg("load more")
		return
	}
	added, err := s.seq.ApplyPage(e.Page)
	if err != nil {
		// A refresh replaced the feed while the page was in flight.
		s.logger.Debug().Err(err).Msg("page dropped")
		return
	}
	s.logger.Debug().Int("added", added).Int("total", s.seq.Len()).Msg("page loaded")
	if added > 0 {
		s.ctrl.RefreshWindow()
	}
}

func (s *Scheduler) startRefresh(ctx context.Context) {
	if s.refreshing {
		return
	}
	s.refreshing = true
	s.goAsync(func() {
		page, err := s.seq.FetchFirstPage(ctx)
		s.Post(Refreshed{Page: page, Err: err})
	})
}

// refreshed replaces the feed and restarts from its first item with an
// immediate jump. Everything the loop remembered about list positions
// belongs to the old feed and is dropped.
func (s *Scheduler) refreshed(e Refreshed) {
	s.refreshing = false
	s.metrics.PageLoad(e.Err)
	if e.Err != nil {
		s.logger.Warn().Err(e.Err).Msg("refresh")
		return
	}
	s.seq.ApplyFirstPage(e.Page)
	s.tracker.Reset()
	s.reconciler.Reset()
	s.store.Clear()
	s.advancedFrom = ""
	s.logger.Info().Int("items", s.seq.Len()).Msg("feed refreshed")

	first, ok := s.seq.At(0)
	if !ok {
		return
	}
	s.store.SetActive(first.ID, 0)
	if err := s.reconciler.JumpTo(0, reconcile.Immediate); err != nil {
		s.logger.Debug().Err(err).Msg("refresh jump skipped")
	}
}

func (s *Scheduler) endTick(ctx context.Context) {
	s.activateFirst()
	if err := s.reconciler.Flush(); err != nil {
		s.logger.Debug().Err(err).Msg("flush")
	}

	snap := s.store.Snapshot()
	if snap.ActiveID != s.lastActiveID {
		s.activeChanged(snap)
	}
	if snap.HasActive() && snap.ActiveIndex >= s.seq.Len()-s.cfg.LoadMoreThreshold {
		s.startLoadMore(ctx)
	}
}

// activateFirst activates the top of the feed when nothing is active yet.
// The list starts there, so no jump is needed.
func (s *Scheduler) activateFirst() {
	if s.lastActiveID != "" || s.store.Snapshot().HasActive() {
		return
	}
	first, ok := s.seq.At(0)
	if !ok {
		return
	}
	s.reconciler.NoteScrolled(0)
	s.tracker.Seed(first.ID, 0)
	s.store.SetActive(first.ID, 0)
}

func (s *Scheduler) activeChanged(snap active.Snapshot) {
	now := s.now()
	previous, elapsed := s.lastIndex, now.Sub(s.lastActiveAt)
	s.lastActiveID = snap.ActiveID
	s.lastIndex = snap.ActiveIndex
	s.lastActiveAt = now
	if !snap.HasActive() {
		s.lastIndex = -1
		return
	}
	if s.advancedFrom != "" && snap.ActiveID != s.advancedFrom {
		s.advancedFrom = ""
	}

	if s.prefetcher == nil {
		return
	}
	plan := PrefetchPlan(snap.ActiveIndex, previous, s.seq.Len(), elapsed)
	uris := make([]string, 0, len(plan))
	for _, i := range plan {
		if item, ok := s.seq.At(i); ok && item.MediaURI != "" {
			uris = append(uris, item.MediaURI)
		}
	}
	if len(uris) == 0 {
		return
	}
	s.prefetcher.Prefetch(uris...)
	s.metrics.Prefetched(len(uris))
}

// countingScroller records every scroll command the reconciler issues.
type countingScroller struct {
	next    reconcile.Scroller
	metrics *telemetry.Metrics
}

func (c countingScroller) ScrollToIndex(index int, animated bool) {
	mode := reconcile.Immediate
	if animated {
		mode = reconcile.Animated
	}
	c.metrics.ScrollCommand(mode.String())
	if c.next != nil {
		c.next.ScrollToIndex(index, animated)
	}
}
