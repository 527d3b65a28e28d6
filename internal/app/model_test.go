package app

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/scheduler"
)

type fakeFeed struct {
	mu     sync.Mutex
	events []scheduler.Event
	ready  []string

	store *active.Store
	ctrl  *playback.Controller
	seq   *feed.Sequence
}

func newFakeFeed(t *testing.T, n int) *fakeFeed {
	t.Helper()
	f := &fakeFeed{
		store: active.NewStore(active.Options{}),
		seq:   feed.NewSequence(nil, feed.Numbered(0, n)...),
	}
	mocks := media.NewMockFactory()
	pool := media.NewPool(mocks.New, func(e media.Event) { f.ctrl.HandleEvent(e) })
	f.ctrl = playback.New(playback.DefaultConfig(), playback.Deps{
		Store:  f.store,
		Items:  f.seq,
		Pool:   pool,
		Logger: zerolog.Nop(),
	})
	t.Cleanup(func() {
		_ = f.ctrl.Close()
		f.store.Close()
	})
	return f
}

func (f *fakeFeed) Post(ev scheduler.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeFeed) ItemReady(_ context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = append(f.ready, id)
}

func (f *fakeFeed) Store() *active.Store           { return f.store }
func (f *fakeFeed) Playback() *playback.Controller { return f.ctrl }
func (f *fakeFeed) Sequence() *feed.Sequence       { return f.seq }

// take returns and clears the posted events.
func (f *fakeFeed) take() []scheduler.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.events
	f.events = nil
	return ev
}

type harness struct {
	t     *testing.T
	feed  *fakeFeed
	m     Model
	clock time.Time
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	h := &harness{t: t, feed: newFakeFeed(t, n), clock: t0}
	h.m = NewModel(context.Background(), h.feed, newMailboxScroller(), zerolog.Nop())
	h.m.now = func() time.Time { return h.clock }
	h.m.newID = func() string { return "upload-1" }
	h.send(tea.WindowSizeMsg{Width: 40, Height: 11})
	h.frame()
	h.feed.take()
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) press(k string) tea.Cmd {
	h.t.Helper()
	switch k {
	case " ":
		return h.send(tea.KeyMsg{Type: tea.KeySpace})
	case "tab":
		return h.send(tea.KeyMsg{Type: tea.KeyTab})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (h *harness) frame() {
	h.t.Helper()
	h.clock = h.clock.Add(frameInterval)
	h.send(FrameMsg(h.clock))
}

func ofType[T scheduler.Event](events []scheduler.Event) []T {
	var out []T
	for _, ev := range events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

func TestModel_Layout(t *testing.T) {
	h := newHarness(t, 5)
	assert.Equal(t, 10, h.m.Surface().PageHeight())

	h.press("?")
	assert.Less(t, h.m.Surface().PageHeight(), 10, "full help takes rows from the list")
}

func TestModel_SwipeReportsMomentumEnd(t *testing.T) {
	h := newHarness(t, 5)

	h.press("J")
	events := h.feed.take()
	require.Len(t, events, 2)
	assert.IsType(t, scheduler.DragBegan{}, events[0])
	assert.IsType(t, scheduler.DragEnded{}, events[1])

	var ends []scheduler.MomentumEnded
	for range 20 {
		h.frame()
		ends = append(ends, ofType[scheduler.MomentumEnded](h.feed.take())...)
	}
	assert.Equal(t, []scheduler.MomentumEnded{{Index: 1}}, ends)
}

func TestModel_SamplesWhileMoving(t *testing.T) {
	h := newHarness(t, 5)

	h.press("J")
	var last scheduler.ViewportSamples
	for range 20 {
		h.frame()
		if s := ofType[scheduler.ViewportSamples](h.feed.take()); len(s) > 0 {
			last = s[len(s)-1]
		}
	}
	require.NotEmpty(t, last.Samples)
	assert.Equal(t, "item-1", last.Samples[0].ItemID)
	assert.InDelta(t, 100, last.Samples[0].VisiblePercent, 0.001)
	assert.Positive(t, last.Samples[0].Dwell)

	h.clock = h.clock.Add(2 * time.Second)
	h.frame()
	assert.Empty(t, ofType[scheduler.ViewportSamples](h.feed.take()), "a list at rest stops sampling")
}

func TestModel_DragReleasesAfterPause(t *testing.T) {
	h := newHarness(t, 5)

	cmd := h.press("j")
	require.NotNil(t, cmd)
	h.press("j")
	events := h.feed.take()
	assert.Len(t, ofType[scheduler.DragBegan](events), 1, "one gesture")

	h.send(DragReleaseMsg{Version: 1})
	assert.Empty(t, h.feed.take(), "superseded release is ignored")
	assert.True(t, h.m.Surface().Dragging())

	h.send(DragReleaseMsg{Version: 2})
	assert.Equal(t, []scheduler.Event{scheduler.DragEnded{}}, h.feed.take())
	assert.False(t, h.m.Surface().Dragging())
}

func TestModel_ScrollCommand(t *testing.T) {
	h := newHarness(t, 5)

	cmd := h.send(ScrollMsg{Index: 3, Animated: false})
	assert.NotNil(t, cmd, "keeps watching for scroll commands")
	assert.Equal(t, 30, h.m.Surface().Offset())

	for range 20 {
		h.frame()
	}
	assert.Empty(t, ofType[scheduler.MomentumEnded](h.feed.take()),
		"programmatic scrolls are not gestures")
}

func TestModel_Keys(t *testing.T) {
	tests := []struct {
		key  string
		want scheduler.Event
	}{
		{"n", scheduler.NavigateRelative{Delta: 1}},
		{"p", scheduler.NavigateRelative{Delta: -1}},
		{"g", scheduler.Navigate{Index: 0, Mode: reconcile.Immediate}},
		{"G", scheduler.Navigate{Index: 4, Mode: reconcile.Immediate}},
		{" ", scheduler.TogglePause{}},
		{"m", scheduler.ToggleMute{}},
		{"]", scheduler.SetRate{Rate: 1.25}},
		{"[", scheduler.SetRate{Rate: 0.5}},
		{"r", scheduler.Retry{}},
		{"R", scheduler.Replay{}},
		{"tab", scheduler.ScreenFocusChanged{Focused: false}},
		{"b", scheduler.AppForegroundChanged{Foreground: false}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			h := newHarness(t, 5)
			h.press(tt.key)
			assert.Equal(t, []scheduler.Event{tt.want}, h.feed.take())
		})
	}
}

func TestModel_SeekNeedsActiveItem(t *testing.T) {
	h := newHarness(t, 5)
	h.press("l")
	assert.Empty(t, h.feed.take())

	h.feed.store.SetActive("item-0", 0)
	h.press("l")
	assert.Equal(t, []scheduler.Event{scheduler.SeekTo{Position: seekStep}}, h.feed.take())
}

func TestModel_FeedKeys(t *testing.T) {
	h := newHarness(t, 5)

	h.press("x")
	assert.Empty(t, h.feed.take(), "nothing to remove")

	h.feed.store.SetActive("item-2", 2)
	h.press("x")
	assert.Equal(t, []scheduler.Event{scheduler.RemoveItem{ID: "item-2"}}, h.feed.take())

	h.press("u")
	assert.Equal(t, []string{"upload-1"}, h.feed.ready)

	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, []scheduler.Event{scheduler.Refresh{}}, h.feed.take())
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t, 5)
	cmd := h.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_View(t *testing.T) {
	h := newHarness(t, 5)
	h.feed.store.SetActive("item-0", 0)

	out := ansi.Strip(h.m.View())
	assert.Contains(t, out, "#0  item-0")
	assert.Contains(t, out, "1/5")
	assert.Equal(t, 11, len(splitRows(out)))
}

func splitRows(s string) []string {
	var rows []string
	start := 0
	for i := range len(s) {
		if s[i] == '\n' {
			rows = append(rows, s[start:i])
			start = i + 1
		}
	}
	return append(rows, s[start:])
}
