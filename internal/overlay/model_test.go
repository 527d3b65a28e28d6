package overlay

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/playback"
)

type modelFixture struct {
	store *active.Store
	ctrl  *playback.Controller
	model Model
}

func newModelFixture(t *testing.T) *modelFixture {
	t.Helper()
	f := &modelFixture{store: active.NewStore(active.Options{})}
	seq := feed.NewSequence(nil, feed.Numbered(0, 5)...)
	mocks := media.NewMockFactory()
	pool := media.NewPool(mocks.New, func(e media.Event) { f.ctrl.HandleEvent(e) })
	f.ctrl = playback.New(playback.DefaultConfig(), playback.Deps{
		Store:  f.store,
		Items:  seq,
		Pool:   pool,
		Logger: zerolog.Nop(),
	})
	t.Cleanup(func() {
		_ = f.ctrl.Close()
		f.store.Close()
	})

	p := NewPresenter(f.store, f.ctrl, seq)
	f.model = NewModel(p, f.store.Subscribe(), f.ctrl.Subscribe())
	f.model.SetWidth(60)
	return f
}

func TestModel_StartsEmpty(t *testing.T) {
	f := newModelFixture(t)
	assert.False(t, f.model.Current().Visible)
	assert.Empty(t, f.model.View())
}

func TestModel_FollowsStore(t *testing.T) {
	f := newModelFixture(t)
	f.store.SetActive("item-3", 3)

	cmd := f.model.Init()
	require.NotNil(t, cmd)
	msg := cmd()

	var next tea.Cmd
	f.model, next = f.model.Update(msg)
	assert.NotNil(t, next, "keeps watching")
	assert.Equal(t, "item-3", f.model.Current().ItemID)
	assert.Equal(t, playback.StateLoading, f.model.Current().State)
	assert.Contains(t, plain(f.model.View()), "@creator3")
}

func TestModel_StopsWhenClosed(t *testing.T) {
	f := newModelFixture(t)

	var cmd tea.Cmd
	f.model, cmd = f.model.Update(ClosedMsg{})
	assert.Nil(t, cmd)
	assert.Nil(t, f.model.Watch())
}

func TestModel_WindowSize(t *testing.T) {
	f := newModelFixture(t)
	f.store.SetActive("item-0", 0)
	f.model, _ = f.model.Update(StoreChangedMsg{})
	f.model, _ = f.model.Update(tea.WindowSizeMsg{Width: 30, Height: 10})

	for _, line := range splitLines(plain(f.model.View())) {
		assert.LessOrEqual(t, len([]rune(line)), 30)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
