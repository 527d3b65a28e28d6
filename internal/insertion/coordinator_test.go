package insertion

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/reconcile"
)

type scroll struct {
	index    int
	animated bool
	// state observed when the scroll command was issued
	topID    string
	activeID string
}

type harness struct {
	seq     *feed.Sequence
	store   *active.Store
	rec     *reconcile.Reconciler
	scrolls []scroll
}

func newHarness(t *testing.T, n, activeIndex int) *harness {
	t.Helper()
	h := &harness{
		seq:   feed.NewSequence(nil, feed.Numbered(0, n)...),
		store: active.NewStore(active.Options{}),
	}
	h.rec = reconcile.New(h.seq, reconcile.ScrollerFunc(func(index int, animated bool) {
		top, _ := h.seq.At(0)
		h.scrolls = append(h.scrolls, scroll{index, animated, top.ID, h.store.ActiveID()})
	}), nil, zerolog.Nop())
	h.rec.Attach(h.store)

	if activeIndex >= 0 {
		item, ok := h.seq.At(activeIndex)
		require.True(t, ok)
		h.rec.NoteScrolled(activeIndex)
		h.store.SetActive(item.ID, activeIndex)
	}
	return h
}

func (h *harness) coordinator() *Coordinator {
	return NewCoordinator(h.seq, h.store, h.rec, nil, zerolog.Nop())
}

func uploaded(id string) feed.Item {
	return feed.Item{ID: id, MediaURI: "https://cdn.example.com/u/" + id + ".mp4"}
}

func TestCoordinator_PrependAndActivate_Ordering(t *testing.T) {
	h := newHarness(t, 10, 5)

	require.NoError(t, h.coordinator().PrependAndActivate(uploaded("new")))
	require.NoError(t, h.rec.Flush())

	assert.Equal(t, 11, h.seq.Len())
	assert.Equal(t, 0, h.seq.IndexOf("new"))
	for i := range 10 {
		item, _ := h.seq.At(i + 1)
		assert.Equal(t, feed.Numbered(i, 1)[0].ID, item.ID, "old item %d shifted by one", i)
		assert.Equal(t, i+1, item.Index)
	}

	snap := h.store.Snapshot()
	assert.Equal(t, "new", snap.ActiveID)
	assert.Equal(t, 0, snap.ActiveIndex)

	require.Len(t, h.scrolls, 1, "exactly one scroll command")
	assert.Equal(t, scroll{index: 0, animated: false, topID: "new", activeID: "new"}, h.scrolls[0],
		"scroll happens after the sequence and the store were updated")
}

func TestCoordinator_PrependAll_LastWins(t *testing.T) {
	h := newHarness(t, 4, 2)

	require.NoError(t, h.coordinator().PrependAll(uploaded("first"), uploaded("second")))
	require.NoError(t, h.rec.Flush())

	assert.Equal(t, 6, h.seq.Len())
	assert.Equal(t, 0, h.seq.IndexOf("second"))
	assert.Equal(t, 1, h.seq.IndexOf("first"))
	assert.Equal(t, "second", h.store.ActiveID())
	assert.Len(t, h.scrolls, 1)
}

func TestCoordinator_DuplicateActivatesInPlace(t *testing.T) {
	h := newHarness(t, 10, 0)

	require.NoError(t, h.coordinator().PrependAndActivate(feed.Numbered(7, 1)[0]))

	assert.Equal(t, 10, h.seq.Len(), "nothing inserted")
	snap := h.store.Snapshot()
	assert.Equal(t, "item-7", snap.ActiveID)
	assert.Equal(t, 7, snap.ActiveIndex)
	require.Len(t, h.scrolls, 1)
	assert.Equal(t, 7, h.scrolls[0].index)
	assert.False(t, h.scrolls[0].animated)
}

func TestCoordinator_IntoEmptyFeed(t *testing.T) {
	h := newHarness(t, 0, -1)

	require.NoError(t, h.coordinator().PrependAndActivate(uploaded("solo")))

	assert.Equal(t, "solo", h.store.ActiveID())
	assert.Len(t, h.scrolls, 1)
}

func TestCoordinator_EmptyIDIsInconsistent(t *testing.T) {
	h := newHarness(t, 3, 0)

	err := h.coordinator().PrependAndActivate(feed.Item{})

	assert.True(t, errors.Is(err, feed.ErrSequenceInconsistency))
	assert.Equal(t, 3, h.seq.Len())
	assert.Equal(t, "item-0", h.store.ActiveID())
	assert.Empty(t, h.scrolls)
}

func TestCoordinator_NothingToDo(t *testing.T) {
	h := newHarness(t, 3, 0)
	assert.NoError(t, h.coordinator().PrependAll())
	assert.Empty(t, h.scrolls)
}
