package insertion

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntimes struct {
	torn      []string
	refreshed int
}

func (f *fakeRuntimes) Teardown(id string) { f.torn = append(f.torn, id) }

func (f *fakeRuntimes) RefreshWindow() { f.refreshed++ }

func (h *harness) remover(rt *fakeRuntimes) *Remover {
	return NewRemover(h.seq, h.store, rt, h.rec, nil, zerolog.Nop())
}

func TestRemover_ActiveItemHandsOverToSameIndex(t *testing.T) {
	h := newHarness(t, 5, 2)
	rt := &fakeRuntimes{}

	h.remover(rt).RemoveItem("item-2")
	require.NoError(t, h.rec.Flush())

	assert.Equal(t, 4, h.seq.Len())
	snap := h.store.Snapshot()
	assert.Equal(t, "item-3", snap.ActiveID)
	assert.Equal(t, 2, snap.ActiveIndex)
	assert.Equal(t, []string{"item-2"}, rt.torn)
	assert.Equal(t, 1, rt.refreshed)
	assert.Empty(t, h.scrolls, "the list is already on that slot")
}

func TestRemover_ActiveLastItemMovesBack(t *testing.T) {
	h := newHarness(t, 3, 2)

	h.remover(&fakeRuntimes{}).RemoveItem("item-2")
	require.NoError(t, h.rec.Flush())

	snap := h.store.Snapshot()
	assert.Equal(t, "item-1", snap.ActiveID)
	assert.Equal(t, 1, snap.ActiveIndex)
	require.Len(t, h.scrolls, 1)
	assert.Equal(t, 1, h.scrolls[0].index)
}

func TestRemover_EarlierItemRepositionsActive(t *testing.T) {
	h := newHarness(t, 6, 4)

	h.remover(&fakeRuntimes{}).RemoveItem("item-1")
	require.NoError(t, h.rec.Flush())

	snap := h.store.Snapshot()
	assert.Equal(t, "item-4", snap.ActiveID, "active item keeps playing")
	assert.Equal(t, 3, snap.ActiveIndex)
	require.Len(t, h.scrolls, 1)
	assert.Equal(t, 3, h.scrolls[0].index)
	assert.False(t, h.scrolls[0].animated)
}

func TestRemover_LaterItemLeavesActiveAlone(t *testing.T) {
	h := newHarness(t, 6, 1)

	h.remover(&fakeRuntimes{}).RemoveItem("item-4")
	require.NoError(t, h.rec.Flush())

	snap := h.store.Snapshot()
	assert.Equal(t, "item-1", snap.ActiveID)
	assert.Equal(t, 1, snap.ActiveIndex)
	assert.Empty(t, h.scrolls)
}

func TestRemover_LastRemainingItemClearsStore(t *testing.T) {
	h := newHarness(t, 1, 0)

	h.remover(&fakeRuntimes{}).RemoveItem("item-0")

	assert.Zero(t, h.seq.Len())
	assert.False(t, h.store.Snapshot().HasActive())
}

func TestRemover_UnknownItem(t *testing.T) {
	h := newHarness(t, 3, 0)
	rt := &fakeRuntimes{}

	h.remover(rt).RemoveItem("ghost")

	assert.Equal(t, 3, h.seq.Len())
	assert.Empty(t, rt.torn)
	assert.Zero(t, rt.refreshed)
}
