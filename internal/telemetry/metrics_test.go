package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Candidate()
		m.Activated(3)
		m.Cleared()
		m.ScrollCommand("animated")
		m.MediaError("load")
		m.Retry()
		m.ItemUnplayable()
		m.StaleEvent()
		m.Inserted(2)
		m.Removed()
		m.SamplesDropped(4)
		m.PageLoad(nil)
		m.CacheLookup(true)
		m.Prefetched(2)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Candidate()
	m.Candidate()
	m.Activated(7)
	m.ScrollCommand("immediate")
	m.MediaError("stall")
	m.MediaError("stall")
	m.PageLoad(errors.New("boom"))
	m.CacheLookup(false)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Candidates), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Activations), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.ActiveItemIndex), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScrollCommands.WithLabelValues("immediate")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.MediaErrors.WithLabelValues("stall")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PageLoads.WithLabelValues("error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), 0)

	m.Cleared()
	assert.InDelta(t, -1, testutil.ToFloat64(m.ActiveItemIndex), 0)
}

func TestMetrics_InsertedCountsRaces(t *testing.T) {
	m := New()

	m.Inserted(1)
	m.Inserted(3)
	m.Inserted(0)

	assert.InDelta(t, 4, testutil.ToFloat64(m.Insertions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.InsertionRaces), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Removed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "reels_removals_total 1"))
}
