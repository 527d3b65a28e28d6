// Package telemetry exposes Prometheus counters for the playback scheduler.
// A nil *Metrics is valid and records nothing.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reels"

// Metrics groups the scheduler counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Candidates      prometheus.Counter
	Activations     prometheus.Counter
	ScrollCommands  *prometheus.CounterVec
	MediaErrors     *prometheus.CounterVec
	Retries         prometheus.Counter
	Unplayable      prometheus.Counter
	StaleEvents     prometheus.Counter
	Insertions      prometheus.Counter
	InsertionRaces  prometheus.Counter
	Removals        prometheus.Counter
	DroppedSamples  prometheus.Counter
	PageLoads       *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	PrefetchQueued  prometheus.Counter
	ActiveItemIndex prometheus.Gauge
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "viewport_candidates_total",
			Help: "Dominant item transitions emitted by the viewport tracker.",
		}),
		Activations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "activations_total",
			Help: "Items that became active.",
		}),
		ScrollCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "scroll_commands_total",
			Help: "Imperative scroll commands issued to the list.",
		}, []string{"mode"}),
		MediaErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "media_errors_total",
			Help: "Media errors by kind.",
		}, []string{"kind"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "retries_total",
			Help: "Manual retries.",
		}),
		Unplayable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "unplayable_total",
			Help: "Items that reached the retry ceiling.",
		}),
		StaleEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "stale_media_events_total",
			Help: "Media events dropped by the generation guard.",
		}),
		Insertions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "insertions_total",
			Help: "Items prepended after upload.",
		}),
		InsertionRaces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "insertion_races_total",
			Help: "Ticks with more than one insertion.",
		}),
		Removals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "removals_total",
			Help: "Items removed from the feed.",
		}),
		DroppedSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dropped_viewport_samples_total",
			Help: "Viewport samples discarded because an insertion won the tick.",
		}),
		PageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "page_loads_total",
			Help: "Feed page loads by result.",
		}, []string{"result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_lookups_total",
			Help: "Playable URI resolutions by result.",
		}, []string{"result"}),
		PrefetchQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "prefetch_queued_total",
			Help: "URIs handed to the prefetcher.",
		}),
		ActiveItemIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_item_index",
			Help: "Index of the active item, -1 when none.",
		}),
	}
	m.registry.MustRegister(
		m.Candidates, m.Activations, m.ScrollCommands, m.MediaErrors,
		m.Retries, m.Unplayable, m.StaleEvents, m.Insertions,
		m.InsertionRaces, m.Removals, m.DroppedSamples, m.PageLoads,
		m.CacheLookups, m.PrefetchQueued, m.ActiveItemIndex,
	)
	m.ActiveItemIndex.Set(-1)
	return m
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Candidate() {
	if m != nil {
		m.Candidates.Inc()
	}
}

func (m *Metrics) Activated(index int) {
	if m != nil {
		m.Activations.Inc()
		m.ActiveItemIndex.Set(float64(index))
	}
}

func (m *Metrics) Cleared() {
	if m != nil {
		m.ActiveItemIndex.Set(-1)
	}
}

func (m *Metrics) ScrollCommand(mode string) {
	if m != nil {
		m.ScrollCommands.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) MediaError(kind string) {
	if m != nil {
		m.MediaErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Retry() {
	if m != nil {
		m.Retries.Inc()
	}
}

func (m *Metrics) ItemUnplayable() {
	if m != nil {
		m.Unplayable.Inc()
	}
}

func (m *Metrics) StaleEvent() {
	if m != nil {
		m.StaleEvents.Inc()
	}
}

// Inserted records n insertions processed in one tick.
func (m *Metrics) Inserted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Insertions.Add(float64(n))
	if n > 1 {
		m.InsertionRaces.Inc()
	}
}

func (m *Metrics) Removed() {
	if m != nil {
		m.Removals.Inc()
	}
}

func (m *Metrics) SamplesDropped(n int) {
	if m != nil && n > 0 {
		m.DroppedSamples.Add(float64(n))
	}
}

func (m *Metrics) PageLoad(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PageLoads.WithLabelValues(result).Inc()
}

// CacheLookup records a resolution; hit is false when the remote URI was used.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) Prefetched(n int) {
	if m != nil && n > 0 {
		m.PrefetchQueued.Add(float64(n))
	}
}
