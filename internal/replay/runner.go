package replay

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/scheduler"
	"github.com/llehouerou/reels/internal/telemetry"
)

// Scroll is a scroll command the scheduler issued to the list.
type Scroll struct {
	Index    int
	Animated bool
}

func (s Scroll) String() string {
	if s.Animated {
		return "→" + strconv.Itoa(s.Index)
	}
	return "⇒" + strconv.Itoa(s.Index)
}

// TickReport is the state after one step.
type TickReport struct {
	Step        int
	Label       string
	Events      int
	ActiveID    string
	ActiveIndex int
	Changed     bool
	State       playback.State
	Scrolls     []Scroll
}

// Report is the outcome of a trace.
type Report struct {
	Name     string
	Ticks    []TickReport
	Final    active.Snapshot
	Items    int
	Counters map[string]float64
}

// Runner replays traces.
type Runner struct {
	cfg    scheduler.Config
	logger zerolog.Logger
}

// NewRunner creates a runner using cfg for every trace.
func NewRunner(cfg scheduler.Config, logger zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

type recordingScroller struct {
	mu      sync.Mutex
	scrolls []Scroll
}

func (r *recordingScroller) ScrollToIndex(index int, animated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrolls = append(r.scrolls, Scroll{Index: index, Animated: animated})
}

func (r *recordingScroller) take() []Scroll {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.scrolls
	r.scrolls = nil
	return s
}

// Run plays t against a fresh scheduler. Media primitives are mocks: they
// report nothing on their own, so playback only advances through media
// steps of the trace.
func (r *Runner) Run(ctx context.Context, t *Trace) (*Report, error) {
	seq := feed.NewSequence(nil, feed.Numbered(0, t.Items)...)
	scroller := &recordingScroller{}
	mocks := media.NewMockFactory()
	metrics := telemetry.New()

	sched := scheduler.New(r.cfg, scheduler.Deps{
		Sequence: seq,
		Scroller: scroller,
		Factory:  mocks.New,
		Metrics:  metrics,
		Logger:   r.logger,
	})
	defer sched.Close()

	report := &Report{Name: t.Name}
	lastID := ""
	record := func(step int, label string, events int) {
		snap := sched.Store().Snapshot()
		state := playback.StateIdle
		if rt, ok := sched.Playback().ActiveRuntime(); ok {
			state = rt.State
		}
		report.Ticks = append(report.Ticks, TickReport{
			Step:        step,
			Label:       label,
			Events:      events,
			ActiveID:    snap.ActiveID,
			ActiveIndex: snap.ActiveIndex,
			Changed:     snap.ActiveID != lastID,
			State:       state,
			Scrolls:     scroller.take(),
		})
		lastID = snap.ActiveID
	}

	sched.Dispatch(ctx)
	record(0, "start", 0)

	idAt := func(i int) string {
		item, _ := seq.At(i)
		return item.ID
	}
	for i, step := range t.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		events, err := step.events(idAt)
		if err != nil {
			return report, fmt.Errorf("step %d: %w", i+1, err)
		}
		for j, ev := range events {
			if me, ok := ev.(scheduler.MediaEvent); ok && me.Generation == 0 {
				if m := mocks.Get(me.ItemID); m != nil {
					me.Generation = m.Generation()
					events[j] = me
				}
			}
		}
		sched.Dispatch(ctx, events...)
		record(i+1, step.Label, len(events))
	}

	report.Final = sched.Store().Snapshot()
	report.Items = seq.Len()
	report.Counters = counters(metrics)
	return report, nil
}

// counters flattens the registry into "name{label=value}" keys.
func counters(m *telemetry.Metrics) map[string]float64 {
	out := make(map[string]float64)
	families, err := m.Registry().Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), "reels_")
		for _, metric := range mf.GetMetric() {
			key := name
			if labels := metric.GetLabel(); len(labels) > 0 {
				parts := make([]string, 0, len(labels))
				for _, lp := range labels {
					parts = append(parts, lp.GetName()+"="+lp.GetValue())
				}
				key += "{" + strings.Join(parts, ",") + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return out
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Write prints the report as a table of ticks followed by the counters.
func (r *Report) Write(w io.Writer) error {
	rows := make([][]string, 0, len(r.Ticks))
	for _, t := range r.Ticks {
		active := "-"
		if t.ActiveID != "" {
			active = fmt.Sprintf("%s @%d", t.ActiveID, t.ActiveIndex)
			if t.Changed {
				active = "* " + active
			}
		}
		scrolls := make([]string, 0, len(t.Scrolls))
		for _, s := range t.Scrolls {
			scrolls = append(scrolls, s.String())
		}
		rows = append(rows, []string{
			strconv.Itoa(t.Step), t.Label, strconv.Itoa(t.Events),
			active, t.State.String(), strings.Join(scrolls, " "),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("step", "label", "events", "active", "state", "scrolls").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	title := r.Name
	if title == "" {
		title = "trace"
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, tbl.Render()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "final: active=%q index=%d items=%d paused=%t muted=%t\n",
		r.Final.ActiveID, r.Final.ActiveIndex, r.Items, r.Final.EffectivePaused, r.Final.Muted); err != nil {
		return err
	}

	keys := make([]string, 0, len(r.Counters))
	for k, v := range r.Counters {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %-40s %g\n", k, r.Counters[k]); err != nil {
			return err
		}
	}
	return nil
}
