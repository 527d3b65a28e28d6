package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/keymap"
	"github.com/llehouerou/reels/internal/overlay"
	"github.com/llehouerou/reels/internal/playback"
	"github.com/llehouerou/reels/internal/scheduler"
)

// Feed is the scheduler as seen by the host.
type Feed interface {
	Post(ev scheduler.Event)
	ItemReady(ctx context.Context, id string)
	Store() *active.Store
	Playback() *playback.Controller
	Sequence() *feed.Sequence
}

var _ Feed = (*scheduler.Scheduler)(nil)

var rates = []float64{0.5, 1, 1.25, 1.5, 2}

// Model is the root bubbletea model of the demo.
type Model struct {
	ctx      context.Context
	feed     Feed
	scroller *mailboxScroller
	surface  *Surface
	overlay  overlay.Model
	keys     *keymap.Resolver
	help     help.Model
	helpKeys keymap.Help
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string

	width      int
	height     int
	focused    bool
	foreground bool

	dragVersion int
	rateIdx     int
	uploads     int
}

// NewModel creates the host model. scroller must be the Scroller the
// scheduler was built with.
func NewModel(ctx context.Context, f Feed, scroller *mailboxScroller, logger zerolog.Logger) Model {
	store, ctrl := f.Store(), f.Playback()
	presenter := overlay.NewPresenter(store, ctrl, f.Sequence())
	logger = logger.With().Str("component", "host").Logger()
	keys := keymap.NewResolver(keymap.Bindings)
	for _, c := range keys.Conflicts() {
		logger.Warn().Str("conflict", c).Msg("key bound twice")
	}
	return Model{
		ctx:        ctx,
		feed:       f,
		scroller:   scroller,
		surface:    NewSurface(1),
		overlay:    overlay.NewModel(presenter, store.Subscribe(), ctrl.Subscribe()),
		keys:       keys,
		help:       help.New(),
		helpKeys:   keymap.DefaultHelp(),
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
		focused:    true,
		foreground: true,
		rateIdx:    1,
	}
}

// Init starts the frame clock and the watchers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.overlay.Init(), m.WatchScrolls(), FrameCmd())
}

// Surface returns the simulated list.
func (m Model) Surface() *Surface {
	return m.surface
}

func (m *Model) layout() {
	listHeight := m.height - 1
	if m.help.ShowAll {
		listHeight -= fullHelpHeight(m.helpKeys)
	}
	m.surface.SetPageHeight(max(listHeight, 3), m.now())
	m.overlay.SetWidth(max(m.width-4, 0))
	m.help.Width = m.width
}

func (m Model) itemID(index int) (string, bool) {
	item, ok := m.feed.Sequence().At(index)
	return item.ID, ok
}

func fullHelpHeight(h keymap.Help) int {
	rows := 0
	for _, col := range h.Full {
		rows = max(rows, len(col))
	}
	return rows
}
