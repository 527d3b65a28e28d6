package overlay

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reels/internal/active"
	"github.com/llehouerou/reels/internal/playback"
)

// Model is the overlay component. It refreshes its View only when the store
// or the controller report a change, and never writes back to either.
type Model struct {
	presenter *Presenter
	renderer  *Renderer
	storeSub  *active.Subscription
	playSub   *playback.Subscription

	view   View
	width  int
	closed bool
}

// NewModel creates an overlay watching both subscriptions.
func NewModel(p *Presenter, storeSub *active.Subscription, playSub *playback.Subscription) Model {
	return Model{
		presenter: p,
		renderer:  NewRenderer(DefaultTheme),
		storeSub:  storeSub,
		playSub:   playSub,
		view:      p.View(),
	}
}

// Init starts watching.
func (m Model) Init() tea.Cmd {
	return m.Watch()
}

// SetWidth sets the render width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Current returns the last presented view.
func (m Model) Current() View {
	return m.view
}

// Update handles overlay messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StoreChangedMsg, PlaybackChangedMsg:
		m.view = m.presenter.View()
		return m, m.Watch()
	case ClosedMsg:
		m.closed = true
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the overlay.
func (m Model) View() string {
	return m.renderer.Render(m.view, m.width)
}

// Watch returns a command that waits for the next store or controller
// event. Event payloads are not used: the presenter reads fresh state.
func (m Model) Watch() tea.Cmd {
	if m.closed || m.storeSub == nil || m.playSub == nil {
		return nil
	}
	store, play := m.storeSub, m.playSub
	return func() tea.Msg {
		select {
		case <-store.ActiveChanged:
			return StoreChangedMsg{}
		case <-store.StateChanged:
			return StoreChangedMsg{}
		case <-store.EffectivePaused:
			return StoreChangedMsg{}
		case <-play.StateChanged:
			return PlaybackChangedMsg{}
		case <-play.ProgressChanged:
			return PlaybackChangedMsg{}
		case <-play.Error:
			return PlaybackChangedMsg{}
		case <-play.Unplayable:
			return PlaybackChangedMsg{}
		case <-store.Done:
			return ClosedMsg{}
		case <-play.Done:
			return ClosedMsg{}
		}
	}
}
