package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/reels/internal/keymap"
	"github.com/llehouerou/reels/internal/overlay"
	"github.com/llehouerou/reels/internal/reconcile"
	"github.com/llehouerou/reels/internal/scheduler"
)

const (
	seekStep = 5 * time.Second
	// Samples stop once the list has rested this long; the tracker has
	// decided by then.
	sampleWindow = time.Second
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case FrameMsg:
		return m, m.onFrame(time.Time(msg))

	case ScrollMsg:
		m.surface.ScrollTo(msg.Index, msg.Animated, m.now())
		return m, m.WatchScrolls()

	case DragReleaseMsg:
		if msg.Version == m.dragVersion && m.surface.Dragging() {
			m.feed.Post(scheduler.DragEnded{})
			m.surface.Release(m.now())
		}
		return m, nil

	case overlay.StoreChangedMsg, overlay.PlaybackChangedMsg, overlay.ClosedMsg:
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) onFrame(now time.Time) tea.Cmd {
	m.surface.SetCount(m.feed.Sequence().Len())
	if settled, index := m.surface.Step(now); settled {
		m.feed.Post(scheduler.MomentumEnded{Index: index})
	}
	if now.Sub(m.surface.MovedAt()) <= sampleWindow {
		if samples := m.surface.Samples(now, m.itemID); len(samples) > 0 {
			m.feed.Post(scheduler.ViewportSamples{Samples: samples})
		}
	}
	return FrameCmd()
}

func (m *Model) handleKey(key string) tea.Cmd {
	action := m.keys.Resolve(key)
	if action == "" {
		return nil
	}
	handlers := []func(keymap.Action) (bool, tea.Cmd){
		m.handleGlobalKeys,
		m.handleScrollKeys,
		m.handleNavigationKeys,
		m.handlePlaybackKeys,
		m.handleFeedKeys,
	}
	for _, h := range handlers {
		if handled, cmd := h(action); handled {
			return cmd
		}
	}
	return nil
}

func (m *Model) handleGlobalKeys(a keymap.Action) (bool, tea.Cmd) {
	switch a {
	case keymap.ActionQuit:
		return true, tea.Quit
	case keymap.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case keymap.ActionToggleFocus:
		m.focused = !m.focused
		m.feed.Post(scheduler.ScreenFocusChanged{Focused: m.focused})
	case keymap.ActionBackground:
		m.foreground = !m.foreground
		m.feed.Post(scheduler.AppForegroundChanged{Foreground: m.foreground})
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) handleScrollKeys(a keymap.Action) (bool, tea.Cmd) {
	now := m.now()
	step := max(m.surface.PageHeight()/3, 1)
	switch a {
	case keymap.ActionDragDown, keymap.ActionDragUp:
		if !m.surface.Dragging() {
			m.feed.Post(scheduler.DragBegan{})
		}
		if a == keymap.ActionDragUp {
			step = -step
		}
		m.surface.Drag(step, now)
		m.dragVersion++
		return true, DragReleaseCmd(m.dragVersion)
	case keymap.ActionSwipeDown, keymap.ActionSwipeUp:
		dir := 1
		if a == keymap.ActionSwipeUp {
			dir = -1
		}
		if !m.surface.Dragging() {
			m.feed.Post(scheduler.DragBegan{})
		}
		m.feed.Post(scheduler.DragEnded{})
		m.surface.Swipe(dir, now)
		return true, nil
	}
	return false, nil
}

func (m *Model) handleNavigationKeys(a keymap.Action) (bool, tea.Cmd) {
	switch a {
	case keymap.ActionNext:
		m.feed.Post(scheduler.NavigateRelative{Delta: 1})
	case keymap.ActionPrev:
		m.feed.Post(scheduler.NavigateRelative{Delta: -1})
	case keymap.ActionJumpStart:
		m.feed.Post(scheduler.Navigate{Index: 0, Mode: reconcile.Immediate})
	case keymap.ActionJumpEnd:
		last := m.feed.Sequence().Len() - 1
		if last < 0 {
			return true, nil
		}
		m.feed.Post(scheduler.Navigate{Index: last, Mode: reconcile.Immediate})
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) handlePlaybackKeys(a keymap.Action) (bool, tea.Cmd) {
	switch a {
	case keymap.ActionPlayPause:
		m.feed.Post(scheduler.TogglePause{})
	case keymap.ActionMute:
		m.feed.Post(scheduler.ToggleMute{})
	case keymap.ActionSeekForward, keymap.ActionSeekBack:
		rt, ok := m.feed.Playback().ActiveRuntime()
		if !ok {
			return true, nil
		}
		pos := rt.CurrentTime + seekStep
		if a == keymap.ActionSeekBack {
			pos = max(rt.CurrentTime-seekStep, 0)
		}
		m.feed.Post(scheduler.SeekTo{Position: pos})
	case keymap.ActionFaster:
		m.rateIdx = min(m.rateIdx+1, len(rates)-1)
		m.feed.Post(scheduler.SetRate{Rate: rates[m.rateIdx]})
	case keymap.ActionSlower:
		m.rateIdx = max(m.rateIdx-1, 0)
		m.feed.Post(scheduler.SetRate{Rate: rates[m.rateIdx]})
	case keymap.ActionRetry:
		m.feed.Post(scheduler.Retry{})
	case keymap.ActionReplay:
		m.feed.Post(scheduler.Replay{})
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) handleFeedKeys(a keymap.Action) (bool, tea.Cmd) {
	switch a {
	case keymap.ActionUpload:
		id := m.newID()
		m.uploads++
		m.logger.Info().Str("item", id).Msg("simulated upload finished")
		m.feed.ItemReady(m.ctx, id)
	case keymap.ActionRemove:
		if id := m.feed.Store().ActiveID(); id != "" {
			m.feed.Post(scheduler.RemoveItem{ID: id})
		}
	case keymap.ActionRefresh:
		m.feed.Post(scheduler.Refresh{})
	default:
		return false, nil
	}
	return true, nil
}
