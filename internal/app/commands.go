package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	frameInterval = 50 * time.Millisecond
	dragRelease   = 400 * time.Millisecond
)

// FrameCmd schedules the next animation frame.
func FrameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// DragReleaseCmd releases the drag identified by version.
func DragReleaseCmd(version int) tea.Cmd {
	return tea.Tick(dragRelease, func(_ time.Time) tea.Msg {
		return DragReleaseMsg{Version: version}
	})
}

// WatchScrolls waits for the next scroll command of the scheduler.
func (m Model) WatchScrolls() tea.Cmd {
	return waitForChannel(m.scroller.ch, func(req ScrollMsg, ok bool) tea.Msg {
		if !ok {
			return nil
		}
		return req
	})
}

// waitForChannel creates a command that waits for a value from a channel and converts it to a message.
// onResult receives the value and a boolean indicating if the channel is still open (false means channel closed).
func waitForChannel[T any](ch <-chan T, onResult func(T, bool) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		result, ok := <-ch
		return onResult(result, ok)
	}
}
