package app

// mailboxScroller hands scroll commands from the scheduler loop to the UI.
// Only the latest command is kept: an unread jump is superseded by the
// next one, and the loop never waits for the UI.
type mailboxScroller struct {
	ch chan ScrollMsg
}

func newMailboxScroller() *mailboxScroller {
	return &mailboxScroller{ch: make(chan ScrollMsg, 1)}
}

func (s *mailboxScroller) ScrollToIndex(index int, animated bool) {
	req := ScrollMsg{Index: index, Animated: animated}
	for {
		select {
		case s.ch <- req:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
