package playback

import (
	"time"

	"github.com/llehouerou/reels/internal/feed"
	"github.com/llehouerou/reels/internal/media"
)

// Service defines the playback controller contract.
type Service interface {
	// Media callbacks
	HandleEvent(ev media.Event) bool

	// Commands on the active item
	Retry() error
	Replay() error
	BeginSeek() error
	ScrubTo(pos time.Duration) error
	EndSeek(pos time.Duration) error
	SeekTo(pos time.Duration) error

	// Window maintenance
	RefreshWindow()
	Teardown(id string)

	// State queries
	Runtime(id string) (Runtime, bool)
	ActiveRuntime() (Runtime, bool)
	Seeking() bool
	WindowIDs() []string
	Config() Config

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Items is the read side of the sequence the controller needs.
type Items interface {
	At(index int) (feed.Item, bool)
	Lookup(id string) (feed.Item, bool)
	IndexOf(id string) int
}

// Resolver maps a remote media URI to the URI to play.
// It must always return something playable; failures fall back to remote.
type Resolver interface {
	Resolve(remote string) string
}

// DeletionHook removes an item from the feed.
type DeletionHook interface {
	RemoveItem(id string)
}

// DeletionHookFunc adapts a function to DeletionHook.
type DeletionHookFunc func(id string)

// RemoveItem calls f.
func (f DeletionHookFunc) RemoveItem(id string) {
	f(id)
}
