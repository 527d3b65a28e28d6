package feed

// Interaction holds the viewer's like/save state for an item.
// It is owned by the interaction domain and only read here.
type Interaction struct {
	Liked     bool
	Saved     bool
	LikeCount int64
	SaveCount int64
}

// Item represents a single entry of the feed.
// Items are never reordered in place; the sequence is replaced instead.
type Item struct {
	ID           string // stable across refresh
	Index        int    // position in the current sequence
	MediaURI     string // remote media location
	ThumbnailURI string
	Author       string
	Description  string
	Preview      bool // finishes after one pass instead of looping
	Interaction  Interaction
}

// Page is one page of items returned by a Pager.
type Page struct {
	Items   []Item
	Next    string // cursor for the following page
	HasMore bool

	// Set by Sequence.FetchNextPage.
	fetched bool
	after   string
	epoch   uint64
}
