package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLoadInProgress is returned by LoadMore when a page load is already running.
var ErrLoadInProgress = errors.New("page load already in progress")

// ErrStalePage is returned by ApplyPage for a page fetched before the
// sequence was refreshed or replaced.
var ErrStalePage = errors.New("page belongs to a replaced feed")

// ErrSequenceInconsistency marks an id or index that does not exist in the
// current sequence. It is never fatal: callers log it and skip the action.
var ErrSequenceInconsistency = errors.New("sequence inconsistency")

// Provider supplies the ordered items of the feed.
// The scheduler treats it as append/prepend-only data and only mutates it
// through Prepend and Remove.
type Provider interface {
	Items() []Item
	Len() int
	At(index int) (Item, bool)
	Lookup(id string) (Item, bool)
	IndexOf(id string) int
	HasMore() bool
	LoadMore(ctx context.Context) (int, error)
	Refresh(ctx context.Context) error
	Prepend(items ...Item) int
	Remove(id string) bool
}

// Pager fetches pages of items from the remote feed.
type Pager interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
}

// PagerFunc adapts a function to the Pager interface.
type PagerFunc func(ctx context.Context, cursor string) (Page, error)

// FetchPage calls f.
func (f PagerFunc) FetchPage(ctx context.Context, cursor string) (Page, error) {
	return f(ctx, cursor)
}

// Sequence is the in-memory ordered feed backed by a Pager.
// It is safe for concurrent use.
type Sequence struct {
	mu      sync.RWMutex
	items   []Item
	pager   Pager
	cursor  string
	hasMore bool
	loading bool
	epoch   uint64 // bumped whenever the items are replaced wholesale
}

// Verify Sequence implements Provider at compile time.
var _ Provider = (*Sequence)(nil)

// NewSequence creates a sequence with the given initial items.
// A nil pager means the sequence never grows on its own.
func NewSequence(pager Pager, items ...Item) *Sequence {
	s := &Sequence{
		items:   make([]Item, 0, len(items)),
		pager:   pager,
		hasMore: pager != nil,
	}
	s.items = append(s.items, items...)
	s.reindex()
	return s
}

// Items returns a copy of all items.
func (s *Sequence) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Item, len(s.items))
	copy(result, s.items)
	return result
}

// Len returns the number of items.
func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns the item at index.
func (s *Sequence) At(index int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.items) {
		return Item{}, false
	}
	return s.items[index], true
}

// Lookup returns the item with the given id.
func (s *Sequence) Lookup(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfLocked(id)
	if i < 0 {
		return Item{}, false
	}
	return s.items[i], true
}

// IndexOf returns the position of id, or -1.
func (s *Sequence) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(id)
}

func (s *Sequence) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// HasMore reports whether the pager has further pages.
func (s *Sequence) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore && s.pager != nil
}

// Append adds items at the end, skipping ids already present.
// Returns the number of items added.
func (s *Sequence) Append(items ...Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(items)
}

func (s *Sequence) appendLocked(items []Item) int {
	added := 0
	for _, it := range items {
		if it.ID == "" || s.indexOfLocked(it.ID) >= 0 {
			continue
		}
		it.Index = len(s.items)
		s.items = append(s.items, it)
		added++
	}
	return added
}

// Prepend inserts items at position 0 in arrival order, so the last item
// ends up first. Every existing index shifts by the number inserted.
// Ids already present are skipped. Returns the number of items inserted.
func (s *Sequence) Prepend(items ...Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, it := range items {
		if it.ID == "" || s.indexOfLocked(it.ID) >= 0 {
			continue
		}
		s.items = append([]Item{it}, s.items...)
		inserted++
	}
	if inserted > 0 {
		s.reindex()
	}
	return inserted
}

// Remove deletes the item with the given id.
// Returns false if the id is unknown.
func (s *Sequence) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfLocked(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
	return true
}

// Replace swaps the whole sequence.
func (s *Sequence) Replace(items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.appendLocked(items)
	s.epoch++
	s.loading = false
}

// LoadMore fetches the next page and appends it.
// Returns the number of items added.
func (s *Sequence) LoadMore(ctx context.Context) (int, error) {
	page, err := s.FetchNextPage(ctx)
	if err != nil {
		return 0, err
	}
	return s.ApplyPage(page)
}

// FetchNextPage fetches the page after the current cursor without touching
// the items. Apply the result with ApplyPage. When there is nothing more to
// load it returns an empty page, which ApplyPage ignores.
func (s *Sequence) FetchNextPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	if s.pager == nil || !s.hasMore {
		s.mu.Unlock()
		return Page{}, nil
	}
	if s.loading {
		s.mu.Unlock()
		return Page{}, ErrLoadInProgress
	}
	s.loading = true
	cursor, epoch := s.cursor, s.epoch
	s.mu.Unlock()

	page, err := s.pager.FetchPage(ctx, cursor)
	if err != nil {
		s.mu.Lock()
		if s.epoch == epoch {
			s.loading = false
		}
		s.mu.Unlock()
		return Page{}, fmt.Errorf("fetch page %q: %w", cursor, err)
	}
	page.fetched = true
	page.after = cursor
	page.epoch = epoch
	return page, nil
}

// ApplyPage appends a page returned by FetchNextPage and moves the cursor
// past it. A page fetched for a feed that has since been replaced is
// rejected with ErrStalePage and changes nothing.
func (s *Sequence) ApplyPage(page Page) (int, error) {
	if !page.fetched {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if page.epoch != s.epoch || page.after != s.cursor {
		return 0, fmt.Errorf("page after %q: %w", page.after, ErrStalePage)
	}
	s.loading = false
	s.cursor = page.Next
	s.hasMore = page.HasMore
	return s.appendLocked(page.Items), nil
}

// Refresh refetches the first page and replaces the sequence with it.
func (s *Sequence) Refresh(ctx context.Context) error {
	if s.pager == nil {
		return nil
	}
	page, err := s.FetchFirstPage(ctx)
	if err != nil {
		return err
	}
	s.ApplyFirstPage(page)
	return nil
}

// FetchFirstPage fetches the first page without touching the sequence, so
// the replacement can be applied later by the single writer.
func (s *Sequence) FetchFirstPage(ctx context.Context) (Page, error) {
	s.mu.RLock()
	pager := s.pager
	s.mu.RUnlock()
	if pager == nil {
		return Page{}, nil
	}
	page, err := pager.FetchPage(ctx, "")
	if err != nil {
		return Page{}, fmt.Errorf("refresh feed: %w", err)
	}
	return page, nil
}

// ApplyFirstPage replaces the sequence with page and restarts paging after it.
func (s *Sequence) ApplyFirstPage(page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.appendLocked(page.Items)
	s.cursor = page.Next
	s.hasMore = page.HasMore
	s.epoch++
	s.loading = false
}

// reindex refreshes Index on every item after a shift.
func (s *Sequence) reindex() {
	for i := range s.items {
		s.items[i].Index = i
	}
}
