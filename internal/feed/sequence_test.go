package feed

import (
	"context"
	"errors"
	"testing"
)

func TestNewSequence_IndexesItems(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 3)...)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	for i, it := range s.Items() {
		if it.Index != i {
			t.Errorf("items[%d].Index = %d, want %d", i, it.Index, i)
		}
	}
	if s.HasMore() {
		t.Error("HasMore() = true for a sequence without pager")
	}
}

func TestSequence_Prepend_ShiftsIndices(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 10)...)

	n := s.Prepend(Item{ID: "new"})

	if n != 1 {
		t.Errorf("Prepend() = %d, want 1", n)
	}
	if s.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", s.Len())
	}
	first, _ := s.At(0)
	if first.ID != "new" || first.Index != 0 {
		t.Errorf("At(0) = %+v, want new at 0", first)
	}
	if got := s.IndexOf("item-0"); got != 1 {
		t.Errorf("IndexOf(item-0) = %d, want 1", got)
	}
	last, _ := s.At(10)
	if last.Index != 10 {
		t.Errorf("last.Index = %d, want 10", last.Index)
	}
}

func TestSequence_Prepend_ArrivalOrder(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 2)...)

	s.Prepend(Item{ID: "a"}, Item{ID: "b"})

	first, _ := s.At(0)
	second, _ := s.At(1)
	if first.ID != "b" || second.ID != "a" {
		t.Errorf("order = %s,%s, want b,a", first.ID, second.ID)
	}
}

func TestSequence_Prepend_SkipsDuplicates(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 2)...)

	if n := s.Prepend(Item{ID: "item-1"}, Item{}); n != 0 {
		t.Errorf("Prepend() = %d, want 0", n)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSequence_Remove(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 3)...)

	if !s.Remove("item-1") {
		t.Fatal("Remove(item-1) = false")
	}
	if s.Remove("item-1") {
		t.Error("second Remove(item-1) = true")
	}
	it, ok := s.At(1)
	if !ok || it.ID != "item-2" || it.Index != 1 {
		t.Errorf("At(1) = %+v, want item-2 at 1", it)
	}
}

func TestSequence_At_OutOfBounds(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 1)...)

	if _, ok := s.At(-1); ok {
		t.Error("At(-1) ok = true")
	}
	if _, ok := s.At(1); ok {
		t.Error("At(1) ok = true")
	}
}

func TestSequence_LoadMore_AppendsPages(t *testing.T) {
	s := NewSequence(SyntheticPager{PageSize: 4, Total: 6})
	ctx := context.Background()

	n, err := s.LoadMore(ctx)
	if err != nil || n != 4 {
		t.Fatalf("LoadMore() = %d, %v, want 4, nil", n, err)
	}
	if !s.HasMore() {
		t.Error("HasMore() = false after first page")
	}

	n, err = s.LoadMore(ctx)
	if err != nil || n != 2 {
		t.Fatalf("LoadMore() = %d, %v, want 2, nil", n, err)
	}
	if s.HasMore() {
		t.Error("HasMore() = true after last page")
	}
	if s.Len() != 6 {
		t.Errorf("Len() = %d, want 6", s.Len())
	}

	n, err = s.LoadMore(ctx)
	if err != nil || n != 0 {
		t.Errorf("LoadMore() past end = %d, %v, want 0, nil", n, err)
	}
}

func TestSequence_LoadMore_WrapsPagerError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSequence(PagerFunc(func(context.Context, string) (Page, error) {
		return Page{}, boom
	}))

	_, err := s.LoadMore(context.Background())

	if !errors.Is(err, boom) {
		t.Errorf("LoadMore() error = %v, want wrapping boom", err)
	}
}

func TestSequence_Refresh_ReplacesItems(t *testing.T) {
	s := NewSequence(SyntheticPager{PageSize: 3, Total: 9}, Item{ID: "stale"})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if s.IndexOf("stale") != -1 {
		t.Error("stale item still present after refresh")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestSequence_Lookup(t *testing.T) {
	s := NewSequence(nil, Numbered(5, 2)...)

	it, ok := s.Lookup("item-6")
	if !ok || it.Index != 1 {
		t.Errorf("Lookup(item-6) = %+v, %v", it, ok)
	}
	if _, ok := s.Lookup(""); ok {
		t.Error("Lookup(\"\") ok = true")
	}
}

func TestSequence_FetchFirstPage_DoesNotMutate(t *testing.T) {
	s := NewSequence(SyntheticPager{PageSize: 4, Total: 8}, Item{ID: "stale"})

	page, err := s.FetchFirstPage(context.Background())
	if err != nil {
		t.Fatalf("FetchFirstPage() error = %v", err)
	}
	if s.Len() != 1 || s.IndexOf("stale") != 0 {
		t.Fatal("sequence changed before ApplyFirstPage")
	}

	s.ApplyFirstPage(page)

	if s.Len() != 4 || !s.HasMore() {
		t.Errorf("Len() = %d, HasMore() = %v, want 4, true", s.Len(), s.HasMore())
	}
	if n, _ := s.LoadMore(context.Background()); n != 4 {
		t.Errorf("LoadMore() after apply = %d, want 4", n)
	}
}

func TestSequence_ApplyPage_DropsPageFromReplacedFeed(t *testing.T) {
	var cursors []string
	pager := PagerFunc(func(_ context.Context, cursor string) (Page, error) {
		cursors = append(cursors, cursor)
		switch cursor {
		case "old-2":
			return Page{Items: Numbered(100, 2), Next: "old-3", HasMore: true}, nil
		case "new-2":
			return Page{Items: Numbered(502, 2), Next: "new-3", HasMore: false}, nil
		}
		return Page{}, nil
	})
	s := NewSequence(pager)
	s.ApplyFirstPage(Page{Items: Numbered(0, 2), Next: "old-2", HasMore: true})
	ctx := context.Background()

	stale, err := s.FetchNextPage(ctx)
	if err != nil {
		t.Fatalf("FetchNextPage() error = %v", err)
	}
	s.ApplyFirstPage(Page{Items: Numbered(500, 2), Next: "new-2", HasMore: true})

	n, err := s.ApplyPage(stale)
	if !errors.Is(err, ErrStalePage) || n != 0 {
		t.Fatalf("ApplyPage(stale) = %d, %v, want 0, ErrStalePage", n, err)
	}
	if got := s.Items(); len(got) != 2 || got[0].ID != "item-500" || got[1].ID != "item-501" {
		t.Errorf("Items() = %+v, want item-500 item-501", got)
	}

	n, err = s.LoadMore(ctx)
	if err != nil || n != 2 {
		t.Fatalf("LoadMore() = %d, %v, want 2, nil", n, err)
	}
	if cursors[len(cursors)-1] != "new-2" {
		t.Errorf("last cursor = %q, want new-2", cursors[len(cursors)-1])
	}
	if s.HasMore() {
		t.Error("HasMore() = true, want the refreshed feed's value")
	}
}

func TestSequence_ApplyPage_IgnoresEmptyPage(t *testing.T) {
	s := NewSequence(nil, Numbered(0, 2)...)

	page, err := s.FetchNextPage(context.Background())
	if err != nil {
		t.Fatalf("FetchNextPage() error = %v", err)
	}
	if n, err := s.ApplyPage(page); n != 0 || err != nil {
		t.Errorf("ApplyPage() = %d, %v, want 0, nil", n, err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
