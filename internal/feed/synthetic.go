package feed

import (
	"context"
	"fmt"
	"strconv"
)

// Numbered builds n items with ids "item-<start>" … "item-<start+n-1>".
func Numbered(start, n int) []Item {
	items := make([]Item, n)
	for i := range n {
		num := start + i
		items[i] = Item{
			ID:           "item-" + strconv.Itoa(num),
			Index:        i,
			MediaURI:     fmt.Sprintf("https://cdn.example.com/v/%d.mp4", num),
			ThumbnailURI: fmt.Sprintf("https://cdn.example.com/t/%d.jpg", num),
			Author:       fmt.Sprintf("creator%d", num%7),
			Description:  fmt.Sprintf("Clip number %d", num),
			Interaction: Interaction{
				LikeCount: int64(num * 137 % 5000),
				SaveCount: int64(num * 31 % 900),
			},
		}
	}
	return items
}

// SyntheticPager serves numbered pages up to a fixed total.
// The cursor is the decimal offset of the next item.
type SyntheticPager struct {
	PageSize int
	Total    int
}

// FetchPage returns the page starting at cursor.
func (p SyntheticPager) FetchPage(ctx context.Context, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return Page{}, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		offset = n
	}
	size := p.PageSize
	if size <= 0 {
		size = 10
	}
	end := min(offset+size, p.Total)
	if offset >= end {
		return Page{}, nil
	}
	return Page{
		Items:   Numbered(offset, end-offset),
		Next:    strconv.Itoa(end),
		HasMore: end < p.Total,
	}, nil
}

// Uploaded builds the item a freshly uploaded clip resolves to.
func Uploaded(id string) Item {
	return Item{
		ID:           id,
		MediaURI:     "https://cdn.example.com/u/" + id + ".m3u8",
		ThumbnailURI: "https://cdn.example.com/u/" + id + ".jpg",
		Author:       "you",
		Description:  "Just uploaded",
	}
}
