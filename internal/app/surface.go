package app

import (
	"time"

	"github.com/llehouerou/reels/internal/viewport"
)

// Surface simulates a vertically paged virtualized list. Every item is one
// page tall and the offset is measured in rows from the top of item 0.
//
// It knows nothing about the active item: it reports what is visible and
// where a gesture settled, and it scrolls when told to.
type Surface struct {
	pageHeight int
	count      int

	offset int
	target int

	animating bool
	momentum  bool // settling after a user gesture
	dragging  bool
	movedAt   time.Time
}

// NewSurface creates a surface with pages of height rows.
func NewSurface(height int) *Surface {
	return &Surface{pageHeight: max(height, 1)}
}

// SetPageHeight resizes the pages, keeping the nearest item in place.
func (s *Surface) SetPageHeight(height int, now time.Time) {
	height = max(height, 1)
	if height == s.pageHeight {
		return
	}
	idx := max(s.Index(), 0)
	s.pageHeight = height
	s.offset = idx * height
	s.target = s.offset
	s.animating = false
	s.movedAt = now
}

// SetCount sets the number of items in the list.
func (s *Surface) SetCount(n int) {
	s.count = max(n, 0)
}

// PageHeight returns the page height in rows.
func (s *Surface) PageHeight() int { return s.pageHeight }

// Offset returns the scroll offset in rows.
func (s *Surface) Offset() int { return s.offset }

// Dragging reports whether a drag gesture is in progress.
func (s *Surface) Dragging() bool { return s.dragging }

// Animating reports whether the surface is moving on its own.
func (s *Surface) Animating() bool { return s.animating }

// MovedAt returns when the offset last changed.
func (s *Surface) MovedAt() time.Time { return s.movedAt }

// Index returns the item nearest to the top of the screen. Past the last
// item it returns Count, the overscrolled position.
func (s *Surface) Index() int {
	if s.offset < 0 {
		return 0
	}
	return (s.offset + s.pageHeight/2) / s.pageHeight
}

// Drag moves the list by rows as the finger would. The list rubber-bands
// up to one page past either end.
func (s *Surface) Drag(rows int, now time.Time) {
	s.dragging = true
	s.animating = false
	s.momentum = false
	lo := -s.pageHeight / 2
	hi := max(s.count-1, 0)*s.pageHeight + s.pageHeight
	s.offset = min(max(s.offset+rows, lo), hi)
	s.target = s.offset
	s.movedAt = now
}

// Release ends a drag and lets the list settle on the nearest page.
func (s *Surface) Release(now time.Time) {
	s.dragging = false
	s.settleOn(s.Index(), now)
}

// Swipe is a flick of one page in dir.
func (s *Surface) Swipe(dir int, now time.Time) {
	s.dragging = false
	next := s.Index() + dir
	next = min(max(next, 0), max(s.count-1, 0))
	s.settleOn(next, now)
}

func (s *Surface) settleOn(index int, now time.Time) {
	s.target = index * s.pageHeight
	s.momentum = true
	s.animating = true
	s.movedAt = now
}

// ScrollTo moves to index. It never reports a settled gesture.
func (s *Surface) ScrollTo(index int, animated bool, now time.Time) {
	s.dragging = false
	s.momentum = false
	s.target = max(index, 0) * s.pageHeight
	s.movedAt = now
	if !animated {
		s.offset = s.target
		s.animating = false
		return
	}
	s.animating = s.offset != s.target
}

// Step advances the animation by one frame. When a gesture comes to rest
// it returns true and the index it settled on.
func (s *Surface) Step(now time.Time) (settled bool, index int) {
	if !s.animating {
		return false, 0
	}
	diff := s.target - s.offset
	step := diff / 3
	if step == 0 {
		step = diff
	}
	s.offset += step
	s.movedAt = now
	if s.offset != s.target {
		return false, 0
	}
	s.animating = false
	if !s.momentum {
		return false, 0
	}
	s.momentum = false
	return true, s.Index()
}

// Samples reports the visibility of every item overlapping the screen.
// Dwell is the time since the list last moved. id resolves an index to
// an item id; items it does not know are skipped.
func (s *Surface) Samples(now time.Time, id func(index int) (string, bool)) []viewport.Sample {
	dwell := now.Sub(s.movedAt)
	top, bottom := s.offset, s.offset+s.pageHeight
	first := max(floorDiv(top, s.pageHeight), 0)
	last := floorDiv(bottom-1, s.pageHeight)

	var samples []viewport.Sample
	for i := first; i <= last && i < s.count; i++ {
		itemTop := i * s.pageHeight
		overlap := min(bottom, itemTop+s.pageHeight) - max(top, itemTop)
		if overlap <= 0 {
			continue
		}
		itemID, ok := id(i)
		if !ok {
			continue
		}
		samples = append(samples, viewport.Sample{
			ItemID:         itemID,
			Index:          i,
			VisiblePercent: float64(overlap) * 100 / float64(s.pageHeight),
			Dwell:          dwell,
		})
	}
	return samples
}

// Row maps screen row r to an item index and the row inside that item.
// ok is false for rows outside the list.
func (s *Surface) Row(r int) (index, row int, ok bool) {
	abs := s.offset + r
	if abs < 0 {
		return 0, 0, false
	}
	index = abs / s.pageHeight
	if index >= s.count {
		return 0, 0, false
	}
	return index, abs - index*s.pageHeight, true
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
