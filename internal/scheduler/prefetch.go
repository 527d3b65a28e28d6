package scheduler

import "time"

const (
	prefetchAhead     = 2
	prefetchAheadFast = 3
	fastSwipeWindow   = 350 * time.Millisecond
)

// PrefetchPlan returns the indices worth warming when active becomes the
// active index, in priority order. previous is the former active index (-1
// when none) and elapsed the time since it became active.
//
// Items in the scroll direction come first, one more of them on a fast
// swipe, then the neighbour behind.
func PrefetchPlan(active, previous, length int, elapsed time.Duration) []int {
	if active < 0 || active >= length {
		return nil
	}
	dir := 1
	if previous > active {
		dir = -1
	}
	ahead := prefetchAhead
	if previous >= 0 && (abs(active-previous) > 1 || elapsed < fastSwipeWindow) {
		ahead = prefetchAheadFast
	}

	plan := make([]int, 0, ahead+1)
	add := func(i int) {
		if i < 0 || i >= length || i == active {
			return
		}
		for _, p := range plan {
			if p == i {
				return
			}
		}
		plan = append(plan, i)
	}
	for k := 1; k <= ahead; k++ {
		add(active + dir*k)
	}
	add(active - dir)
	return plan
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
