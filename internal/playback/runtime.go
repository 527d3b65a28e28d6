package playback

import "time"

// Runtime is the playback state of one item inside the window.
type Runtime struct {
	ItemID      string
	State       State
	Generation  uint64
	HasError    bool
	ErrorKind   ErrorKind
	Err         error
	RetryCount  int
	Unplayable  bool
	Loading     bool
	Finished    bool
	CurrentTime time.Duration
	Duration    time.Duration
	LoopCount   int

	lastEnd          time.Time
	rebuffering      bool
	removalRequested bool
}

// Progress returns the playhead as a fraction of the duration.
func (r Runtime) Progress() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return min(max(float64(r.CurrentTime)/float64(r.Duration), 0), 1)
}

// CanRetry reports whether a manual retry is still allowed.
func (r Runtime) CanRetry(ceiling int) bool {
	return r.HasError && !r.Unplayable && r.RetryCount < ceiling
}

// resetForLoad clears the per-attempt fields before a new load.
func (r *Runtime) resetForLoad(now time.Time) {
	r.Loading = true
	r.Finished = false
	r.CurrentTime = 0
	r.LoopCount = 0
	r.rebuffering = false
	r.lastEnd = now
}

// Config holds the controller thresholds.
type Config struct {
	RetryCeiling         int
	WindowBehind         int
	WindowAhead          int
	MaxLoops             int // 0 loops forever
	LoopDebounce         time.Duration
	AutoRemoveUnplayable bool
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		RetryCeiling:         3,
		WindowBehind:         1,
		WindowAhead:          3,
		MaxLoops:             2,
		LoopDebounce:         time.Second,
		AutoRemoveUnplayable: true,
	}
}
