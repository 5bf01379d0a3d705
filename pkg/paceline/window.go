package paceline

import "time"

// Window tracks the timestamps of recent successful operations and answers
// how many count against the current rolling window. It is pure bookkeeping:
// eviction is lazy and happens before each read.
//
// A Window is owned by exactly one Throttler and is not safe for concurrent
// use on its own; the owning throttler serializes access.
type Window struct {
	duration   time.Duration
	timestamps []time.Time
	start      time.Time
	total      int64

	// When a provider reports the current position through response headers,
	// the reported count replaces the local one until the next report.
	serverPosition int
	serverReported bool
}

// NewWindow creates an empty window starting now.
func NewWindow(duration time.Duration, now time.Time) *Window {
	return &Window{
		duration: duration,
		start:    now,
	}
}

// Occupancy evicts timestamps older than the window, then returns the count
// of operations against the current window. Calling it twice in succession
// with the same now yields the same result.
func (w *Window) Occupancy(now time.Time) int {
	w.evict(now)
	if w.serverReported {
		return w.serverPosition
	}
	return len(w.timestamps)
}

// Record appends a successful operation at now. The first entry of a fresh
// sequence marks the start of a new observed window.
func (w *Window) Record(now time.Time) {
	w.timestamps = append(w.timestamps, now)
	w.total++
	if len(w.timestamps) == 1 {
		w.start = now
	}
}

// Start returns the start of the current observed window.
func (w *Window) Start() time.Time {
	return w.start
}

// Reset marks the window as rolled over, starting a fresh one at now.
func (w *Window) Reset(now time.Time) {
	w.start = now
}

// Total returns the number of operations recorded over the window's lifetime.
func (w *Window) Total() int64 {
	return w.total
}

// SetServerPosition installs an externally reported occupancy, overriding the
// local count until the next report.
func (w *Window) SetServerPosition(position int) {
	if position < 0 {
		position = 0
	}
	w.serverPosition = position
	w.serverReported = true
}

// Resize changes the window duration. Existing timestamps are kept; the next
// Occupancy call evicts against the new duration.
func (w *Window) Resize(duration time.Duration) {
	if duration > 0 {
		w.duration = duration
	}
}

// Duration returns the current window duration.
func (w *Window) Duration() time.Duration {
	return w.duration
}

func (w *Window) evict(now time.Time) {
	threshold := now.Add(-w.duration)
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(threshold) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
}
