package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks throttling and retry statistics for one throttler.
// It satisfies the paceline.Recorder interface.
type Metrics struct {
	attempts  atomic.Int64
	successes atomic.Int64
	retries   atomic.Int64
	failures  atomic.Int64

	throttleDelayNs atomic.Int64
	retryDelayNs    atomic.Int64

	// Per-zone throttle counts
	mu        sync.RWMutex
	zoneStats map[string]int64
	startTime time.Time
}

// New creates a new metrics tracker.
func New() *Metrics {
	return &Metrics{
		zoneStats: make(map[string]int64),
		startTime: time.Now(),
	}
}

// RecordThrottle records a throttling delay in the given zone.
func (m *Metrics) RecordThrottle(zone string, delay time.Duration) {
	m.throttleDelayNs.Add(int64(delay))

	m.mu.Lock()
	m.zoneStats[zone]++
	m.mu.Unlock()
}

// RecordAttempt records one operation attempt.
func (m *Metrics) RecordAttempt() {
	m.attempts.Add(1)
}

// RecordSuccess records a completed operation.
func (m *Metrics) RecordSuccess() {
	m.successes.Add(1)
}

// RecordRetry records a retry and the backoff delay preceding it.
func (m *Metrics) RecordRetry(delay time.Duration) {
	m.retries.Add(1)
	m.retryDelayNs.Add(int64(delay))
}

// RecordFailure records an operation that finally failed, whether fatal or
// exhausted.
func (m *Metrics) RecordFailure() {
	m.failures.Add(1)
}

// GetSnapshot returns a snapshot of current metrics.
func (m *Metrics) GetSnapshot() *Snapshot {
	m.mu.RLock()
	zones := make(map[string]int64, len(m.zoneStats))
	for zone, count := range m.zoneStats {
		zones[zone] = count
	}
	m.mu.RUnlock()

	return &Snapshot{
		Attempts:           m.attempts.Load(),
		Successes:          m.successes.Load(),
		Retries:            m.retries.Load(),
		Failures:           m.failures.Load(),
		TotalThrottleDelay: time.Duration(m.throttleDelayNs.Load()),
		TotalRetryDelay:    time.Duration(m.retryDelayNs.Load()),
		ZoneCounts:         zones,
		UptimeSeconds:      int64(time.Since(m.startTime).Seconds()),
		StartTime:          m.startTime,
	}
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Attempts           int64            `json:"attempts"`
	Successes          int64            `json:"successes"`
	Retries            int64            `json:"retries"`
	Failures           int64            `json:"failures"`
	TotalThrottleDelay time.Duration    `json:"total_throttle_delay"`
	TotalRetryDelay    time.Duration    `json:"total_retry_delay"`
	ZoneCounts         map[string]int64 `json:"zone_counts"`
	UptimeSeconds      int64            `json:"uptime_seconds"`
	StartTime          time.Time        `json:"start_time"`
}
