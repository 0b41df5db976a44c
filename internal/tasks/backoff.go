package tasks

import (
	"sync/atomic"
	"time"
)

// throttleWindow is how long a single throttling signal keeps a batch in
// backoff. Expiry is evaluated lazily on read; no timer runs it down.
const throttleWindow = 10 * time.Second

// RateLimitMonitor tracks the most recent provider throttling signal seen
// during a batch and derives the per-item delay from it.
//
// The signal instant lives in a single atomic; concurrent RecordSignal
// calls race benignly (last writer wins, and only recency matters). One
// monitor exists per batch run, so backoff never leaks across invocations.
type RateLimitMonitor struct {
	lastSignal atomic.Int64     // unix nanos of the last signal; 0 = never
	now        func() time.Time // injectable for tests
}

// NewRateLimitMonitor creates a monitor with no recorded signal.
func NewRateLimitMonitor() *RateLimitMonitor {
	return &RateLimitMonitor{now: time.Now}
}

// RecordSignal stamps now as the most recent throttling observation.
// Callable from any task without locking.
func (m *RateLimitMonitor) RecordSignal() {
	m.lastSignal.Store(m.now().UnixNano())
}

// ShouldThrottle reports whether a signal was recorded within the last
// throttleWindow. Before any signal it is always false.
func (m *RateLimitMonitor) ShouldThrottle() bool {
	last := m.lastSignal.Load()
	if last == 0 {
		return false
	}
	return m.now().Sub(time.Unix(0, last)) < throttleWindow
}

// EffectiveDelay returns the per-item delay to apply under limits: the
// throttled delay while inside the window, the baseline otherwise.
func (m *RateLimitMonitor) EffectiveDelay(limits Limits) time.Duration {
	if m.ShouldThrottle() {
		return limits.ThrottledDelay
	}
	return limits.MinDelay
}
