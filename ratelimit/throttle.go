package ratelimit

import (
	"sync/atomic"
	"time"
)

// Throttle enforces a minimum wall-clock spacing between consecutive
// request starts from one client instance. It is deliberately simple:
// a single timestamp and a sleep, no token bucket.
//
// The timestamp is atomic, so concurrent use is free of data races, but
// spacing is only strict for sequential callers. Two goroutines can both
// observe enough elapsed time and proceed together. Use Limiter when you
// need hard guarantees under concurrency.
type Throttle struct {
	interval time.Duration
	last     atomic.Int64 // unix milliseconds of the last request start
}

// NewThrottle returns a Throttle with the given minimum spacing.
// A non-positive interval disables waiting entirely.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since
// the last Mark, and returns how long it slept. The sleep is not
// cancellable; it is bounded by the interval.
func (t *Throttle) Wait() time.Duration {
	if t.interval <= 0 {
		return 0
	}
	last := t.last.Load()
	if last == 0 {
		return 0
	}
	elapsed := time.Duration(time.Now().UnixMilli()-last) * time.Millisecond
	if elapsed >= t.interval {
		return 0
	}
	delay := t.interval - elapsed
	time.Sleep(delay)
	return delay
}

// Mark records the current time as the start of a request. Call it
// before sending, not after: spacing is measured between request starts.
func (t *Throttle) Mark() {
	t.last.Store(time.Now().UnixMilli())
}

// Interval returns the configured minimum spacing.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// LastRequest returns the time of the last Mark, or the zero time if no
// request has been made.
func (t *Throttle) LastRequest() time.Time {
	ms := t.last.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
