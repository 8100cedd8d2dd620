package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter provides per-endpoint token-bucket rate limiting for clients
// that need more than the fixed-spacing Throttle: bursts, fractional
// RPS, and cancellable waits. Endpoints are tracked independently so a
// busy ticker poll cannot starve an order placement.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewLimiter creates a Limiter with the given requests-per-second and
// burst capacity, applied to every endpoint it sees.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (l *Limiter) limiterFor(endpoint string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[endpoint]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[endpoint]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[endpoint] = lim
	return lim
}

// Allow reports whether a request to the endpoint may proceed now.
func (l *Limiter) Allow(endpoint string) bool {
	return l.limiterFor(endpoint).Allow()
}

// Wait blocks until a request to the endpoint is allowed or the context
// is cancelled.
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	return l.limiterFor(endpoint).Wait(ctx)
}

// SetRPS updates the rate for all tracked endpoints.
func (l *Limiter) SetRPS(rps float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rps = rps
	for _, lim := range l.limiters {
		lim.SetLimit(rate.Limit(rps))
	}
}

// Delay returns how long a request to the endpoint would have to wait
// right now, without consuming a token.
func (l *Limiter) Delay(endpoint string) time.Duration {
	r := l.limiterFor(endpoint).Reserve()
	d := r.Delay()
	r.Cancel()
	return d
}
