package circuit

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// ErrOpen is returned by Execute while the breaker is open.
var ErrOpen = cb.ErrOpenState

// Settings tunes a Breaker. Zero values get the package defaults:
// trip after 3 consecutive failures or a 5% failure ratio over at
// least 20 requests, with 60s counting and recovery windows.
type Settings struct {
	Name                string
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
	FailureRatio        float64
	MinRequests         uint32
}

// Breaker wraps a gobreaker circuit breaker with exchange-friendly
// trip rules. A tripped breaker fails calls fast instead of hammering
// an API that is already rejecting us.
type Breaker struct {
	cb *cb.CircuitBreaker
}

// New creates a Breaker from the given settings.
func New(s Settings) *Breaker {
	if s.Interval == 0 {
		s.Interval = 60 * time.Second
	}
	if s.Timeout == 0 {
		s.Timeout = 60 * time.Second
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 3
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.05
	}
	if s.MinRequests == 0 {
		s.MinRequests = 20
	}

	st := cb.Settings{Name: s.Name}
	st.Interval = s.Interval
	st.Timeout = s.Timeout
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= s.ConsecutiveFailures {
			return true
		}
		if counts.Requests < s.MinRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > s.FailureRatio
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Execute runs fn through the breaker. While the breaker is open the
// call fails immediately with ErrOpen.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// State returns the current breaker state.
func (b *Breaker) State() cb.State {
	return b.cb.State()
}
