package client

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy configures transport-level retries: capped exponential
// backoff over a fixed set of retryable HTTP statuses plus transient
// network errors. Retries happen below the dispatch layer and are
// invisible to callers.
//
// The default status set includes 400, 401, 403 and 404. Retrying those
// rarely helps; the entries are kept for compatibility with exchanges
// that return transient errors under 4xx codes. Override
// RetryableStatuses if your exchange behaves.
type RetryPolicy struct {
	MaxAttempts       int
	BackoffFactor     float64
	BackoffMax        time.Duration
	RetryableStatuses map[int]bool
}

// DefaultRetryPolicy returns the stock policy: 3 retries, backoff
// factor 2, capped at 30s.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:   3,
		BackoffFactor: 2,
		BackoffMax:    30 * time.Second,
		RetryableStatuses: map[int]bool{
			http.StatusBadRequest:          true,
			http.StatusUnauthorized:        true,
			http.StatusForbidden:           true,
			http.StatusNotFound:            true,
			http.StatusRequestTimeout:      true,
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

// RetryAttempts returns the default policy with a custom attempt count.
func RetryAttempts(n int) *RetryPolicy {
	p := DefaultRetryPolicy()
	p.MaxAttempts = n
	return p
}

// backoff computes the delay before the given retry (1-based), as
// factor * 2^(retry-1) seconds, capped at BackoffMax.
func (p *RetryPolicy) backoff(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := time.Duration(p.BackoffFactor * math.Pow(2, float64(retry-1)) * float64(time.Second))
	if p.BackoffMax > 0 && d > p.BackoffMax {
		d = p.BackoffMax
	}
	return d
}

func (p *RetryPolicy) retryable(status int) bool {
	return p.RetryableStatuses[status]
}

// retryTransport wraps an http.RoundTripper with the retry policy.
type retryTransport struct {
	base    http.RoundTripper
	policy  *RetryPolicy
	log     zerolog.Logger
	onRetry func()
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= t.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if t.onRetry != nil {
				t.onRetry()
			}
			delay := t.policy.backoff(attempt)
			t.log.Debug().
				Int("attempt", attempt).
				Dur("backoff", delay).
				Str("url", req.URL.String()).
				Msg("retrying request")
			select {
			case <-time.After(delay):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			lastResp, lastErr = nil, err
			if isTransientErr(err) {
				continue
			}
			return nil, err
		}

		if t.policy.retryable(resp.StatusCode) && attempt < t.policy.MaxAttempts {
			resp.Body.Close()
			lastResp, lastErr = resp, nil
			continue
		}
		return resp, nil
	}

	return lastResp, lastErr
}

// isTransientErr reports whether a transport error is worth retrying:
// timeouts and connection-level failures (refused, reset), but not
// context cancellation.
func isTransientErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var op *net.OpError
	if errors.As(err, &op) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
