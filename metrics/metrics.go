// Package metrics exposes Prometheus instrumentation for API clients.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the Prometheus collectors for one client (or one
// family of clients sharing a namespace).
type Recorder struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	ThrottleWait   prometheus.Histogram
	Retries        prometheus.Counter
	DecodeFailures prometheus.Counter
	CacheHits      prometheus.Counter
}

// NewRecorder creates the collectors under the given namespace
// (typically the exchange name, e.g. "kraken").
func NewRecorder(namespace string) *Recorder {
	return &Recorder{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "API requests by method and status class",
			},
			[]string{"method", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"method"},
		),
		ThrottleWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_throttle_wait_seconds",
				Help:      "Time spent waiting on the rate limit throttle",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		Retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_request_retries_total",
				Help:      "Transport-level request retries",
			},
		),
		DecodeFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_decode_failures_total",
				Help:      "Responses that failed JSON decoding",
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_cache_hits_total",
				Help:      "GET requests served from cache",
			},
		),
	}
}

// Register registers all collectors with the given registerer.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		r.Requests, r.Duration, r.ThrottleWait, r.Retries, r.DecodeFailures, r.CacheHits,
	} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("registering client metrics: %w", err)
		}
	}
	return nil
}

// ObserveRequest records one completed request. Status 0 means the
// request never produced a response (transport error).
func (r *Recorder) ObserveRequest(method string, status int, d time.Duration) {
	r.Requests.WithLabelValues(method, statusClass(status)).Inc()
	r.Duration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveThrottleWait records time spent sleeping in the throttle.
func (r *Recorder) ObserveThrottleWait(d time.Duration) {
	r.ThrottleWait.Observe(d.Seconds())
}

// IncRetry counts one transport-level retry.
func (r *Recorder) IncRetry() {
	r.Retries.Inc()
}

// IncDecodeFailure counts one undecodable response body.
func (r *Recorder) IncDecodeFailure() {
	r.DecodeFailures.Inc()
}

// IncCacheHit counts one GET served from cache.
func (r *Recorder) IncCacheHit() {
	r.CacheHits.Inc()
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", status/100)
}
