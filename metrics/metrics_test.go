package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderRegistersAndCounts(t *testing.T) {
	r := NewRecorder("testex")
	reg := prometheus.NewRegistry()
	if err := r.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	r.ObserveRequest("GET", 200, 50*time.Millisecond)
	r.ObserveRequest("GET", 502, 10*time.Millisecond)
	r.ObserveRequest("POST", 0, time.Millisecond)
	r.IncRetry()
	r.IncDecodeFailure()
	r.IncCacheHit()

	if got := testutil.ToFloat64(r.Requests.WithLabelValues("GET", "2xx")); got != 1 {
		t.Errorf("GET 2xx count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Requests.WithLabelValues("GET", "5xx")); got != 1 {
		t.Errorf("GET 5xx count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Requests.WithLabelValues("POST", "error")); got != 1 {
		t.Errorf("POST error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Retries); got != 1 {
		t.Errorf("retries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.DecodeFailures); got != 1 {
		t.Errorf("decode failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.CacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := NewRecorder("dup").Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := NewRecorder("dup").Register(reg); err == nil {
		t.Error("second register with same namespace should fail")
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{
		0:   "error",
		200: "2xx",
		301: "3xx",
		404: "4xx",
		503: "5xx",
	}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}
