package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(2.0, 2)

	if !l.Allow("ticker") {
		t.Error("first request should be allowed")
	}
	if !l.Allow("ticker") {
		t.Error("second request should be allowed (burst)")
	}
	if l.Allow("ticker") {
		t.Error("third request should be blocked")
	}
}

func TestLimiter_IndependentEndpoints(t *testing.T) {
	l := NewLimiter(1.0, 1)

	if !l.Allow("ticker") {
		t.Error("first request to ticker should be allowed")
	}
	if !l.Allow("orders") {
		t.Error("first request to orders should be allowed")
	}
	if l.Allow("ticker") {
		t.Error("second request to ticker should be blocked")
	}
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(10.0, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "ticker"); err != nil {
		t.Fatalf("first Wait should pass immediately: %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "ticker"); err != nil {
		t.Fatalf("second Wait should not error: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 50*time.Millisecond || elapsed > 200*time.Millisecond {
		t.Errorf("second Wait should take ~100ms at 10 RPS, took %v", elapsed)
	}
}

func TestLimiter_WaitCancellation(t *testing.T) {
	l := NewLimiter(0.1, 1)
	l.Allow("ticker") // use up the burst

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "ticker"); err == nil {
		t.Error("Wait should fail when the context expires first")
	}
}

func TestLimiter_SetRPS(t *testing.T) {
	l := NewLimiter(1.0, 1)
	l.Allow("ticker")

	l.SetRPS(1000)
	time.Sleep(5 * time.Millisecond)

	if !l.Allow("ticker") {
		t.Error("raised rate should refill tokens quickly")
	}
}

func TestLimiter_Delay(t *testing.T) {
	l := NewLimiter(1.0, 1)

	if d := l.Delay("ticker"); d != 0 {
		t.Errorf("fresh limiter should have zero delay, got %v", d)
	}

	l.Allow("ticker")
	if d := l.Delay("ticker"); d <= 0 {
		t.Error("exhausted limiter should report a positive delay")
	}
}
