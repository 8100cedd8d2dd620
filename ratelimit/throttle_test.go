package ratelimit

import (
	"testing"
	"time"
)

func TestThrottle_FirstCallImmediate(t *testing.T) {
	th := NewThrottle(time.Second)

	start := time.Now()
	slept := th.Wait()
	if slept != 0 {
		t.Errorf("first Wait should not sleep, slept %v", slept)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("first Wait should return immediately, took %v", elapsed)
	}
}

func TestThrottle_EnforcesSpacing(t *testing.T) {
	const interval = 100 * time.Millisecond
	th := NewThrottle(interval)

	th.Mark()
	start := time.Now()
	th.Wait()
	elapsed := time.Since(start)

	if elapsed < interval-20*time.Millisecond {
		t.Errorf("Wait should sleep close to %v, slept %v", interval, elapsed)
	}
}

func TestThrottle_NoWaitAfterInterval(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)

	th.Mark()
	time.Sleep(70 * time.Millisecond)

	if slept := th.Wait(); slept != 0 {
		t.Errorf("elapsed interval should mean no sleep, slept %v", slept)
	}
}

func TestThrottle_ZeroIntervalDisabled(t *testing.T) {
	th := NewThrottle(0)
	th.Mark()

	if slept := th.Wait(); slept != 0 {
		t.Errorf("zero interval should never sleep, slept %v", slept)
	}
}

func TestThrottle_LastRequest(t *testing.T) {
	th := NewThrottle(time.Second)

	if !th.LastRequest().IsZero() {
		t.Error("LastRequest should be zero before any Mark")
	}

	before := time.Now().Add(-time.Millisecond)
	th.Mark()
	after := time.Now().Add(time.Millisecond)

	last := th.LastRequest()
	if last.Before(before) || last.After(after) {
		t.Errorf("LastRequest %v outside [%v, %v]", last, before, after)
	}
}

func TestThrottle_SequentialSpacing(t *testing.T) {
	const interval = 60 * time.Millisecond
	th := NewThrottle(interval)

	var starts []time.Time
	for i := 0; i < 3; i++ {
		th.Wait()
		th.Mark()
		starts = append(starts, time.Now())
	}

	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		if gap < interval-20*time.Millisecond {
			t.Errorf("gap %d is %v, want >= %v", i, gap, interval)
		}
	}
}
