package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestWait_EnforcesSpacing(t *testing.T) {
	const interval = 50 * time.Millisecond
	reg := NewRegistry(interval)
	ctx := context.Background()

	var times []time.Time
	for i := 0; i < 4; i++ {
		if err := reg.Wait(ctx, "musicbrainz"); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
		times = append(times, time.Now())
	}

	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval-5*time.Millisecond {
			t.Errorf("gap between call %d and %d = %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestWait_SourcesIndependent(t *testing.T) {
	const interval = 200 * time.Millisecond
	reg := NewRegistry(interval)
	ctx := context.Background()

	// Consume the first token on each source.
	if err := reg.Wait(ctx, "lastfm"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	start := time.Now()
	if err := reg.Wait(ctx, "discogs"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	// A different source's first turn is granted immediately, not
	// serialized behind lastfm's clock.
	if elapsed := time.Since(start); elapsed > interval/2 {
		t.Errorf("first turn for independent source took %v, expected no wait", elapsed)
	}
}

func TestWait_ConcurrentWorkersSerialized(t *testing.T) {
	const interval = 40 * time.Millisecond
	reg := NewRegistry(interval)
	ctx := context.Background()

	const workers = 4
	var mu sync.Mutex
	var times []time.Time
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.Wait(ctx, "musicbrainz"); err != nil {
				t.Errorf("Wait() error: %v", err)
				return
			}
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(times) != workers {
		t.Fatalf("expected %d grants, got %d", workers, len(times))
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < interval-5*time.Millisecond {
			t.Errorf("concurrent grants %d and %d only %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestWait_CancelledContext(t *testing.T) {
	reg := NewRegistry(time.Minute)
	ctx := context.Background()

	// Use up the single burst token.
	if err := reg.Wait(ctx, "musicbrainz"); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := reg.Wait(cancelled, "musicbrainz"); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestNewRegistry_DefaultInterval(t *testing.T) {
	reg := NewRegistry(0)
	if reg.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", reg.interval, DefaultInterval)
	}
}
