package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/patrickwarner/seamlessads/internal/observability"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket_Allow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := newTokenBucketWithClock(5, 1, clock.Now)

	for i := 0; i < 5; i++ {
		if !bucket.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}
	if bucket.Allow() {
		t.Error("Expected 6th request to be blocked")
	}

	hits, total := bucket.Stats()
	if hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
	if total != 6 {
		t.Errorf("Expected 6 total requests, got %d", total)
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := newTokenBucketWithClock(2, 10, clock.Now)

	bucket.Allow()
	bucket.Allow()
	if bucket.Allow() {
		t.Error("Expected request to be blocked")
	}

	clock.Advance(200 * time.Millisecond)
	if !bucket.Allow() {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestTokenBucket_RefillCapped(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := newTokenBucketWithClock(3, 100, clock.Now)
	clock.Advance(time.Hour)

	allowed := 0
	for i := 0; i < 10; i++ {
		if bucket.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Errorf("Expected capacity of 3 after long idle, got %d", allowed)
	}
}

func TestProviderLimiter_PerProviderBuckets(t *testing.T) {
	metrics := observability.NewMockMetricsRegistry()
	limiter := NewProviderLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: true}, metrics)
	clock := &fakeClock{t: time.Unix(0, 0)}
	limiter.now = clock.Now

	if !limiter.Allow("kroger_api") {
		t.Fatal("first kroger call should pass")
	}
	if limiter.Allow("kroger_api") {
		t.Fatal("second kroger call should be limited")
	}
	if !limiter.Allow("postgres") {
		t.Fatal("other providers have their own bucket")
	}

	if got := metrics.Count("ratelimit_hits", "kroger_api"); got != 1 {
		t.Errorf("expected 1 hit metric, got %d", got)
	}
	stats := limiter.GetStats()
	if stats["kroger_api"].Total != 2 || stats["kroger_api"].Hits != 1 {
		t.Errorf("unexpected stats: %+v", stats["kroger_api"])
	}
	if stats["kroger_api"].HitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", stats["kroger_api"].HitRate)
	}
}

func TestProviderLimiter_Disabled(t *testing.T) {
	limiter := NewProviderLimiter(Config{Capacity: 0, Enabled: false}, nil)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("any") {
			t.Fatal("disabled limiter must allow everything")
		}
	}
	if len(limiter.GetStats()) != 0 {
		t.Error("disabled limiter should not create buckets")
	}
}

func TestProviderLimiter_Concurrent(t *testing.T) {
	limiter := NewProviderLimiter(Config{Capacity: 50, RefillRate: 0, Enabled: true}, nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("p") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("expected exactly 50 allowed, got %d", allowed)
	}
}
