package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickwarner/seamlessads/internal/observability"
)

// ProviderLimiter manages one token bucket per catalog provider. Buckets are
// created lazily on first access.
//
//	limiter := NewProviderLimiter(Config{Capacity: 20, RefillRate: 5, Enabled: true}, metrics)
//	if !limiter.Allow("kroger_api") {
//	    // provider is rate limited
//	}
type ProviderLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.RWMutex
	config  Config
	metrics observability.MetricsRegistry
	now     func() time.Time
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewProviderLimiter creates a limiter with the given configuration.
func NewProviderLimiter(config Config, metrics observability.MetricsRegistry) *ProviderLimiter {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &ProviderLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
		now:     time.Now,
	}
}

// Allow reports whether a call to provider may proceed. It always returns
// true when rate limiting is disabled.
func (l *ProviderLimiter) Allow(provider string) bool {
	if !l.config.Enabled {
		return true
	}

	l.metrics.IncrementRateLimitRequests(provider)

	l.mu.RLock()
	bucket, exists := l.buckets[provider]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		bucket, exists = l.buckets[provider]
		if !exists {
			bucket = newTokenBucketWithClock(l.config.Capacity, l.config.RefillRate, l.now)
			l.buckets[provider] = bucket
		}
		l.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		l.metrics.IncrementRateLimitHits(provider)
	}
	return allowed
}

// GetStats returns a snapshot of rate limiting statistics per provider.
func (l *ProviderLimiter) GetStats() map[string]RateLimitStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := make(map[string]RateLimitStats, len(l.buckets))
	for provider, bucket := range l.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[provider] = RateLimitStats{
			Provider: provider,
			Hits:     hits,
			Total:    total,
			HitRate:  hitRate,
		}
	}
	return stats
}

// RateLimitStats contains statistics about rate limiting for a single provider.
type RateLimitStats struct {
	Provider string  `json:"provider"`
	Hits     int64   `json:"hits"`
	Total    int64   `json:"total"`
	HitRate  float64 `json:"hit_rate"`
}

// String returns a human-readable representation of the statistics.
func (s RateLimitStats) String() string {
	return fmt.Sprintf("provider %s: %d/%d hits (%.2f%%)",
		s.Provider, s.Hits, s.Total, s.HitRate*100)
}
