package observability

import (
	"strings"
	"sync"
	"time"
)

// MockMetricsRegistry records counter increments in memory so tests can
// assert on them. Latency observations are counted, not stored.
type MockMetricsRegistry struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMockMetricsRegistry returns an empty MockMetricsRegistry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{counts: make(map[string]int)}
}

func (m *MockMetricsRegistry) inc(name string, labels ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key(name, labels...)]++
}

func key(name string, labels ...string) string {
	if len(labels) == 0 {
		return name
	}
	return name + "{" + strings.Join(labels, ",") + "}"
}

// Count returns how many times the named metric was recorded with labels.
func (m *MockMetricsRegistry) Count(name string, labels ...string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key(name, labels...)]
}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("requests", endpoint, method, status)
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, _ time.Duration) {
	m.inc("request_latency", endpoint, method)
}

func (m *MockMetricsRegistry) IncrementRecommendations(productKey, rule string) {
	m.inc("recommendations", productKey, rule)
}

func (m *MockMetricsRegistry) IncrementValidationFailures() { m.inc("validation_failures") }

func (m *MockMetricsRegistry) IncrementCatalogSearches(provider, outcome string) {
	m.inc("catalog_searches", provider, outcome)
}

func (m *MockMetricsRegistry) RecordCatalogLatency(provider string, _ time.Duration) {
	m.inc("catalog_latency", provider)
}

func (m *MockMetricsRegistry) IncrementFallbackSearches(outcome string) {
	m.inc("fallback_searches", outcome)
}

func (m *MockMetricsRegistry) IncrementBreakerTransitions(name, to string) {
	m.inc("breaker_transitions", name, to)
}

func (m *MockMetricsRegistry) IncrementRateLimitRequests(provider string) {
	m.inc("ratelimit_requests", provider)
}

func (m *MockMetricsRegistry) IncrementRateLimitHits(provider string) {
	m.inc("ratelimit_hits", provider)
}

func (m *MockMetricsRegistry) IncrementCartOperations(operation, outcome string) {
	m.inc("cart_operations", operation, outcome)
}

func (m *MockMetricsRegistry) IncrementToolCalls(tool, outcome string) {
	m.inc("tool_calls", tool, outcome)
}

func (m *MockMetricsRegistry) IncrementAnalyticsErrors() { m.inc("analytics_errors") }
