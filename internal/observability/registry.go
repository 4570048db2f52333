package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// so components can be tested without the global Prometheus collectors.
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Recommendation metrics
	IncrementRecommendations(productKey, rule string)
	IncrementValidationFailures()

	// Catalog metrics
	IncrementCatalogSearches(provider, outcome string)
	RecordCatalogLatency(provider string, duration time.Duration)
	IncrementFallbackSearches(outcome string)
	IncrementBreakerTransitions(name, to string)

	// Rate limiting metrics
	IncrementRateLimitRequests(provider string)
	IncrementRateLimitHits(provider string)

	// Shopping tool metrics
	IncrementCartOperations(operation, outcome string)
	IncrementToolCalls(tool, outcome string)

	// Analytics metrics
	IncrementAnalyticsErrors()
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Recommendation metrics
func (r *PrometheusRegistry) IncrementRecommendations(productKey, rule string) {
	RecommendationCount.WithLabelValues(productKey, rule).Inc()
}

func (r *PrometheusRegistry) IncrementValidationFailures() {
	ValidationFailures.Inc()
}

// Catalog metrics
func (r *PrometheusRegistry) IncrementCatalogSearches(provider, outcome string) {
	CatalogSearches.WithLabelValues(provider, outcome).Inc()
}

func (r *PrometheusRegistry) RecordCatalogLatency(provider string, duration time.Duration) {
	CatalogLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementFallbackSearches(outcome string) {
	FallbackSearches.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementBreakerTransitions(name, to string) {
	BreakerTransitions.WithLabelValues(name, to).Inc()
}

// Rate limiting metrics
func (r *PrometheusRegistry) IncrementRateLimitRequests(provider string) {
	RateLimitRequests.WithLabelValues(provider).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(provider string) {
	RateLimitHits.WithLabelValues(provider).Inc()
}

// Shopping tool metrics
func (r *PrometheusRegistry) IncrementCartOperations(operation, outcome string) {
	CartOperations.WithLabelValues(operation, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementToolCalls(tool, outcome string) {
	ToolCalls.WithLabelValues(tool, outcome).Inc()
}

// Analytics metrics
func (r *PrometheusRegistry) IncrementAnalyticsErrors() {
	AnalyticsErrors.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementRecommendations(productKey, rule string)                     {}
func (r *NoOpRegistry) IncrementValidationFailures()                                         {}
func (r *NoOpRegistry) IncrementCatalogSearches(provider, outcome string)                    {}
func (r *NoOpRegistry) RecordCatalogLatency(provider string, duration time.Duration)         {}
func (r *NoOpRegistry) IncrementFallbackSearches(outcome string)                             {}
func (r *NoOpRegistry) IncrementBreakerTransitions(name, to string)                          {}
func (r *NoOpRegistry) IncrementRateLimitRequests(provider string)                           {}
func (r *NoOpRegistry) IncrementRateLimitHits(provider string)                               {}
func (r *NoOpRegistry) IncrementCartOperations(operation, outcome string)                    {}
func (r *NoOpRegistry) IncrementToolCalls(tool, outcome string)                              {}
func (r *NoOpRegistry) IncrementAnalyticsErrors()                                            {}
