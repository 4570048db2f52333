package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seamless_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// recommendations produced, labelled by selected product key and matched rule
	RecommendationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_recommendations_total",
			Help: "Total ad recommendations produced",
		},
		[]string{"product_key", "rule"},
	)

	// recommendations rejected because of invalid input
	ValidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seamless_validation_failures_total",
			Help: "Total recommendation requests rejected by validation",
		},
	)

	// catalog searches per provider and outcome (hit, empty, error, ratelimited, cached)
	CatalogSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_catalog_searches_total",
			Help: "Total catalog search calls",
		},
		[]string{"provider", "outcome"},
	)

	// latency of catalog backend calls
	CatalogLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seamless_catalog_duration_seconds",
			Help:    "Duration of catalog search calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// fallback searches issued after an empty or failed primary search
	FallbackSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_catalog_fallback_total",
			Help: "Total fallback catalog searches",
		},
		[]string{"outcome"},
	)

	// rate limit hits per provider
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_ratelimit_hits_total",
			Help: "Total rate limit hits per provider",
		},
		[]string{"provider"},
	)

	// rate limit requests per provider
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_ratelimit_requests_total",
			Help: "Total rate limit requests per provider",
		},
		[]string{"provider"},
	)

	// circuit breaker state transitions
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_breaker_transitions_total",
			Help: "Total circuit breaker state changes",
		},
		[]string{"name", "to"},
	)

	// cart operations by operation and outcome
	CartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_cart_operations_total",
			Help: "Total cart operations",
		},
		[]string{"operation", "outcome"},
	)

	// MCP tool invocations
	ToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seamless_tool_calls_total",
			Help: "Total MCP tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	// analytics events that could not be persisted
	AnalyticsErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seamless_analytics_errors_total",
			Help: "Total analytics persistence errors",
		},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		RecommendationCount,
		ValidationFailures,
		CatalogSearches,
		CatalogLatency,
		FallbackSearches,
		RateLimitHits,
		RateLimitRequests,
		BreakerTransitions,
		CartOperations,
		ToolCalls,
		AnalyticsErrors,
	)
}
