// Package api exposes the recommendation pipeline and persona registry over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/ads"
	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/middleware"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

var tracer = observability.Tracer("api")

// RecommendationQuerier reads recorded recommendations back from the
// analytics warehouse.
type RecommendationQuerier interface {
	RecommendationsByScene(ctx context.Context, sceneID string, limit int) ([]analytics.RecommendationEvent, error)
}

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger     *zap.Logger
	Ads        *ads.Service
	Analytics  RecommendationQuerier
	Metrics    observability.MetricsRegistry
	DebugTrace bool
}

// NewServer constructs a Server. query may be nil when analytics is off.
func NewServer(logger *zap.Logger, svc *ads.Service, query RecommendationQuerier, metrics observability.MetricsRegistry, debug bool) *Server {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:     logger,
		Ads:        svc,
		Analytics:  query,
		Metrics:    metrics,
		DebugTrace: debug,
	}
}

// Router builds the route table wrapped in request logging and otelhttp.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/ads/recommend", s.RecommendHandler).Methods(http.MethodPost)
	r.HandleFunc("/personas", s.ListPersonasHandler).Methods(http.MethodGet)
	r.HandleFunc("/personas/{key}", s.GetPersonaHandler).Methods(http.MethodGet)
	r.HandleFunc("/analytics/recommendations", s.RecommendationsHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())

	return otelhttp.NewHandler(r, "seamlessads")
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// observe records request count and latency for a finished request.
func (s *Server) observe(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
