package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/middleware"
)

// RecommendationsHandler handles GET /analytics/recommendations?scene_id=&limit=.
func (s *Server) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "analytics_recommendations"
	const method = http.MethodGet
	logger := middleware.LoggerFromRequest(r, s.Logger)

	sceneID := r.URL.Query().Get("scene_id")
	if sceneID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "scene_id required"})
		s.observe(endpoint, method, http.StatusBadRequest, start)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid limit"})
			s.observe(endpoint, method, http.StatusBadRequest, start)
			return
		}
		limit = n
	}

	if s.Analytics == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: analytics.ErrUnavailable.Error()})
		s.observe(endpoint, method, http.StatusServiceUnavailable, start)
		return
	}

	events, err := s.Analytics.RecommendationsByScene(r.Context(), sceneID, limit)
	switch {
	case errors.Is(err, analytics.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		s.observe(endpoint, method, http.StatusServiceUnavailable, start)
		return
	case err != nil:
		logger.Error("query recommendations", zap.Error(err), zap.String("scene_id", sceneID))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		s.observe(endpoint, method, http.StatusInternalServerError, start)
		return
	}
	if events == nil {
		events = []analytics.RecommendationEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scene_id": sceneID, "recommendations": events})
	s.observe(endpoint, method, http.StatusOK, start)
}
