package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/ads"
	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/middleware"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

const pizzaSceneJSON = `{
	"scene_id": "s01e01_basement",
	"timestamp_range": [120, 135.5],
	"detected_objects": [{"label": "pizza", "confidence": 0.8, "bbox": [0.1, 0.2, 0.3, 0.4]}],
	"scene_tags": ["friends"],
	"dialogue_keywords": []
}`

type stubQuerier struct {
	events []analytics.RecommendationEvent
	err    error
	limit  int
}

func (q *stubQuerier) RecommendationsByScene(_ context.Context, sceneID string, limit int) ([]analytics.RecommendationEvent, error) {
	q.limit = limit
	return q.events, q.err
}

func newTestServer(t *testing.T) (*Server, *observability.MockMetricsRegistry) {
	t.Helper()
	metrics := observability.NewMockMetricsRegistry()
	svc := ads.NewService(catalog.NewMockClient(), 0, analytics.NoopSink{}, metrics, zap.NewNop())
	return NewServer(zap.NewNop(), svc, nil, metrics, false), metrics
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecommendWithPersonaKey(t *testing.T) {
	srv, metrics := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodPost, "/ads/recommend",
		`{"scene": `+pizzaSceneJSON+`, "user_key": "a"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s01e01_basement", resp.SceneID)
	assert.Equal(t, models.ProductPizza, resp.Overlay.SelectedProductKey)
	assert.Equal(t, "pizza", resp.Overlay.DetectedLabel)
	assert.Len(t, resp.Results, 3)
	assert.Nil(t, resp.Debug)
	assert.Equal(t, 1, metrics.Count("requests", "recommend", "POST", "200"))
}

func TestRecommendDebugTrace(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodPost, "/ads/recommend",
		`{"scene": `+pizzaSceneJSON+`, "user_key": "B", "debug": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Debug)
	assert.NotEmpty(t, resp.Debug.Steps)
	assert.NotEmpty(t, resp.Debug.Matched())
}

func TestRecommendErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"malformed json", `{"scene":`, http.StatusBadRequest, "invalid request"},
		{"missing scene", `{"user_key":"A"}`, http.StatusBadRequest, "invalid request"},
		{"missing user", `{"scene": ` + pizzaSceneJSON + `}`, http.StatusBadRequest, "user or user_key required"},
		{"unknown persona", `{"scene": ` + pizzaSceneJSON + `, "user_key": "Z"}`, http.StatusNotFound, "unknown persona"},
		{
			"invalid scene",
			`{"scene": {"scene_id": "x", "timestamp_range": [1], "detected_objects": []}, "user_key": "A"}`,
			http.StatusBadRequest, "validation failed",
		},
		{
			"invalid user",
			`{"scene": ` + pizzaSceneJSON + `, "user": {"household_size": 0}}`,
			http.StatusBadRequest, "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := do(t, srv.Router(), http.MethodPost, "/ads/recommend", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tt.errMsg)
		})
	}
}

func TestRecommendValidationDetail(t *testing.T) {
	srv, metrics := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodPost, "/ads/recommend",
		`{"scene": {"scene_id": "x", "timestamp_range": [1]}, "user_key": "A"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"timestamp_range"`)
	assert.Equal(t, 1, metrics.Count("validation_failures"))
}

func TestPersonaHandlers(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := do(t, h, http.MethodGet, "/personas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"personas":["A","B"]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/personas/b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.UserProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.NotZero(t, p.HouseholdSize)

	rec = do(t, h, http.MethodGet, "/personas/zz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	srv, metrics := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, 1, metrics.Count("requests", "health", "GET", "200"))
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodGet, "/ads/recommend", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecommendationsHandler(t *testing.T) {
	t.Run("analytics off", func(t *testing.T) {
		srv, _ := newTestServer(t)
		rec := do(t, srv.Router(), http.MethodGet, "/analytics/recommendations?scene_id=s1", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing scene", func(t *testing.T) {
		srv, _ := newTestServer(t)
		srv.Analytics = &stubQuerier{}
		rec := do(t, srv.Router(), http.MethodGet, "/analytics/recommendations", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		srv, _ := newTestServer(t)
		srv.Analytics = &stubQuerier{}
		rec := do(t, srv.Router(), http.MethodGet, "/analytics/recommendations?scene_id=s1&limit=x", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("query error", func(t *testing.T) {
		srv, _ := newTestServer(t)
		srv.Analytics = &stubQuerier{err: errors.New("boom")}
		rec := do(t, srv.Router(), http.MethodGet, "/analytics/recommendations?scene_id=s1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		srv, _ := newTestServer(t)
		q := &stubQuerier{events: []analytics.RecommendationEvent{{SceneID: "s1", ProductKey: "coke", Rule: "scene_beverage"}}}
		srv.Analytics = q
		rec := do(t, srv.Router(), http.MethodGet, "/analytics/recommendations?scene_id=s1&limit=5", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, q.limit)

		var body struct {
			SceneID         string                          `json:"scene_id"`
			Recommendations []analytics.RecommendationEvent `json:"recommendations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "s1", body.SceneID)
		require.Len(t, body.Recommendations, 1)
		assert.Equal(t, "scene_beverage", body.Recommendations[0].Rule)
	})
}
