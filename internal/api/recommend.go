package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/logic"
	"github.com/patrickwarner/seamlessads/internal/middleware"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/personas"
)

// maxBodyBytes caps recommendation request bodies.
const maxBodyBytes = 1 << 20

// RecommendRequest is the body of POST /ads/recommend. User takes
// precedence over UserKey when both are set.
type RecommendRequest struct {
	Scene   *models.SceneMetadata `json:"scene"`
	User    *models.UserProfile   `json:"user,omitempty"`
	UserKey string                `json:"user_key,omitempty"`
	Debug   bool                  `json:"debug,omitempty"`
}

// RecommendResponse is an AdResponse with an optional selection trace.
type RecommendResponse struct {
	models.AdResponse
	Debug *logic.SelectionTrace `json:"debug,omitempty"`
}

var errMissingUser = errors.New("user or user_key required")

func decodeRecommendRequest(r *http.Request) (*RecommendRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	defer func() {
		_ = r.Body.Close()
	}()

	var req RecommendRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if req.Scene == nil {
		return nil, errors.New("scene required")
	}
	return &req, nil
}

// resolveUser returns the inline profile or the persona named by UserKey.
func (req *RecommendRequest) resolveUser() (models.UserProfile, error) {
	if req.User != nil {
		return *req.User, nil
	}
	if req.UserKey == "" {
		return models.UserProfile{}, errMissingUser
	}
	return personas.Get(req.UserKey)
}

// RecommendHandler handles POST /ads/recommend.
func (s *Server) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "RecommendHandler")
	defer span.End()

	logger := middleware.LoggerFromRequest(r, s.Logger)
	start := time.Now()
	const endpoint = "recommend"
	const method = http.MethodPost

	fail := func(status int, msg string, detail any) {
		span.SetStatus(codes.Error, msg)
		writeJSON(w, status, errorBody{Error: msg, Detail: detail})
		s.observe(endpoint, method, status, start)
	}

	req, err := decodeRecommendRequest(r)
	if err != nil {
		logger.Warn("decode request", zap.Error(err))
		fail(http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	user, err := req.resolveUser()
	switch {
	case errors.Is(err, personas.ErrUnknownPersona):
		fail(http.StatusNotFound, err.Error(), nil)
		return
	case err != nil:
		fail(http.StatusBadRequest, err.Error(), nil)
		return
	}

	var trace *logic.SelectionTrace
	if req.Debug || s.DebugTrace {
		trace = &logic.SelectionTrace{}
	}

	resp, err := s.Ads.GenerateAdResponseWithTrace(ctx, user, *req.Scene, trace)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			logger.Info("invalid recommendation input", zap.Error(err))
			fail(http.StatusBadRequest, "validation failed", ve.Fields)
			return
		}
		logger.Error("generate ad response", zap.Error(err))
		fail(http.StatusInternalServerError, "internal error", nil)
		return
	}

	span.SetAttributes(
		attribute.String("scene_id", resp.SceneID),
		attribute.String("product_key", resp.Overlay.SelectedProductKey),
	)
	out := RecommendResponse{AdResponse: resp}
	if trace != nil {
		out.Debug = trace
	}
	writeJSON(w, http.StatusOK, out)
	s.observe(endpoint, method, http.StatusOK, start)
}
