// Package ads assembles seamless ad recommendations: targeting, product
// selection, catalog discovery and overlay placement.
package ads

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/logic"
	"github.com/patrickwarner/seamlessads/internal/logic/selectors"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

var tracer = observability.Tracer("ads")

// Service turns a scene and a viewer profile into an AdResponse.
type Service struct {
	Selector  selectors.Selector
	Discovery *catalog.Discovery
	Analytics analytics.Sink
	Metrics   observability.MetricsRegistry
	Logger    *zap.Logger
}

// NewService wires a Service with the rule-based selector and discovery
// over client. searchTimeout bounds each catalog search; sink may be nil.
func NewService(client catalog.Client, searchTimeout time.Duration, sink analytics.Sink, metrics observability.MetricsRegistry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	if sink == nil {
		sink = analytics.NoopSink{}
	}
	sel := selectors.NewRuleBasedSelector()
	sel.SetLogger(logger)
	return &Service{
		Selector:  sel,
		Discovery: catalog.NewDiscovery(client, searchTimeout, logger, metrics),
		Analytics: sink,
		Metrics:   metrics,
		Logger:    logger,
	}
}

// GenerateAdResponse validates the inputs and runs the full pipeline.
func (s *Service) GenerateAdResponse(ctx context.Context, user models.UserProfile, scene models.SceneMetadata) (models.AdResponse, error) {
	return s.GenerateAdResponseWithTrace(ctx, user, scene, nil)
}

// GenerateAdResponseWithTrace behaves like GenerateAdResponse and records
// every selector rule evaluated into trace when it is non-nil. Invalid
// inputs return a *models.ValidationError and no response.
func (s *Service) GenerateAdResponseWithTrace(ctx context.Context, user models.UserProfile, scene models.SceneMetadata, trace *logic.SelectionTrace) (models.AdResponse, error) {
	ctx, span := tracer.Start(ctx, "GenerateAdResponse")
	defer span.End()
	span.SetAttributes(attribute.String("scene_id", scene.SceneID))

	if err := validateInputs(&user, &scene); err != nil {
		s.Metrics.IncrementValidationFailures()
		span.SetStatus(codes.Error, "invalid input")
		return models.AdResponse{}, err
	}

	if trace == nil {
		trace = &logic.SelectionTrace{}
	}
	attrs := logic.BuildTargetingContext(&user, &scene)
	productKey, rationale := s.Selector.SelectProductWithTrace(&user, &scene, attrs, trace)
	rule := trace.Matched()

	results, query := s.Discovery.FindProducts(ctx, productKey, &user, attrs)

	resp := models.AdResponse{
		SceneID:          scene.SceneID,
		TimestampRange:   append([]float64(nil), scene.TimestampRange...),
		Overlay:          SelectOverlay(&scene, productKey),
		UserProfile:      user.Clone(),
		TargetingContext: attrs,
		Results:          results,
		Rationale:        rationale,
	}

	span.SetAttributes(
		attribute.String("product_key", productKey),
		attribute.String("rule", rule),
		attribute.Int("results", len(results)),
	)
	s.Metrics.IncrementRecommendations(productKey, rule)
	s.record(ctx, resp, rule, query)

	if observability.ShouldSample(observability.GetSamplingRate()) {
		s.Logger.Info("ad recommendation",
			zap.String("scene_id", scene.SceneID),
			zap.String("product_key", productKey),
			zap.String("rule", rule),
			zap.String("search_query", query),
			zap.Int("results", len(results)))
	}
	return resp, nil
}

// validateInputs checks both inputs and merges their field errors into a
// single *models.ValidationError.
func validateInputs(user *models.UserProfile, scene *models.SceneMetadata) error {
	var fields []models.FieldError
	for _, err := range []error{user.Validate(), scene.Validate()} {
		if err == nil {
			continue
		}
		var ve *models.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fields = append(fields, ve.Fields...)
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) record(ctx context.Context, resp models.AdResponse, rule, query string) {
	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ProductID)
	}
	ev := analytics.RecommendationEvent{
		RequestID:          uuid.NewString(),
		SceneID:            resp.SceneID,
		ProductKey:         resp.Overlay.SelectedProductKey,
		Rule:               rule,
		SearchQuery:        query,
		TargetCategory:     resp.TargetingContext.TargetCategory,
		PriceSensitivity:   resp.TargetingContext.PriceSensitivity,
		HealthTilt:         resp.TargetingContext.HealthTilt,
		DeliveryPreference: resp.TargetingContext.DeliveryPreference,
		ProductIDs:         ids,
		LocationZIP:        resp.UserProfile.LocationZIP,
	}
	if err := s.Analytics.RecordRecommendation(ctx, ev); err != nil && !errors.Is(err, analytics.ErrUnavailable) {
		s.Metrics.IncrementAnalyticsErrors()
		s.Logger.Warn("analytics record", zap.Error(err), zap.String("scene_id", resp.SceneID))
	}
}

// overlayLabels lists detection labels that can anchor each product key.
var overlayLabels = map[string]logic.TermSet{
	models.ProductPizza:  logic.NewTermSet("pizza"),
	models.ProductCoke:   logic.NewTermSet("soda", "cola", "coke", "can", "beverage"),
	models.ProductLaptop: logic.NewTermSet("laptop", "computer", "device"),
}

// PlaceholderBBox anchors the overlay when a scene has no detections.
var PlaceholderBBox = []float64{0.1, 0.1, 0.2, 0.2}

// SelectOverlay anchors the overlay on the first detection whose label
// matches productKey, else on the most confident detection (earliest wins
// ties), else on a placeholder box labeled "unknown".
func SelectOverlay(scene *models.SceneMetadata, productKey string) models.OverlaySpec {
	labels := overlayLabels[productKey]
	var chosen *models.DetectedObject
	for i := range scene.DetectedObjects {
		obj := &scene.DetectedObjects[i]
		if labels.Has(strings.ToLower(obj.Label)) {
			chosen = obj
			break
		}
	}
	if chosen == nil {
		for i := range scene.DetectedObjects {
			obj := &scene.DetectedObjects[i]
			if chosen == nil || obj.Confidence > chosen.Confidence {
				chosen = obj
			}
		}
	}

	if chosen == nil {
		return models.OverlaySpec{
			BBox:               append([]float64(nil), PlaceholderBBox...),
			DetectedLabel:      "unknown",
			SelectedProductKey: productKey,
		}
	}
	return models.OverlaySpec{
		BBox:               append([]float64(nil), chosen.BBox...),
		DetectedLabel:      chosen.Label,
		SelectedProductKey: productKey,
	}
}
