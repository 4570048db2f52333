package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/logic/ranking"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

const (
	primaryLimit  = 6
	relaxedLimit  = 10
	relaxedFactor = 2
	maxResults    = 3
)

// fallbackTerms are tried after the built query and the product key.
var fallbackTerms = []string{"pizza", "Coca-Cola", "cola soda", "laptop computer"}

// Discovery runs the catalog search for a selected product key: one primary
// search, then at most six relaxed searches, then ranking. Each search has
// its own deadline so a stalled backend only costs one attempt.
type Discovery struct {
	client  Client
	timeout time.Duration
	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// NewDiscovery returns a Discovery over client. A non-positive timeout
// selects DefaultCallTimeout.
func NewDiscovery(client Client, timeout time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Discovery {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Discovery{client: client, timeout: timeout, logger: logger, metrics: metrics}
}

// search treats backend errors as an empty answer so the caller can move on
// to the next term.
func (d *Discovery) search(ctx context.Context, term string, filters SearchFilters) []models.Candidate {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	res, err := d.client.SearchProducts(ctx, term, filters)
	if err != nil {
		d.logger.Warn("catalog search failed",
			zap.String("provider", d.client.Provider()),
			zap.String("term", term),
			zap.Error(err))
		return nil
	}
	return res.Results
}

// FindProducts returns up to three ranked products for productKey and the
// term that produced them. An empty slice means every search came back
// empty or failed.
func (d *Discovery) FindProducts(ctx context.Context, productKey string, user *models.UserProfile, attrs models.AdAttributes) ([]models.ProductResult, string) {
	query := ranking.BuildQuery(productKey, user)
	maxPrice := ranking.PriceCeiling(attrs.PriceSensitivity)
	zip := user.ZIP()

	candidates := d.search(ctx, query, SearchFilters{MaxPrice: maxPrice, Limit: primaryLimit, ZIP: zip})
	if len(candidates) == 0 {
		relaxed := SearchFilters{MaxPrice: maxPrice * relaxedFactor, Limit: relaxedLimit, ZIP: zip}
		terms := append([]string{query, productKey}, fallbackTerms...)
		outcome := "exhausted"
		for _, term := range terms {
			if ctx.Err() != nil {
				outcome = "canceled"
				break
			}
			candidates = d.search(ctx, term, relaxed)
			if len(candidates) > 0 {
				query = term
				outcome = "recovered"
				break
			}
		}
		d.metrics.IncrementFallbackSearches(outcome)
		if outcome != "recovered" {
			d.logger.Warn("catalog discovery found no products",
				zap.String("product_key", productKey),
				zap.String("outcome", outcome))
		}
	}

	ranked := ranking.Rank(candidates, attrs.PriceSensitivity, ranking.BrandBias(user))
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	out := make([]models.ProductResult, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, productResult(c, query))
	}
	return out, query
}

func productResult(c models.Candidate, query string) models.ProductResult {
	image := c.ImageURL
	if image == "" {
		image = GenericImageURL
	}
	return models.ProductResult{
		ProductID:   c.ID,
		Name:        c.Name,
		Price:       c.PriceOr(0),
		Size:        orDefault(c.Size, "each"),
		Unit:        orDefault(c.Unit, "each"),
		InStock:     c.Available(),
		ImageURL:    image,
		SearchQuery: query,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
