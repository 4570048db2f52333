package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/middleware"
)

// DiscoverProductInput are the discover_product arguments.
type DiscoverProductInput struct {
	Query      string `json:"query" jsonschema:"product search term, e.g. organic milk"`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"maximum number of products, default 5, bounded to 1 through 20"`
}

// DiscoveredProduct is one grocery product.
type DiscoveredProduct struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	SoldBy    string  `json:"sold_by"`
	Size      string  `json:"size"`
	ImageURL  string  `json:"image_url"`
}

// DiscoverProductOutput lists discovered products.
type DiscoverProductOutput struct {
	Products []DiscoveredProduct `json:"products"`
	Provider string              `json:"provider"`
}

// mockVariant is a placeholder product offered when the catalog fails.
type mockVariant struct {
	suffix string
	price  float64
}

var mockVariants = []mockVariant{
	{"Organic", 5.99},
	{"Store Brand", 3.49},
	{"Premium", 8.99},
	{"Family Size", 7.49},
	{"Single Serve", 2.99},
}

// MockProvider labels discover_product results built from mockVariants.
const MockProvider = "mock_variants"

// clampResults bounds max_results to [1, MaxDiscoverResults]. An absent
// value means DefaultDiscoverResults.
func clampResults(n *int) int {
	if n == nil {
		return DefaultDiscoverResults
	}
	return min(max(*n, 1), MaxDiscoverResults)
}

// DiscoverProduct searches the injected catalog for grocery products and
// falls back to mock variants when the catalog fails.
func (t *Tools) DiscoverProduct(ctx context.Context, _ *mcp.CallToolRequest, in DiscoverProductInput) (*mcp.CallToolResult, DiscoverProductOutput, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, DiscoverProductOutput{}, errors.New("query is required")
	}
	limit := clampResults(in.MaxResults)
	logger := middleware.LoggerFromContext(ctx, t.Logger)

	res, err := t.Catalog.SearchProducts(ctx, query, catalog.SearchFilters{Limit: limit})
	if err != nil {
		if ctx.Err() != nil {
			return nil, DiscoverProductOutput{}, ctx.Err()
		}
		logger.Warn("catalog search failed, using mock variants", zap.String("query", query), zap.Error(err))
		return nil, DiscoverProductOutput{Products: MockProducts(query, limit), Provider: MockProvider}, nil
	}

	out := DiscoverProductOutput{Products: make([]DiscoveredProduct, 0, limit), Provider: res.Provider}
	for _, c := range res.Results {
		if len(out.Products) == limit {
			break
		}
		soldBy := c.Unit
		if soldBy == "" {
			soldBy = "each"
		}
		size := c.Size
		if size == "" {
			size = "N/A"
		}
		out.Products = append(out.Products, DiscoveredProduct{
			ProductID: c.ID,
			Name:      c.Name,
			Price:     c.PriceOr(0),
			SoldBy:    soldBy,
			Size:      size,
			ImageURL:  c.ImageURL,
		})
	}
	return nil, out, nil
}

// MockProducts returns up to limit placeholder products for query.
func MockProducts(query string, limit int) []DiscoveredProduct {
	slug := []rune(strings.ReplaceAll(query, " ", "_"))
	if len(slug) > 12 {
		slug = slug[:12]
	}
	title := catalog.TitleCase(query)

	out := make([]DiscoveredProduct, 0, min(limit, len(mockVariants)))
	for i, v := range mockVariants {
		if i == limit {
			break
		}
		out = append(out, DiscoveredProduct{
			ProductID: fmt.Sprintf("mock_%s_%d", string(slug), i+1),
			Name:      title + " - " + v.suffix,
			Price:     v.price,
			SoldBy:    "each",
			Size:      "1 unit",
			ImageURL:  catalog.GenericImageURL,
		})
	}
	return out
}
