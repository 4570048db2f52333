// Package mcptools registers the shopping and recommendation tools served
// over the Model Context Protocol.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/ads"
	"github.com/patrickwarner/seamlessads/internal/cart"
	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/middleware"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
	"github.com/patrickwarner/seamlessads/internal/personas"
	"github.com/patrickwarner/seamlessads/internal/retail"
	"github.com/patrickwarner/seamlessads/internal/websearch"
)

// Tool names.
const (
	ToolWebSearch       = "web_search"
	ToolSearchProducts  = "search_products"
	ToolAddToCart       = "add_to_cart"
	ToolViewCart        = "view_cart"
	ToolMockCheckout    = "mock_checkout"
	ToolClearCart       = "clear_cart"
	ToolDiscoverProduct = "discover_product"
	ToolRecommendAd     = "recommend_ad"
	ToolListPersonas    = "list_personas"
)

// discover_product bounds.
const (
	DefaultDiscoverResults = 5
	MaxDiscoverResults     = 20
)

// WebSearcher finds retailer pages for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int, region string) []websearch.Result
}

// Tools holds the dependencies of every tool handler.
type Tools struct {
	Web     WebSearcher
	Retail  *retail.Catalog
	Carts   *cart.Service
	Catalog catalog.Client
	Ads     *ads.Service
	Metrics observability.MetricsRegistry
	Logger  *zap.Logger
}

// New returns Tools over the given dependencies.
func New(web WebSearcher, shop *retail.Catalog, carts *cart.Service, client catalog.Client, svc *ads.Service, metrics observability.MetricsRegistry, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Tools{
		Web:     web,
		Retail:  shop,
		Carts:   carts,
		Catalog: client,
		Ads:     svc,
		Metrics: metrics,
		Logger:  logger,
	}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolWebSearch,
		Description: "Search the web for retailers and shopping sites. Returns a list of relevant URLs with titles and descriptions.",
	}, instrument(t, ToolWebSearch, t.WebSearch))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchProducts,
		Description: "Search for products on a specific retailer website. Returns product details including prices, availability, and URLs.",
	}, instrument(t, ToolSearchProducts, t.SearchProducts))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAddToCart,
		Description: "Add a product to the shopping cart. Use the product_id from search_products results.",
	}, instrument(t, ToolAddToCart, t.AddToCart))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolViewCart,
		Description: "View the current shopping cart contents, including all items and totals.",
	}, instrument(t, ToolViewCart, t.ViewCart))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolMockCheckout,
		Description: "Perform a mock checkout. This simulates placing an order without real payment processing.",
	}, instrument(t, ToolMockCheckout, t.MockCheckout))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolClearCart,
		Description: "Remove every item from a shopping cart while keeping the cart id.",
	}, instrument(t, ToolClearCart, t.ClearCart))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolDiscoverProduct,
		Description: "Discover grocery products by name using the Kroger API. Returns product details including price, image, and size.",
	}, instrument(t, ToolDiscoverProduct, t.DiscoverProduct))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolRecommendAd,
		Description: "Recommend a shoppable ad overlay for a video scene and viewer profile or persona key.",
	}, instrument(t, ToolRecommendAd, t.RecommendAd))
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListPersonas,
		Description: "List the persona keys accepted by recommend_ad.",
	}, instrument(t, ToolListPersonas, t.ListPersonas))
}

// instrument attaches a per-call logger to ctx and records the call outcome.
func instrument[In, Out any](t *Tools, name string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		ctx = middleware.ContextWithLogger(ctx, t.Logger.With(zap.String("tool", name)), "")
		logger := middleware.LoggerFromContext(ctx, t.Logger)
		start := time.Now()

		res, out, err := h(ctx, req, in)

		outcome := "ok"
		if err != nil {
			outcome = "error"
			logger.Warn("tool call failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		} else {
			logger.Debug("tool call", zap.Duration("elapsed", time.Since(start)))
		}
		t.Metrics.IncrementToolCalls(name, outcome)
		return res, out, err
	}
}

// WebSearchInput are the web_search arguments.
type WebSearchInput struct {
	Query      string `json:"query" jsonschema:"search query, e.g. buy wireless headphones online"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results, default 10"`
	Region     string `json:"region,omitempty" jsonschema:"optional region code such as us-en"`
}

// WebSearchOutput lists search hits.
type WebSearchOutput struct {
	Results []websearch.Result `json:"results"`
}

// WebSearch finds retailer pages for a query.
func (t *Tools) WebSearch(ctx context.Context, _ *mcp.CallToolRequest, in WebSearchInput) (*mcp.CallToolResult, WebSearchOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, WebSearchOutput{}, errors.New("query is required")
	}
	results := t.Web.Search(ctx, in.Query, in.MaxResults, in.Region)
	if results == nil {
		results = []websearch.Result{}
	}
	return nil, WebSearchOutput{Results: results}, nil
}

// SearchProductsInput are the search_products arguments.
type SearchProductsInput struct {
	RetailerURL string  `json:"retailer_url" jsonschema:"retailer website URL, e.g. https://www.amazon.com"`
	Query       string  `json:"query" jsonschema:"product search query"`
	MaxPrice    float64 `json:"max_price,omitempty" jsonschema:"optional maximum price in USD"`
}

// SearchProductsOutput lists retailer products.
type SearchProductsOutput struct {
	Products []models.RetailProduct `json:"products"`
}

// SearchProducts lists demo products for a retailer and query.
func (t *Tools) SearchProducts(ctx context.Context, _ *mcp.CallToolRequest, in SearchProductsInput) (*mcp.CallToolResult, SearchProductsOutput, error) {
	if strings.TrimSpace(in.RetailerURL) == "" || strings.TrimSpace(in.Query) == "" {
		return nil, SearchProductsOutput{}, errors.New("retailer_url and query are required")
	}
	return nil, SearchProductsOutput{Products: t.Retail.Search(in.RetailerURL, in.Query, in.MaxPrice)}, nil
}

// AddToCartInput are the add_to_cart arguments.
type AddToCartInput struct {
	CartID    string `json:"cart_id,omitempty" jsonschema:"cart to add to; omit to open a new cart"`
	ProductID string `json:"product_id" jsonschema:"product_id from search_products results"`
	Quantity  *int   `json:"quantity,omitempty" jsonschema:"number of items to add, default 1"`
}

// AddToCart adds a product to a cart.
func (t *Tools) AddToCart(ctx context.Context, _ *mcp.CallToolRequest, in AddToCartInput) (*mcp.CallToolResult, cart.Result, error) {
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	res, err := t.Carts.Add(ctx, in.CartID, in.ProductID, qty)
	if err != nil {
		return nil, cart.Result{}, fmt.Errorf("add to cart: %w", err)
	}
	return nil, res, nil
}

// CartInput identifies a cart.
type CartInput struct {
	CartID string `json:"cart_id" jsonschema:"cart id returned by add_to_cart"`
}

// CartView is the full cart with RFC 3339 timestamps.
type CartView struct {
	ID        string            `json:"id"`
	Items     []models.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

func newCartView(c models.Cart) CartView {
	items := c.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return CartView{
		ID:        c.ID,
		Items:     items,
		Total:     c.Total,
		ItemCount: c.ItemCount,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// ViewCart returns the full cart.
func (t *Tools) ViewCart(ctx context.Context, _ *mcp.CallToolRequest, in CartInput) (*mcp.CallToolResult, CartView, error) {
	c, err := t.Carts.View(ctx, in.CartID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, CartView{}, fmt.Errorf("cart %s not found", in.CartID)
	}
	if err != nil {
		return nil, CartView{}, fmt.Errorf("view cart: %w", err)
	}
	return nil, newCartView(c), nil
}

// MockCheckout places a mock order for the cart.
func (t *Tools) MockCheckout(ctx context.Context, _ *mcp.CallToolRequest, in CartInput) (*mcp.CallToolResult, models.Order, error) {
	order, err := t.Carts.Checkout(ctx, in.CartID)
	if err != nil {
		return nil, models.Order{}, fmt.Errorf("checkout: %w", err)
	}
	return nil, order, nil
}

// ClearCart empties the cart.
func (t *Tools) ClearCart(ctx context.Context, _ *mcp.CallToolRequest, in CartInput) (*mcp.CallToolResult, cart.Result, error) {
	res, err := t.Carts.Clear(ctx, in.CartID)
	if err != nil {
		return nil, cart.Result{}, fmt.Errorf("clear cart: %w", err)
	}
	return nil, res, nil
}

// ListPersonasInput takes no arguments.
type ListPersonasInput struct{}

// ListPersonasOutput lists persona keys.
type ListPersonasOutput struct {
	Personas []string `json:"personas"`
}

// ListPersonas returns the registered persona keys.
func (t *Tools) ListPersonas(context.Context, *mcp.CallToolRequest, ListPersonasInput) (*mcp.CallToolResult, ListPersonasOutput, error) {
	return nil, ListPersonasOutput{Personas: personas.Keys()}, nil
}
