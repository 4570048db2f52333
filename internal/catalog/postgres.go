package catalog

import (
	"context"
	"fmt"

	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/models"
)

// PostgresProvider names the Postgres-backed catalog.
const PostgresProvider = "postgres"

const postgresDefaultLimit = 10

// ProductStore is the subset of db.Postgres used by PostgresClient.
type ProductStore interface {
	SearchCatalogProducts(ctx context.Context, term string, maxPrice float64, limit int) ([]db.CatalogProduct, error)
	GetCatalogProduct(ctx context.Context, id string) (db.CatalogProduct, error)
}

// PostgresClient serves the catalog from the catalog_products table. Cart
// and delivery calls are acknowledged locally.
type PostgresClient struct {
	store ProductStore
}

// NewPostgresClient wraps a product store.
func NewPostgresClient(store ProductStore) *PostgresClient {
	return &PostgresClient{store: store}
}

// Provider returns PostgresProvider.
func (p *PostgresClient) Provider() string { return PostgresProvider }

// SearchProducts matches the term against catalog_products. Store errors
// are reported as ErrCatalogUnavailable.
func (p *PostgresClient) SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = postgresDefaultLimit
	}
	rows, err := p.store.SearchCatalogProducts(ctx, query, filters.MaxPrice, limit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	results := make([]models.Candidate, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.Candidate())
	}
	return SearchResult{Results: results, Total: len(results), Query: query, Provider: PostgresProvider}, nil
}

// GetProduct loads one row; unknown ids return models.ErrNotFound.
func (p *PostgresClient) GetProduct(ctx context.Context, productID string) (models.Candidate, error) {
	row, err := p.store.GetCatalogProduct(ctx, productID)
	if err != nil {
		return models.Candidate{}, err
	}
	return row.Candidate(), nil
}

// AddToCart acknowledges every line.
func (p *PostgresClient) AddToCart(_ context.Context, items []CartLine) (CartReceipt, error) {
	return CartReceipt{ItemsAdded: len(items), Success: true, Provider: PostgresProvider}, nil
}

// GetCart returns an empty cart.
func (p *PostgresClient) GetCart(_ context.Context, cartID string) (RemoteCart, error) {
	return RemoteCart{CartID: cartID, Items: []CartLine{}, Provider: PostgresProvider}, nil
}

// GetDeliveryOptions returns no windows.
func (p *PostgresClient) GetDeliveryOptions(_ context.Context, zip string) (DeliveryOptions, error) {
	return DeliveryOptions{ZIP: zip, Windows: []DeliveryWindow{}, Provider: PostgresProvider}, nil
}
