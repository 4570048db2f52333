// Package catalog provides grocery catalog backends and the product
// discovery flow that feeds ad recommendations.
package catalog

import (
	"context"
	"errors"

	"github.com/patrickwarner/seamlessads/internal/models"
)

var (
	// ErrNotFound is returned by GetProduct for unknown product ids.
	ErrNotFound = models.ErrNotFound
	// ErrCatalogUnavailable wraps transport, auth and decoding failures.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrRateLimited is returned when the local rate limiter rejects a call.
	ErrRateLimited = errors.New("catalog rate limited")
	// ErrMissingCredentials is returned when a networked backend lacks credentials.
	ErrMissingCredentials = errors.New("catalog credentials required")
)

// GenericImageURL is the placeholder image used when a product has none.
const GenericImageURL = "https://images.kroger.com/product/generic-item.jpg"

// SearchFilters narrows a product search. A non-positive MaxPrice means no
// price limit; a non-positive Limit lets the backend choose.
type SearchFilters struct {
	MaxPrice float64 `json:"max_price,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	ZIP      string  `json:"zip,omitempty"`
}

// SearchResult is the outcome of a product search. An empty Results slice
// is a valid answer, not an error.
type SearchResult struct {
	Results  []models.Candidate `json:"results"`
	Total    int                `json:"total"`
	Query    string             `json:"query"`
	Provider string             `json:"provider"`
}

// CartLine is a product and quantity sent to a backend cart.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartReceipt acknowledges an add-to-cart call.
type CartReceipt struct {
	CartID     *string `json:"cart_id"`
	ItemsAdded int     `json:"items_added"`
	Success    bool    `json:"success"`
	Provider   string  `json:"provider"`
	Message    string  `json:"message,omitempty"`
}

// RemoteCart is a backend-side cart view.
type RemoteCart struct {
	CartID   string     `json:"cart_id"`
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Provider string     `json:"provider"`
	Message  string     `json:"message,omitempty"`
}

// DeliveryWindow is a fulfillment slot.
type DeliveryWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DeliveryOptions lists fulfillment windows near a ZIP code.
type DeliveryOptions struct {
	ZIP      string           `json:"zip"`
	Windows  []DeliveryWindow `json:"windows"`
	Provider string           `json:"provider"`
}

// Client is the contract every grocery catalog backend fulfills. The
// backend is chosen at construction and injected into its consumers.
type Client interface {
	Provider() string
	SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error)
	GetProduct(ctx context.Context, productID string) (models.Candidate, error)
	AddToCart(ctx context.Context, items []CartLine) (CartReceipt, error)
	GetCart(ctx context.Context, cartID string) (RemoteCart, error)
	GetDeliveryOptions(ctx context.Context, zip string) (DeliveryOptions, error)
}
