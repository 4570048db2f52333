package catalog

import (
	"context"
	"time"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// DefaultCallTimeout bounds a single catalog call when no timeout is
// configured.
const DefaultCallTimeout = 30 * time.Second

// TimeoutClient gives every call to the wrapped backend its own deadline.
// A deadline already on the caller's context still applies when it is
// sooner.
type TimeoutClient struct {
	next    Client
	timeout time.Duration
}

// NewTimeoutClient wraps next. A non-positive timeout selects
// DefaultCallTimeout.
func NewTimeoutClient(next Client, timeout time.Duration) *TimeoutClient {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &TimeoutClient{next: next, timeout: timeout}
}

// Provider reports the wrapped backend's provider name.
func (t *TimeoutClient) Provider() string { return t.next.Provider() }

// SearchProducts bounds the search by the configured timeout.
func (t *TimeoutClient) SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.SearchProducts(ctx, query, filters)
}

// GetProduct bounds the lookup by the configured timeout.
func (t *TimeoutClient) GetProduct(ctx context.Context, productID string) (models.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.GetProduct(ctx, productID)
}

// AddToCart bounds the cart call by the configured timeout.
func (t *TimeoutClient) AddToCart(ctx context.Context, items []CartLine) (CartReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.AddToCart(ctx, items)
}

// GetCart bounds the cart lookup by the configured timeout.
func (t *TimeoutClient) GetCart(ctx context.Context, cartID string) (RemoteCart, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.GetCart(ctx, cartID)
}

// GetDeliveryOptions bounds the delivery lookup by the configured timeout.
func (t *TimeoutClient) GetDeliveryOptions(ctx context.Context, zip string) (DeliveryOptions, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.GetDeliveryOptions(ctx, zip)
}
