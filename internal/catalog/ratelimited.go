package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

// Limiter decides whether a call to a provider may proceed.
type Limiter interface {
	Allow(provider string) bool
}

// RateLimitedClient gates every backend call through a per-provider token
// bucket and records search outcomes and latency.
type RateLimitedClient struct {
	next    Client
	limiter Limiter
	metrics observability.MetricsRegistry
}

// NewRateLimitedClient wraps next with limiter.
func NewRateLimitedClient(next Client, limiter Limiter, metrics observability.MetricsRegistry) *RateLimitedClient {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &RateLimitedClient{next: next, limiter: limiter, metrics: metrics}
}

// Provider reports the wrapped backend's provider name.
func (r *RateLimitedClient) Provider() string { return r.next.Provider() }

func (r *RateLimitedClient) allow() error {
	if r.limiter != nil && !r.limiter.Allow(r.next.Provider()) {
		return fmt.Errorf("%w: provider %s", ErrRateLimited, r.next.Provider())
	}
	return nil
}

// SearchProducts takes a token, then records the outcome and latency of
// the backend search.
func (r *RateLimitedClient) SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error) {
	provider := r.next.Provider()
	if err := r.allow(); err != nil {
		r.metrics.IncrementCatalogSearches(provider, "rate_limited")
		return SearchResult{}, err
	}
	start := time.Now()
	res, err := r.next.SearchProducts(ctx, query, filters)
	r.metrics.RecordCatalogLatency(provider, time.Since(start))
	switch {
	case err != nil:
		r.metrics.IncrementCatalogSearches(provider, "error")
	case len(res.Results) == 0:
		r.metrics.IncrementCatalogSearches(provider, "empty")
	default:
		r.metrics.IncrementCatalogSearches(provider, "ok")
	}
	return res, err
}

// GetProduct takes a token before the lookup.
func (r *RateLimitedClient) GetProduct(ctx context.Context, productID string) (models.Candidate, error) {
	if err := r.allow(); err != nil {
		return models.Candidate{}, err
	}
	return r.next.GetProduct(ctx, productID)
}

// AddToCart takes a token before the cart call.
func (r *RateLimitedClient) AddToCart(ctx context.Context, items []CartLine) (CartReceipt, error) {
	if err := r.allow(); err != nil {
		return CartReceipt{}, err
	}
	return r.next.AddToCart(ctx, items)
}

// GetCart takes a token before the cart lookup.
func (r *RateLimitedClient) GetCart(ctx context.Context, cartID string) (RemoteCart, error) {
	if err := r.allow(); err != nil {
		return RemoteCart{}, err
	}
	return r.next.GetCart(ctx, cartID)
}

// GetDeliveryOptions takes a token before the delivery lookup.
func (r *RateLimitedClient) GetDeliveryOptions(ctx context.Context, zip string) (DeliveryOptions, error) {
	if err := r.allow(); err != nil {
		return DeliveryOptions{}, err
	}
	return r.next.GetDeliveryOptions(ctx, zip)
}
