package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// JSONCache stores JSON documents with a TTL. db.RedisStore implements it.
type JSONCache interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// CachedClient caches search results. Other calls go straight through.
// Cache failures are logged and never fail the search.
type CachedClient struct {
	next   Client
	cache  JSONCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClient wraps next with a search cache.
func NewCachedClient(next Client, cache JSONCache, ttl time.Duration, logger *zap.Logger) *CachedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

func searchCacheKey(provider, query string, f SearchFilters) string {
	return fmt.Sprintf("catalog:search:%s:%s:%.2f:%d:%s",
		provider, strings.ToLower(strings.TrimSpace(query)), f.MaxPrice, f.Limit, f.ZIP)
}

// Provider reports the wrapped backend's provider name.
func (c *CachedClient) Provider() string { return c.next.Provider() }

// SearchProducts serves a cached answer when one exists and caches
// non-empty answers from the backend. Cache errors fall through to the
// backend.
func (c *CachedClient) SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error) {
	key := searchCacheKey(c.next.Provider(), query, filters)

	var cached SearchResult
	err := c.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, models.ErrNotFound):
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err := c.next.SearchProducts(ctx, query, filters)
	if err != nil {
		return SearchResult{}, err
	}
	// empty answers are not cached so a recovering backend is retried
	if len(res.Results) > 0 {
		if err := c.cache.SetJSON(ctx, key, res, c.ttl); err != nil {
			c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return res, nil
}

// GetProduct is not cached.
func (c *CachedClient) GetProduct(ctx context.Context, productID string) (models.Candidate, error) {
	return c.next.GetProduct(ctx, productID)
}

// AddToCart passes through to the backend.
func (c *CachedClient) AddToCart(ctx context.Context, items []CartLine) (CartReceipt, error) {
	return c.next.AddToCart(ctx, items)
}

// GetCart passes through to the backend.
func (c *CachedClient) GetCart(ctx context.Context, cartID string) (RemoteCart, error) {
	return c.next.GetCart(ctx, cartID)
}

// GetDeliveryOptions passes through to the backend.
func (c *CachedClient) GetDeliveryOptions(ctx context.Context, zip string) (DeliveryOptions, error) {
	return c.next.GetDeliveryOptions(ctx, zip)
}
