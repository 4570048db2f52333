package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

// BreakerConfig configures the circuit breaker around a catalog backend.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
	MaxRequests      uint32
	Interval         time.Duration
}

// BreakerClient trips after consecutive backend failures and then fails
// fast with ErrCatalogUnavailable until the open timeout elapses. NotFound
// answers count as successes.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerClient wraps next with a circuit breaker.
func NewBreakerClient(next Client, cfg BreakerConfig, metrics observability.MetricsRegistry, logger *zap.Logger) *BreakerClient {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "catalog_" + next.Provider(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.IncrementBreakerTransitions(name, to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerClient{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State reports the current breaker state.
func (b *BreakerClient) State() string { return b.cb.State().String() }

// Provider reports the wrapped backend's provider name.
func (b *BreakerClient) Provider() string { return b.next.Provider() }

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return err
}

// SearchProducts runs the search through the breaker. An open breaker
// returns ErrCatalogUnavailable without calling the backend.
func (b *BreakerClient) SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.SearchProducts(ctx, query, filters)
	})
	if err != nil {
		return SearchResult{}, breakerErr(err)
	}
	return res.(SearchResult), nil
}

// GetProduct runs the lookup through the breaker.
func (b *BreakerClient) GetProduct(ctx context.Context, productID string) (models.Candidate, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.GetProduct(ctx, productID)
	})
	if err != nil {
		return models.Candidate{}, breakerErr(err)
	}
	return res.(models.Candidate), nil
}

// AddToCart runs the cart call through the breaker.
func (b *BreakerClient) AddToCart(ctx context.Context, items []CartLine) (CartReceipt, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.AddToCart(ctx, items)
	})
	if err != nil {
		return CartReceipt{}, breakerErr(err)
	}
	return res.(CartReceipt), nil
}

// GetCart runs the cart lookup through the breaker.
func (b *BreakerClient) GetCart(ctx context.Context, cartID string) (RemoteCart, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.GetCart(ctx, cartID)
	})
	if err != nil {
		return RemoteCart{}, breakerErr(err)
	}
	return res.(RemoteCart), nil
}

// GetDeliveryOptions runs the delivery lookup through the breaker.
func (b *BreakerClient) GetDeliveryOptions(ctx context.Context, zip string) (DeliveryOptions, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.GetDeliveryOptions(ctx, zip)
	})
	if err != nil {
		return DeliveryOptions{}, breakerErr(err)
	}
	return res.(DeliveryOptions), nil
}
