package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

// Deps carries the shared infrastructure a catalog backend may need. Nil
// fields disable the corresponding decorator.
type Deps struct {
	Products ProductStore
	Cache    JSONCache
	Limiter  Limiter
	Metrics  observability.MetricsRegistry
	Logger   *zap.Logger
}

// New builds the configured catalog backend and wraps it with a per-call
// deadline, the circuit breaker, rate limiter and search cache. The mock
// backend is never wrapped by the deadline or the breaker.
func New(cfg config.Config, deps Deps) (Client, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewNoOpRegistry()
	}

	var client Client
	switch cfg.CatalogBackend {
	case "", config.CatalogMock:
		client = NewMockClient()
	case config.CatalogKroger:
		kc, err := NewKrogerClient(KrogerConfig{
			ClientID:     cfg.KrogerClientID,
			ClientSecret: cfg.KrogerSecret,
			AccessToken:  cfg.KrogerAccessToken,
			LocationID:   cfg.KrogerLocationID,
			BaseURL:      cfg.KrogerBaseURL(),
			Timeout:      cfg.CatalogTimeout,
		}, deps.Logger)
		if err != nil {
			return nil, err
		}
		client = kc
	case config.CatalogPostgres:
		if deps.Products == nil {
			return nil, fmt.Errorf("catalog backend %q requires a postgres connection", cfg.CatalogBackend)
		}
		client = NewPostgresClient(deps.Products)
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}

	if client.Provider() != MockProvider {
		client = NewTimeoutClient(client, cfg.CatalogTimeout)
		client = NewBreakerClient(client, BreakerConfig{
			FailureThreshold: cfg.BreakerFailureThreshold,
			Timeout:          cfg.BreakerTimeout,
			MaxRequests:      cfg.BreakerMaxRequests,
			Interval:         cfg.BreakerInterval,
		}, deps.Metrics, deps.Logger)
	}
	client = NewRateLimitedClient(client, deps.Limiter, deps.Metrics)
	if deps.Cache != nil && cfg.CatalogCacheTTL > 0 {
		client = NewCachedClient(client, deps.Cache, cfg.CatalogCacheTTL, deps.Logger)
	}

	deps.Logger.Info("catalog backend ready",
		zap.String("backend", cfg.CatalogBackend),
		zap.String("provider", client.Provider()))
	return client, nil
}
