// Package app wires configuration into the services shared by the HTTP
// server, the MCP server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/ads"
	"github.com/patrickwarner/seamlessads/internal/analytics"
	"github.com/patrickwarner/seamlessads/internal/cart"
	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/logic/ratelimit"
	"github.com/patrickwarner/seamlessads/internal/observability"
	"github.com/patrickwarner/seamlessads/internal/retail"
	"github.com/patrickwarner/seamlessads/internal/websearch"
)

// App holds every long-lived dependency. Optional connections are nil when
// the configuration does not need them.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Metrics   observability.MetricsRegistry
	Redis     *db.RedisStore
	Postgres  *db.Postgres
	Warehouse *analytics.Analytics
	Limiter   *ratelimit.ProviderLimiter
	Catalog   catalog.Client
	Ads       *ads.Service
	Retail    *retail.Catalog
	Carts     *cart.Service
	Web       *websearch.Client
}

func needsRedis(cfg config.Config) bool {
	return cfg.CartBackend == config.CartRedis || cfg.CatalogCacheTTL > 0
}

// Open connects the configured backends and builds the services. On error
// every connection opened so far is closed.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger, metrics observability.MetricsRegistry) (a *App, err error) {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	a = &App{Config: cfg, Logger: logger, Metrics: metrics}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if needsRedis(cfg) {
		if a.Redis, err = db.InitRedis(ctx, cfg.RedisAddr); err != nil {
			return a, fmt.Errorf("connect redis: %w", err)
		}
	}
	if cfg.CatalogBackend == config.CatalogPostgres {
		a.Postgres, err = db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			return a, fmt.Errorf("connect postgres: %w", err)
		}
	}
	if cfg.AnalyticsEnabled {
		a.Warehouse, err = analytics.InitClickHouse(cfg.ClickHouseDSN, metrics, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime)
		if err != nil {
			return a, fmt.Errorf("connect clickhouse: %w", err)
		}
	}

	a.Limiter = ratelimit.NewProviderLimiter(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}, metrics)

	deps := catalog.Deps{Limiter: a.Limiter, Metrics: metrics, Logger: logger}
	if a.Postgres != nil {
		deps.Products = a.Postgres
	}
	if a.Redis != nil {
		deps.Cache = a.Redis
	}
	if a.Catalog, err = catalog.New(cfg, deps); err != nil {
		return a, fmt.Errorf("catalog: %w", err)
	}

	var sink analytics.Sink
	if a.Warehouse != nil {
		sink = a.Warehouse
	}
	a.Ads = ads.NewService(a.Catalog, cfg.CatalogTimeout, sink, metrics, logger)

	var store cart.Store
	switch cfg.CartBackend {
	case "", config.CartMemory:
		store = cart.NewMemoryStore()
	case config.CartRedis:
		store = cart.NewRedisStore(a.Redis, cfg.CartTTL)
	default:
		return a, fmt.Errorf("unknown cart backend %q", cfg.CartBackend)
	}
	a.Retail = retail.NewCatalog(logger)
	a.Carts = cart.NewService(store, a.Retail, logger, metrics)
	a.Web = websearch.NewClient("", cfg.CatalogTimeout, logger)

	logger.Info("services ready",
		zap.String("catalog", a.Catalog.Provider()),
		zap.String("cart_backend", cfg.CartBackend),
		zap.Bool("analytics", a.Warehouse != nil))
	return a, nil
}

// Close releases every open connection.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Warehouse != nil {
		a.Warehouse.Close()
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}
