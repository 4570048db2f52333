package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/catalog"
	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
	"github.com/patrickwarner/seamlessads/internal/personas"
)

func baseConfig() config.Config {
	return config.Config{
		CatalogBackend:      config.CatalogMock,
		CartBackend:         config.CartMemory,
		RateLimitCapacity:   10,
		RateLimitRefillRate: 1,
	}
}

func TestOpenInMemory(t *testing.T) {
	a, err := Open(context.Background(), baseConfig(), zap.NewNop(), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.Postgres)
	assert.Nil(t, a.Warehouse)
	assert.Equal(t, catalog.MockProvider, a.Catalog.Provider())

	user, err := personas.Get("A")
	require.NoError(t, err)
	_, err = a.Ads.GenerateAdResponse(context.Background(), user, personasScene())
	require.NoError(t, err)
}

func TestOpenWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisAddr = mr.Addr()
	cfg.CartBackend = config.CartRedis
	cfg.CatalogCacheTTL = time.Minute

	metrics := observability.NewMockMetricsRegistry()
	a, err := Open(context.Background(), cfg, zap.NewNop(), metrics)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Redis)

	res, err := a.Carts.Add(context.Background(), "", "p1", 1)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, mr.Exists("cart:"+res.Cart.ID))

	_, err = a.Catalog.SearchProducts(context.Background(), "frozen pizza", catalog.SearchFilters{Limit: 3})
	require.NoError(t, err)
	cached := false
	for _, k := range mr.Keys() {
		cached = cached || strings.HasPrefix(k, "catalog:search:")
	}
	assert.True(t, cached)
}

func TestOpenRejectsUnknownBackends(t *testing.T) {
	cfg := baseConfig()
	cfg.CatalogBackend = "nope"
	_, err := Open(context.Background(), cfg, zap.NewNop(), nil)
	assert.ErrorContains(t, err, "unknown catalog backend")

	cfg = baseConfig()
	cfg.CartBackend = "nope"
	_, err = Open(context.Background(), cfg, zap.NewNop(), nil)
	assert.ErrorContains(t, err, "unknown cart backend")
}

func TestOpenRedisUnavailable(t *testing.T) {
	cfg := baseConfig()
	cfg.CartBackend = config.CartRedis
	cfg.RedisAddr = "127.0.0.1:1"
	_, err := Open(context.Background(), cfg, zap.NewNop(), nil)
	assert.ErrorContains(t, err, "connect redis")
}

func personasScene() models.SceneMetadata {
	return models.SceneMetadata{
		SceneID:        "s1",
		TimestampRange: []float64{0, 5},
		SceneTags:      []string{"soda"},
	}
}
