package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "")
	t.Setenv("CART_BACKEND", "")
	cfg := Load()

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, CatalogMock, cfg.CatalogBackend)
	assert.Equal(t, CartMemory, cfg.CartBackend)
	assert.Equal(t, 30*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, time.Duration(0), cfg.CatalogCacheTTL)
	assert.Equal(t, uint32(5), cfg.BreakerFailureThreshold)
	assert.False(t, cfg.AnalyticsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "Kroger")
	t.Setenv("KROGER_ENV", " CE ")
	t.Setenv("KROGER_CLIENT_ID", " id ")
	t.Setenv("CATALOG_TIMEOUT", "3")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("CART_BACKEND", "redis")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")
	cfg := Load()

	assert.Equal(t, CatalogKroger, cfg.CatalogBackend)
	assert.Equal(t, "id", cfg.KrogerClientID)
	assert.Equal(t, "https://api-ce.kroger.com/v1", cfg.KrogerBaseURL())
	assert.Equal(t, 3*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 90*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, CartRedis, cfg.CartBackend)
	assert.InDelta(t, 0.25, cfg.TracingSampleRate, 1e-9)
}

func TestEnvHelpersInvalidFallBack(t *testing.T) {
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_INT", "ten")
	t.Setenv("X_FLOAT", "half")

	assert.Equal(t, time.Minute, envDuration("X_DUR", time.Minute))
	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, 0.5, envFloat("X_FLOAT", 0.5))
}

func TestKrogerBaseURLProduction(t *testing.T) {
	assert.Equal(t, "https://api.kroger.com/v1", Config{KrogerEnv: "production"}.KrogerBaseURL())
}
