package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog backends selectable with CATALOG_BACKEND.
const (
	CatalogMock     = "mock"
	CatalogKroger   = "kroger"
	CatalogPostgres = "postgres"
)

// Cart backends selectable with CART_BACKEND.
const (
	CartMemory = "memory"
	CartRedis  = "redis"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
	ServiceName  string
	DebugTrace   bool

	RedisAddr     string
	ClickHouseDSN string
	PostgresDSN   string

	// Catalog backend and decorators
	CatalogBackend    string
	CatalogTimeout    time.Duration
	CatalogCacheTTL   time.Duration
	KrogerClientID    string
	KrogerSecret      string
	KrogerAccessToken string
	KrogerLocationID  string
	KrogerEnv         string

	// Token bucket in front of the catalog backend
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int

	// Circuit breaker around networked catalog backends
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration
	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration

	CartBackend string
	CartTTL     time.Duration

	AnalyticsEnabled bool

	// Database connection pooling configuration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	// ClickHouse connection pooling configuration
	CHMaxOpenConns    int
	CHMaxIdleConns    int
	CHConnMaxLifetime time.Duration
	CHConnMaxIdleTime time.Duration
	// Tracing configuration
	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8787")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 30*time.Second)
	cfg.Environment = strings.ToLower(getenv("ENV", "production"))
	cfg.ServiceName = getenv("SERVICE_NAME", "seamlessads")
	cfg.DebugTrace = envBool("DEBUG_TRACE", false)

	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")

	cfg.CatalogBackend = strings.ToLower(getenv("CATALOG_BACKEND", CatalogMock))
	cfg.CatalogTimeout = envDuration("CATALOG_TIMEOUT", 30*time.Second)
	// zero disables the search cache
	cfg.CatalogCacheTTL = envDuration("CATALOG_CACHE_TTL", 0)
	cfg.KrogerClientID = strings.TrimSpace(os.Getenv("KROGER_CLIENT_ID"))
	cfg.KrogerSecret = strings.TrimSpace(os.Getenv("KROGER_CLIENT_SECRET"))
	cfg.KrogerAccessToken = strings.TrimSpace(os.Getenv("KROGER_ACCESS_TOKEN"))
	cfg.KrogerLocationID = strings.TrimSpace(os.Getenv("KROGER_LOCATION_ID"))
	cfg.KrogerEnv = strings.ToLower(strings.TrimSpace(getenv("KROGER_ENV", "production")))

	cfg.RateLimitEnabled = envBool("CATALOG_RATE_LIMIT_ENABLED", false)
	cfg.RateLimitCapacity = envInt("CATALOG_RATE_LIMIT_CAPACITY", 20)
	cfg.RateLimitRefillRate = envInt("CATALOG_RATE_LIMIT_REFILL_RATE", 5)

	cfg.BreakerFailureThreshold = uint32(envInt("BREAKER_FAILURE_THRESHOLD", 5))
	cfg.BreakerTimeout = envDuration("BREAKER_TIMEOUT", 30*time.Second)
	cfg.BreakerMaxRequests = uint32(envInt("BREAKER_MAX_REQUESTS", 1))
	cfg.BreakerInterval = envDuration("BREAKER_INTERVAL", time.Minute)

	cfg.CartBackend = strings.ToLower(getenv("CART_BACKEND", CartMemory))
	cfg.CartTTL = envDuration("CART_TTL", 24*time.Hour)

	cfg.AnalyticsEnabled = envBool("ANALYTICS_ENABLED", false)

	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	cfg.CHMaxOpenConns = envInt("CH_MAX_OPEN_CONNS", 10)
	cfg.CHMaxIdleConns = envInt("CH_MAX_IDLE_CONNS", 5)
	cfg.CHConnMaxLifetime = envDuration("CH_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.CHConnMaxIdleTime = envDuration("CH_CONN_MAX_IDLE_TIME", 1*time.Minute)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TracingEndpoint = getenv("TRACING_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	return cfg
}

// KrogerBaseURL returns the API root for the configured Kroger environment.
func (c Config) KrogerBaseURL() string {
	if c.KrogerEnv == "ce" {
		return "https://api-ce.kroger.com/v1"
	}
	return "https://api.kroger.com/v1"
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
