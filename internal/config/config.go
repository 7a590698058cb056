// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	History  HistoryConfig
	Family   FamilyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 15s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 10s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"10s"`

	// MetricsEnabled exposes Prometheus metrics on /metrics (default: true)
	MetricsEnabled bool `env:"METRICS_ENABLED" default:"true"`
}

// DatabaseConfig holds database connection settings. Without a URL the
// calculation history is kept in memory.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// CacheConfig holds reading cache settings. Without a Redis URL readings are
// cached in process.
type CacheConfig struct {
	// RedisURL is the Redis connection string, e.g. redis://localhost:6379/0 (optional)
	RedisURL string `env:"REDIS_URL"`

	// TTL is how long a cached reading lives (default: 24h, 0 keeps forever)
	TTL time.Duration `env:"CACHE_TTL" default:"24h"`

	// MemoryEntries bounds the in-process cache (default: 10000)
	MemoryEntries int `env:"CACHE_MEMORY_ENTRIES" default:"10000"`

	// PoolSize is the Redis connection pool size (default: 10)
	PoolSize int `env:"REDIS_POOL_SIZE" default:"10"`

	// DialTimeout bounds connecting to Redis (default: 5s)
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// CalculateLimit is requests per minute for calculation endpoints (default: 30)
	CalculateLimit int `env:"RATE_LIMIT_CALCULATE" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// APIKeys is a comma-separated list of keys accepted on history endpoints
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey protects the history endpoints (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// HistoryConfig holds calculation history retention settings.
type HistoryConfig struct {
	// Enabled records every calculation (default: true)
	Enabled bool `env:"HISTORY_ENABLED" default:"true"`

	// RetentionDays is days to keep history entries (default: 90)
	RetentionDays int `env:"HISTORY_RETENTION_DAYS" default:"90"`

	// CheckInterval is how often to run the retention job (default: 24h)
	CheckInterval time.Duration `env:"HISTORY_CHECK_INTERVAL" default:"24h"`

	// MemoryEntries bounds the in-process history used without a database;
	// the oldest entries are dropped first (default: 10000)
	MemoryEntries int `env:"HISTORY_MEMORY_ENTRIES" default:"10000"`
}

// FamilyConfig holds family tree settings. Trees live in PostgreSQL when a
// database is configured, else in memory.
type FamilyConfig struct {
	// Enabled exposes the family tree API (default: true)
	Enabled bool `env:"FAMILY_ENABLED" default:"true"`

	// MaxMembers bounds the members of one tree (default: 100)
	MaxMembers int `env:"FAMILY_MAX_MEMBERS" default:"100"`

	// MemoryTrees bounds the in-process store; the least recently changed
	// tree is dropped first (default: 1000)
	MemoryTrees int `env:"FAMILY_MEMORY_TREES" default:"1000"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
