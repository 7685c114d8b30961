// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration. Named per-store presets load separately from a
// YAML file (see presets.go).
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Presets PresetConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
	Debug   DebugConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored. Empty means no
	// proxy headers are trusted.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`
}

// StoreConfig holds row-store settings.
type StoreConfig struct {
	// Driver selects the store backend: "xlsx" or "memory" (default: xlsx)
	Driver string `env:"STORE_DRIVER" default:"xlsx"`

	// Dir is the directory holding <storeId>.xlsx workbooks (default: data)
	// Supports both STORE_DIR and SHEET_DIR env vars for compatibility
	Dir string `env:"STORE_DIR" envAlt:"SHEET_DIR" default:"data"`

	// DefaultStoreID is used when a request names neither a store nor a preset
	DefaultStoreID string `env:"STORE_DEFAULT_ID"`

	// DefaultTabID is the tab used when requests don't name one
	DefaultTabID string `env:"STORE_DEFAULT_TAB"`

	// DefaultSchemaTabID optionally names a schema-definition tab
	DefaultSchemaTabID string `env:"STORE_DEFAULT_SCHEMA_TAB"`
}

// PresetConfig locates the named-preset file.
type PresetConfig struct {
	// Path is the YAML preset file; blank disables presets
	Path string `env:"PRESETS_PATH"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// DebugConfig holds client debug-log collection settings.
type DebugConfig struct {
	// LogBuffer is the number of client debug-log entries kept in memory (default: 200)
	LogBuffer int `env:"DEBUG_LOG_BUFFER" default:"200"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
