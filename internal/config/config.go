// Package config provides centralized configuration management for the application.
// It starts from built-in defaults, applies an optional TOML file, then
// environment variables, and validates all settings to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Ingest   IngestConfig    `toml:"ingest"`
	Output   OutputConfig    `toml:"output"`
	Identity IdentityConfig  `toml:"identity"`
	Rate     RateLimitConfig `toml:"rate_limit"`
	Logging  LoggingConfig   `toml:"logging"`
	Metrics  MetricsConfig   `toml:"metrics"`
	Security SecurityConfig  `toml:"security"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `toml:"host" env:"SERVER_HOST"`

	// Port is the port to listen on (default: 8080)
	Port int `toml:"port" env:"SERVER_PORT"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `toml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `toml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT"`

	// MaxBodyBytes caps request bodies for validate and query calls (default: 10MB)
	MaxBodyBytes int64 `toml:"max_body_bytes" env:"SERVER_MAX_BODY_BYTES"`
}

// IngestConfig holds input parsing limits.
type IngestConfig struct {
	// MaxLineBytes bounds a single input line (default: 1MB)
	MaxLineBytes int `toml:"max_line_bytes" env:"INGEST_MAX_LINE_BYTES"`
}

// OutputConfig holds output file locations.
type OutputConfig struct {
	// DBPath is where the validated dataset snapshot is written (default: output/db.json)
	DBPath string `toml:"db_path" env:"OUTPUT_DB_PATH"`

	// ErrorsPath is where the per-line defect report is written (default: output/errors.txt)
	ErrorsPath string `toml:"errors_path" env:"OUTPUT_ERRORS_PATH"`

	// ResponseDir is the directory query response documents are written to (default: .)
	ResponseDir string `toml:"response_dir" env:"OUTPUT_RESPONSE_DIR"`
}

// IdentityConfig names the owner embedded in query response file names.
type IdentityConfig struct {
	ID        string `toml:"id" env:"RESPONSE_OWNER_ID"`
	FirstName string `toml:"first_name" env:"RESPONSE_OWNER_FIRST_NAME"`
	LastName  string `toml:"last_name" env:"RESPONSE_OWNER_LAST_NAME"`
}

// RateLimitConfig holds per-IP rate limiting for the HTTP API.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `toml:"enabled" env:"RATE_LIMIT_ENABLED"`

	// RequestsPerMinute is the limit per IP (default: 100)
	RequestsPerMinute int `toml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `toml:"level" env:"LOG_LEVEL"`

	// Format is the log format: text or json (default: text)
	Format string `toml:"format" env:"LOG_FORMAT"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name (default: flightparser)
	Namespace string `toml:"namespace" env:"METRICS_NAMESPACE"`
}

// SecurityConfig holds HTTP API access settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `toml:"require_api_key" env:"REQUIRE_API_KEY"`

	// APIKeys lists accepted keys, comma-separated in the environment
	APIKeys []string `toml:"api_keys" env:"API_KEYS"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `toml:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Ingest: IngestConfig{
			MaxLineBytes: 1 << 20,
		},
		Output: OutputConfig{
			DBPath:      "output/db.json",
			ErrorsPath:  "output/errors.txt",
			ResponseDir: ".",
		},
		Identity: IdentityConfig{
			ID:        "123456",
			FirstName: "John",
			LastName:  "Doe",
		},
		Rate: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "flightparser",
		},
	}
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
