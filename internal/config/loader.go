package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// identityPart restricts identity values to characters that are safe in file names.
var identityPart = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Load builds the configuration: defaults, then the TOML file at path (if
// path is non-empty), then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_BYTES must be positive")
	}

	if c.Ingest.MaxLineBytes < 64 {
		errs = append(errs, fmt.Sprintf("INGEST_MAX_LINE_BYTES (%d) must be at least 64", c.Ingest.MaxLineBytes))
	}

	// Output validation
	if c.Output.DBPath == "" {
		errs = append(errs, "OUTPUT_DB_PATH is required")
	}
	if c.Output.ErrorsPath == "" {
		errs = append(errs, "OUTPUT_ERRORS_PATH is required")
	}
	if c.Output.ResponseDir == "" {
		errs = append(errs, "OUTPUT_RESPONSE_DIR is required")
	}

	// Identity validation
	for name, v := range map[string]string{
		"RESPONSE_OWNER_ID":         c.Identity.ID,
		"RESPONSE_OWNER_FIRST_NAME": c.Identity.FirstName,
		"RESPONSE_OWNER_LAST_NAME":  c.Identity.LastName,
	} {
		if !identityPart.MatchString(v) {
			errs = append(errs, fmt.Sprintf("%s (%q) must be letters, digits or '-'", name, v))
		}
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "API_KEYS must list at least one key when REQUIRE_API_KEY is set")
	}

	if c.Metrics.Namespace == "" {
		errs = append(errs, "METRICS_NAMESPACE is required")
	}

	if len(errs) > 0 {
		// Map iteration above is unordered; keep messages stable.
		sort.Strings(errs)
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Output: {DBPath: %q, ErrorsPath: %q, ResponseDir: %q}, ",
		c.Output.DBPath, c.Output.ErrorsPath, c.Output.ResponseDir))
	b.WriteString(fmt.Sprintf("Identity: {ID: %q}, ", c.Identity.ID))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured, TrustedProxies: %v}",
		c.Security.RequireAPIKey, len(c.Security.APIKeys), c.Security.TrustedProxies))
	b.WriteString("}")
	return b.String()
}
