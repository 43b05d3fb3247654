// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and provides defaults for the server, the catalog store and
// the eligibility engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/garyellow/course-eligibility-go/internal/scoring"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir     string // Data directory for the SQLite catalog store
	CatalogPath string // Optional catalog file imported at startup (YAML, .gz or .zst)

	// CatalogPollInterval is how often the store is checked for a catalog
	// imported by another process (0 = disabled).
	CatalogPollInterval time.Duration

	// Engine Configuration
	APSTopK          int    // Subjects summed by the default APS (default: 6)
	FallbackCutoff   int    // Qualifying universities below which colleges are searched (default: 5)
	RequirementScale string // Scale used for requirement level checks: "7" or "8" (default: "7")
	SearchLimit      int    // Maximum programme search hits (default: 20)

	// Rate Limiting (per client IP on /api/v1)
	RateLimitPerMinute float64 // Average requests per minute per client (0 = disabled)
	RateLimitBurst     int     // Requests a client may send at once

	// R2 Catalog Distribution (ELIG_R2_ENABLED=true)
	R2Enabled         bool
	R2AccountID       string // Cloudflare account ID, used to derive the endpoint
	R2Endpoint        string // Explicit S3-compatible endpoint; overrides the account ID
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2CatalogKey      string        // Object key of the published catalog file
	R2SyncInterval    time.Duration // How often the object's ETag is checked (0 = startup only)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry Configuration (empty DSN = disabled)
	SentryDSN              string
	SentryEnvironment      string
	SentrySampleRate       float64
	SentryTracesSampleRate float64

	// Better Stack Configuration (empty token = disabled)
	BetterStackToken string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir:     getEnv(EnvDataDir, getDefaultDataDir()),
		CatalogPath: getEnv(EnvCatalogPath, ""),

		CatalogPollInterval: getDurationEnv(EnvCatalogPollInterval, CatalogPoll),

		// Engine Configuration
		APSTopK:          getIntEnv(EnvAPSTopK, scoring.DefaultTopK),
		FallbackCutoff:   getIntEnv(EnvFallbackCutoff, 5),
		RequirementScale: getEnv(EnvRequirementScale, "7"),
		SearchLimit:      getIntEnv(EnvSearchLimit, 20),

		// Rate Limiting
		RateLimitPerMinute: getFloatEnv(EnvRateLimitPerMinute, 120),
		RateLimitBurst:     getIntEnv(EnvRateLimitBurst, 30),

		// R2 Catalog Distribution
		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2Endpoint:        getEnv(EnvR2Endpoint, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2CatalogKey:      getEnv(EnvR2CatalogKey, DefaultR2CatalogKey),
		R2SyncInterval:    getDurationEnv(EnvR2SyncInterval, CatalogSync),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Sentry Configuration
		SentryDSN:              getEnv(EnvSentryDSN, ""),
		SentryEnvironment:      getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryTracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.0),

		// Better Stack Configuration
		BetterStackToken: getEnv(EnvBetterStackToken, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are usable. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a number in 1..65535, got %q", c.Port))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}
	if c.CatalogPollInterval < 0 {
		errs = append(errs, fmt.Errorf("CATALOG_POLL_INTERVAL cannot be negative, got %v", c.CatalogPollInterval))
	}
	if c.APSTopK < 1 || c.APSTopK > 10 {
		errs = append(errs, fmt.Errorf("APS_TOP_K must be in 1..10, got %d", c.APSTopK))
	}
	if c.FallbackCutoff < 0 {
		errs = append(errs, fmt.Errorf("FALLBACK_CUTOFF cannot be negative, got %d", c.FallbackCutoff))
	}
	if _, err := scoring.ScaleByName(c.RequirementScale); err != nil {
		errs = append(errs, fmt.Errorf("REQUIREMENT_SCALE: %w", err))
	}
	if c.SearchLimit < 1 {
		errs = append(errs, fmt.Errorf("SEARCH_LIMIT must be positive, got %d", c.SearchLimit))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative, got %v", c.RateLimitPerMinute))
	}
	if c.RateLimitEnabled() && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst))
	}
	if c.R2Enabled {
		errs = append(errs, c.validateR2()...)
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("SENTRY_SAMPLE_RATE must be in [0, 1], got %v", c.SentrySampleRate))
	}
	if c.SentryTracesSampleRate < 0 || c.SentryTracesSampleRate > 1 {
		errs = append(errs, fmt.Errorf("SENTRY_TRACES_SAMPLE_RATE must be in [0, 1], got %v", c.SentryTracesSampleRate))
	}
	if c.MetricsPassword != "" && c.MetricsUsername == "" {
		errs = append(errs, errors.New("METRICS_USERNAME is required when METRICS_PASSWORD is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *Config) validateR2() []error {
	var errs []error
	if c.R2AccountID == "" && c.R2Endpoint == "" {
		errs = append(errs, errors.New("R2_ACCOUNT_ID or R2_ENDPOINT is required when R2 is enabled"))
	}
	if c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" {
		errs = append(errs, errors.New("R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY are required when R2 is enabled"))
	}
	if c.R2BucketName == "" {
		errs = append(errs, errors.New("R2_BUCKET_NAME is required when R2 is enabled"))
	}
	if c.R2CatalogKey == "" {
		errs = append(errs, errors.New("R2_CATALOG_KEY cannot be empty"))
	}
	if c.R2SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("R2_SYNC_INTERVAL cannot be negative, got %v", c.R2SyncInterval))
	}
	return errs
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// Scale returns the requirement-level scale. Validate guarantees the name
// resolves; an unknown name falls back to Scale7.
func (c *Config) Scale() scoring.Scale {
	s, err := scoring.ScaleByName(c.RequirementScale)
	if err != nil {
		return scoring.Scale7
	}
	return s
}

// SentryEnabled reports whether error reporting is configured.
func (c *Config) SentryEnabled() bool {
	return c.SentryDSN != ""
}

// RateLimitEnabled reports whether API requests are rate limited per client.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitPerMinute > 0
}

// R2EndpointURL returns the S3-compatible endpoint for the R2 bucket.
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// MetricsAuthEnabled reports whether /metrics requires Basic Auth.
func (c *Config) MetricsAuthEnabled() bool {
	return c.MetricsPassword != ""
}
