package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "ELIG_PORT"
	EnvLogLevel        = "ELIG_LOG_LEVEL"
	EnvShutdownTimeout = "ELIG_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir     = "ELIG_DATA_DIR"
	EnvCatalogPath = "ELIG_CATALOG_PATH"

	EnvCatalogPollInterval = "ELIG_CATALOG_POLL_INTERVAL"

	// Engine
	EnvAPSTopK          = "ELIG_APS_TOP_K"
	EnvFallbackCutoff   = "ELIG_FALLBACK_CUTOFF"
	EnvRequirementScale = "ELIG_REQUIREMENT_SCALE"
	EnvSearchLimit      = "ELIG_SEARCH_LIMIT"

	// Rate Limit Feature
	EnvRateLimitPerMinute = "ELIG_RATE_LIMIT_PER_MINUTE"
	EnvRateLimitBurst     = "ELIG_RATE_LIMIT_BURST"

	// R2 Catalog Feature
	EnvR2Enabled         = "ELIG_R2_ENABLED"
	EnvR2AccountID       = "ELIG_R2_ACCOUNT_ID"
	EnvR2Endpoint        = "ELIG_R2_ENDPOINT"
	EnvR2AccessKeyID     = "ELIG_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "ELIG_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "ELIG_R2_BUCKET_NAME"
	EnvR2CatalogKey      = "ELIG_R2_CATALOG_KEY"
	EnvR2SyncInterval    = "ELIG_R2_SYNC_INTERVAL"

	// Sentry Feature
	EnvSentryDSN              = "ELIG_SENTRY_DSN"
	EnvSentryEnvironment      = "ELIG_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate       = "ELIG_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "ELIG_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken = "ELIG_BETTERSTACK_TOKEN"

	// Metrics Auth Feature
	EnvMetricsUsername = "ELIG_METRICS_USERNAME"
	EnvMetricsPassword = "ELIG_METRICS_PASSWORD"
)
