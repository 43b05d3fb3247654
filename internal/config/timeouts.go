// Package config provides centralized timeout constants for the application.
//
// Evaluations are CPU-bound and finish in milliseconds, so request budgets
// are small. Catalog reloads touch SQLite and may rebuild the search index,
// so they get a longer budget.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the HTTP server read timeout. Request bodies are small JSON
	// documents with a handful of subjects.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the HTTP server write timeout.
	// Should accommodate RequestProcessing + response serialization.
	HTTPWrite = 35 * time.Second

	// HTTPIdle is the HTTP server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second

	// RequestProcessing bounds a single API request including a catalog
	// reload it may trigger.
	RequestProcessing = 30 * time.Second
)

// Catalog timeouts
const (
	// CatalogReload is the budget for reading the catalog from SQLite and
	// rebuilding the scoring registry and search index.
	CatalogReload = 20 * time.Second

	// CatalogImport is the budget for the CLI import of a catalog file.
	CatalogImport = 2 * time.Minute

	// CatalogDownload bounds one R2 check including download and import.
	CatalogDownload = time.Minute
)

// DefaultR2CatalogKey is the object key catalogs are published under.
const DefaultR2CatalogKey = "catalog/catalog.yaml.zst"

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles write contention between a running server and a CLI import.
	DatabaseBusyTimeout = 30 * time.Second
)

// Background job intervals
const (
	// CatalogPoll is the default interval for checking the store for a
	// newer catalog import. A CLI import into the shared database is picked
	// up by running servers within one interval.
	CatalogPoll = time.Minute

	// CatalogSync is the default interval for checking the published
	// catalog object in R2.
	CatalogSync = 5 * time.Minute

	// RateLimitCleanup is how often idle client buckets are dropped.
	RateLimitCleanup = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)

// Request limits
const (
	// MaxRequestBody bounds API request bodies. A full set of subjects
	// encodes to well under 4 KiB.
	MaxRequestBody = 64 << 10
)
