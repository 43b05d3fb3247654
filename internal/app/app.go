// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/course-eligibility-go/internal/api"
	"github.com/garyellow/course-eligibility-go/internal/buildinfo"
	"github.com/garyellow/course-eligibility-go/internal/catalogsync"
	"github.com/garyellow/course-eligibility-go/internal/config"
	"github.com/garyellow/course-eligibility-go/internal/eligibility"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/metrics"
	"github.com/garyellow/course-eligibility-go/internal/r2client"
	"github.com/garyellow/course-eligibility-go/internal/ratelimit"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/sentry"
	"github.com/garyellow/course-eligibility-go/internal/snapshot"
	"github.com/garyellow/course-eligibility-go/internal/storage"
)

// sentryFlushTimeout bounds event delivery during shutdown.
const sentryFlushTimeout = 2 * time.Second

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg       *config.Config
	logger    *logger.Logger
	db        *storage.DB
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	snapshots *snapshot.Manager
	syncer    *catalogsync.Syncer      // nil when R2 distribution is disabled
	limiter   *ratelimit.ClientLimiter // nil when rate limiting is disabled
	router    *gin.Engine
	server    *http.Server
	wg        sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
// The catalog is prepared and loaded before it returns, so the server is
// ready as soon as it starts listening.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	log := logger.NewWithOptions(logger.Options{
		Level:            cfg.LogLevel,
		Writer:           os.Stdout,
		BetterStackToken: cfg.BetterStackToken,
		Async: logger.AsyncOptions{
			OnDrop: func() { m.RecordLogDrop("betterstack") },
		},
	})

	log = log.WithField("service", "course-eligibility")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls also get request_id and client_ip.
	slog.SetDefault(log.Logger)

	log.WithFields(toAny(buildinfo.Fields())).Info("Initializing application...")
	if log.RemoteEnabled() {
		log.Info("Better Stack logging enabled")
	}

	if cfg.SentryEnabled() {
		err := sentry.Initialize(sentry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          buildinfo.Release(),
			SampleRate:       cfg.SentrySampleRate,
			TracesSampleRate: cfg.SentryTracesSampleRate,
		})
		if err != nil {
			log.WithError(err).Warn("Sentry initialization failed, error reporting disabled")
		} else {
			log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error reporting enabled")
		}
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	importCtx, cancel := context.WithTimeout(ctx, config.CatalogImport)
	defer cancel()
	if err := PrepareCatalog(importCtx, db, cfg.CatalogPath, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var syncer *catalogsync.Syncer
	if cfg.R2Enabled {
		syncer, err = newCatalogSyncer(ctx, cfg, db, log, m)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("r2: %w", err)
		}
		// The published catalog wins over the local one, but an unreachable
		// bucket must not keep the server down.
		if _, err := syncer.Sync(ctx); err != nil {
			log.WithError(err).Warn("Initial catalog sync failed, serving the local catalog")
		}
	}

	snapshots := snapshot.New(db, snapshot.Config{
		Scoring:       scoring.Options{TopK: cfg.APSTopK},
		Scale:         cfg.Scale(),
		Engine:        eligibility.Options{FallbackCutoff: cfg.FallbackCutoff},
		PollInterval:  cfg.CatalogPollInterval,
		ReloadTimeout: config.CatalogReload,
	}, log, m)
	if _, err := snapshots.Reload(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	app := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		metrics:   m,
		registry:  registry,
		snapshots: snapshots,
		syncer:    syncer,
	}
	gin.SetMode(gin.ReleaseMode)
	app.router = app.newRouter()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// newCatalogSyncer connects to R2 and returns a syncer for the configured
// catalog key.
func newCatalogSyncer(ctx context.Context, cfg *config.Config, db *storage.DB, log *logger.Logger, m *metrics.Metrics) (*catalogsync.Syncer, error) {
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2EndpointURL(),
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]any{
		"bucket":   client.Bucket(),
		"key":      cfg.R2CatalogKey,
		"interval": cfg.R2SyncInterval.String(),
	}).Info("R2 catalog distribution enabled")
	return catalogsync.New(client, db, cfg.R2CatalogKey, config.CatalogDownload, log, m), nil
}

// newRouter builds the gin engine with middleware and all routes.
func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	if sentry.IsEnabled() {
		router.Use(sentry.Middleware())
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/healthz", a.livenessCheck)
	router.HEAD("/healthz", a.livenessCheck)
	router.GET("/ready", a.readinessCheck)
	router.HEAD("/ready", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled(), a.cfg.MetricsUsername, a.cfg.MetricsPassword, a.metrics),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	apiGroup := router.Group("",
		timeoutMiddleware(config.RequestProcessing),
		bodyLimitMiddleware(config.MaxRequestBody, a.metrics))
	if a.cfg.RateLimitEnabled() {
		a.limiter = ratelimit.NewClientLimiter(ratelimit.ClientLimiterConfig{
			RequestsPerMinute: a.cfg.RateLimitPerMinute,
			Burst:             a.cfg.RateLimitBurst,
			CleanupPeriod:     config.RateLimitCleanup,
			OnDrop:            func() { a.metrics.RecordRateLimiterDrop("client") },
			OnUpdate:          a.metrics.SetRateLimiterClients,
		})
		apiGroup.Use(rateLimitMiddleware(a.limiter, a.metrics))
	}
	api.NewHandler(api.Config{
		Snapshots:   a.snapshots,
		Metrics:     a.metrics,
		Logger:      a.logger,
		SearchLimit: a.cfg.SearchLimit,
	}).Register(apiGroup)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router
}

// Handler returns the HTTP handler serving all routes.
func (a *Application) Handler() http.Handler {
	return a.router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	snap, err := a.snapshots.Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "catalog not loaded",
		})
		return
	}

	institutions, programs := snap.Catalog.Count()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"catalog": gin.H{
			"version":      snap.Info.Version,
			"institutions": institutions,
			"programs":     programs,
			"indexed":      snap.Index.Count(),
			"loaded_at":    snap.LoadedAt.UTC().Format(time.RFC3339),
		},
		"build": buildinfo.Fields(),
	})
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM.
//
// Shutdown order: cancel background jobs and wait for them, stop the HTTP
// server, then close the database and flush telemetry.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.watchCatalog(ctx)
	})
	if a.syncer != nil {
		a.wg.Go(func() {
			a.syncCatalog(ctx)
		})
	}
}

// watchCatalog polls the store for catalog imports until ctx is cancelled.
func (a *Application) watchCatalog(ctx context.Context) {
	a.logger.Debug("Catalog watch job started")
	defer a.logger.Debug("Catalog watch job stopped")

	a.snapshots.StartPolling(ctx)
	<-ctx.Done()
	a.snapshots.StopPolling()
}

// syncCatalog imports newly published catalogs from R2 and swaps in a
// fresh snapshot after each import.
func (a *Application) syncCatalog(ctx context.Context) {
	a.logger.Debug("Catalog sync job started")
	defer a.logger.Debug("Catalog sync job stopped")

	a.syncer.Run(ctx, a.cfg.R2SyncInterval, func(ctx context.Context) {
		if _, err := a.snapshots.Reload(ctx); err != nil {
			a.logger.WithError(err).Error("Snapshot reload after catalog sync failed")
		}
	})
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
			sentry.CaptureException(err)
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops the HTTP server and releases resources. Call it after
// background jobs have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Error("HTTP server shutdown error")
		}
	}

	a.logger.Info("Closing resources...")
	a.snapshots.StopPolling()
	if a.limiter != nil {
		a.limiter.Stop()
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if sentry.IsEnabled() && !sentry.Flush(sentryFlushTimeout) {
		a.logger.Warn("Sentry flush timed out")
	}

	if dropped := a.logger.DroppedRecords(); dropped > 0 {
		a.logger.WithField("dropped", dropped).Warn("Remote log shipping dropped records")
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
	return nil
}

func toAny(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
