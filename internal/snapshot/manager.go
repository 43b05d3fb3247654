// Package snapshot holds the immutable catalog snapshot served to requests.
// A snapshot bundles the catalog with the scoring registry, eligibility
// engine and search index built from it. Reloads read the catalog store,
// are coalesced with singleflight and swap the snapshot atomically; a
// background poller picks up imports made by other processes.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/ctxutil"
	"github.com/garyellow/course-eligibility-go/internal/eligibility"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/metrics"
	"github.com/garyellow/course-eligibility-go/internal/requirement"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/search"
	"github.com/garyellow/course-eligibility-go/internal/storage"
)

// ErrNotLoaded is returned by Current before the first successful load.
var ErrNotLoaded = errors.New("snapshot: catalog not loaded")

const reloadKey = "catalog"

// Source is the catalog store read by the manager.
type Source interface {
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
	CatalogInfo(ctx context.Context) (storage.Info, error)
}

// Config holds snapshot manager configuration.
type Config struct {
	Scoring       scoring.Options     // Defaults for the "default" scoring rule
	Scale         scoring.Scale       // Scale for requirement level checks
	Engine        eligibility.Options // Fallback policy
	PollInterval  time.Duration       // How often to check the store for a newer import (0 = no polling)
	ReloadTimeout time.Duration       // Budget for one reload
}

// Snapshot is one loaded catalog with everything derived from it.
// It is never mutated after construction.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Engine   *eligibility.Engine
	Index    *search.Index
	Info     storage.Info
	LoadedAt time.Time
}

// Manager owns the current snapshot.
type Manager struct {
	source  Source
	config  Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	current atomic.Pointer[Snapshot]
	group   singleflight.Group

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// New creates a snapshot manager. metrics may be nil.
func New(source Source, cfg Config, log *logger.Logger, m *metrics.Metrics) *Manager {
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 20 * time.Second
	}
	return &Manager{
		source:  source,
		config:  cfg,
		logger:  log.WithModule("snapshot"),
		metrics: m,
	}
}

// Current returns the loaded snapshot.
func (m *Manager) Current() (*Snapshot, error) {
	s := m.current.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s, nil
}

// Ready reports whether a snapshot has been loaded.
func (m *Manager) Ready() bool {
	return m.current.Load() != nil
}

// Build derives a snapshot from c without installing it.
func (m *Manager) Build(c *catalog.Catalog, info storage.Info) (*Snapshot, error) {
	return Build(c, info, m.config, m.logger)
}

// Build derives a snapshot from c: scoring registry, engine and search index.
func Build(c *catalog.Catalog, info storage.Info, cfg Config, log *logger.Logger) (*Snapshot, error) {
	registry, err := c.Registry(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("build scoring registry: %w", err)
	}

	index := search.NewIndex(log)
	if err := index.Build(c); err != nil {
		return nil, fmt.Errorf("build search index: %w", err)
	}

	return &Snapshot{
		Catalog:  c,
		Engine:   eligibility.NewEngine(registry, requirement.NewMatcher(cfg.Scale), cfg.Engine),
		Index:    index,
		Info:     info,
		LoadedAt: time.Now(),
	}, nil
}

// Reload reads the catalog from the store and installs a new snapshot.
// Concurrent calls share one load; a caller whose ctx ends stops waiting
// without cancelling the shared load.
func (m *Manager) Reload(ctx context.Context) (*Snapshot, error) {
	ch := m.group.DoChan(reloadKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(ctx), m.config.ReloadTimeout)
		defer cancel()
		return m.reload(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Shared && m.metrics != nil {
			m.metrics.RecordSingleflightDedup(reloadKey)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) reload(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	s, err := m.load(ctx)
	status := "success"
	if err != nil {
		status = "error"
	}
	if m.metrics != nil {
		m.metrics.RecordCatalogReload(status, time.Since(start).Seconds())
	}
	if err != nil {
		m.logger.WithError(err).ErrorContext(ctx, "Catalog reload failed")
		return nil, err
	}

	m.current.Store(s)
	m.recordSize(s.Catalog)

	institutions, programs := s.Catalog.Count()
	m.logger.WithFields(map[string]any{
		"version":      s.Info.Version,
		"institutions": institutions,
		"programs":     programs,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).InfoContext(ctx, "Catalog snapshot loaded")
	return s, nil
}

func (m *Manager) load(ctx context.Context) (*Snapshot, error) {
	info, err := m.source.CatalogInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("read catalog info: %w", err)
	}
	c, err := m.source.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("stored catalog invalid: %w", err)
	}
	return m.Build(c, info)
}

func (m *Manager) recordSize(c *catalog.Catalog) {
	if m.metrics == nil {
		return
	}
	counts := map[catalog.Kind][2]int{
		catalog.KindUniversity: {},
		catalog.KindCollege:    {},
	}
	for _, inst := range c.Institutions {
		n := counts[inst.Kind]
		n[0]++
		n[1] += len(inst.Programs)
		counts[inst.Kind] = n
	}
	for kind, n := range counts {
		m.metrics.SetCatalogSize(string(kind), n[0], n[1])
	}
}

// StartPolling starts background polling of the store. When the stored
// import time differs from the loaded snapshot's, the catalog is reloaded.
func (m *Manager) StartPolling(ctx context.Context) {
	if m.config.PollInterval <= 0 {
		return
	}

	m.pollMu.Lock()
	defer m.pollMu.Unlock()
	if m.pollCancel != nil {
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	m.pollCancel = cancel
	m.pollDone = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)

		ticker := time.NewTicker(m.config.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				m.logger.Info("Catalog polling stopped")
				return
			case <-ticker.C:
				m.pollOnce(pollCtx)
			}
		}
	}(m.pollDone)

	m.logger.WithField("interval", m.config.PollInterval.String()).Info("Catalog polling started")
}

// pollOnce reloads the catalog when the store holds a newer import.
func (m *Manager) pollOnce(ctx context.Context) {
	info, err := m.source.CatalogInfo(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("Catalog poll: read info failed")
		return
	}

	if cur := m.current.Load(); cur != nil && cur.Info.ImportedAt.Equal(info.ImportedAt) {
		return
	}

	m.logger.WithField("version", info.Version).Info("New catalog import detected, reloading")
	if _, err := m.Reload(ctx); err != nil {
		m.logger.WithError(err).Warn("Catalog poll: reload failed, keeping current snapshot")
	}
}

// StopPolling stops the background polling goroutine.
func (m *Manager) StopPolling() {
	m.pollMu.Lock()
	cancel, done := m.pollCancel, m.pollDone
	m.pollCancel, m.pollDone = nil, nil
	m.pollMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
