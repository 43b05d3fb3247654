// Package catalogsync distributes the programme catalog through R2.
// Publishers upload a catalog file under a fixed key; servers check the
// object's ETag and import a changed catalog into their local store.
package catalogsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/metrics"
	"github.com/garyellow/course-eligibility-go/internal/r2client"
)

// Sync results recorded in metrics.
const (
	ResultUpdated   = "updated"
	ResultUnchanged = "unchanged"
	ResultMissing   = "missing"
	ResultError     = "error"
)

// ObjectStore is the subset of r2client.Client used for distribution.
type ObjectStore interface {
	HeadObject(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Store receives imported catalogs.
type Store interface {
	SaveCatalog(ctx context.Context, c *catalog.Catalog) error
}

// Syncer imports the published catalog whenever its ETag changes.
type Syncer struct {
	objects ObjectStore
	store   Store
	key     string
	timeout time.Duration
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu          sync.RWMutex
	currentETag string
}

// New creates a syncer for the object at key. timeout bounds each check
// including download and import.
func New(objects ObjectStore, store Store, key string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Syncer {
	return &Syncer{
		objects: objects,
		store:   store,
		key:     key,
		timeout: timeout,
		logger:  log.WithModule("catalogsync"),
		metrics: m,
	}
}

// CurrentETag returns the ETag of the last imported object.
func (s *Syncer) CurrentETag() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentETag
}

func (s *Syncer) setCurrentETag(etag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentETag = etag
}

// Sync imports the published catalog when its ETag differs from the last
// import. It reports whether the store changed. A missing object is not an
// error: the store keeps its catalog.
func (s *Syncer) Sync(ctx context.Context) (bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	updated, result, err := s.sync(ctx)
	if s.metrics != nil {
		s.metrics.RecordCatalogSync(result)
	}
	return updated, err
}

func (s *Syncer) sync(ctx context.Context) (bool, string, error) {
	etag, err := s.objects.HeadObject(ctx, s.key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			s.logger.WithField("key", s.key).Debug("No published catalog")
			return false, ResultMissing, nil
		}
		return false, ResultError, fmt.Errorf("check published catalog: %w", err)
	}
	if etag != "" && etag == s.CurrentETag() {
		return false, ResultUnchanged, nil
	}

	body, etag, err := s.objects.Download(ctx, s.key)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return false, ResultMissing, nil
		}
		return false, ResultError, fmt.Errorf("download published catalog: %w", err)
	}
	defer body.Close()

	c, err := catalog.Decode(body)
	if err != nil {
		return false, ResultError, domerrors.NewCatalogError("r2:"+s.key, err)
	}
	if err := s.store.SaveCatalog(ctx, c); err != nil {
		return false, ResultError, fmt.Errorf("store published catalog: %w", err)
	}
	s.setCurrentETag(etag)

	institutions, programs := c.Count()
	s.logger.WithFields(map[string]any{
		"key":          s.key,
		"etag":         etag,
		"version":      c.Version,
		"institutions": institutions,
		"programs":     programs,
	}).Info("Published catalog imported")
	return true, ResultUpdated, nil
}

// Run checks the published catalog every interval until ctx is cancelled,
// calling onUpdate after each import. Failed checks are logged and retried
// on the next tick.
func (s *Syncer) Run(ctx context.Context, interval time.Duration, onUpdate func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updated, err := s.Sync(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.WithError(err).Warn("Catalog sync failed")
				continue
			}
			if updated && onUpdate != nil {
				onUpdate(ctx)
			}
		}
	}
}

// Publish encodes c for key (compressed by the key's extension) and
// uploads it. It returns the new ETag.
func Publish(ctx context.Context, objects ObjectStore, key string, c *catalog.Catalog) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := catalog.Encode(&buf, c, catalog.CompressionFor(key)); err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	etag, err := objects.Upload(ctx, key, bytes.NewReader(buf.Bytes()), contentType(catalog.CompressionFor(key)))
	if err != nil {
		return "", fmt.Errorf("publish catalog: %w", err)
	}
	return etag, nil
}

func contentType(compression catalog.Compression) string {
	switch compression {
	case catalog.CompressionGzip:
		return "application/gzip"
	case catalog.CompressionZstd:
		return "application/zstd"
	default:
		return "application/yaml"
	}
}
