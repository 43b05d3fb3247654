package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/data"
	"github.com/garyellow/course-eligibility-go/internal/eligibility"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/metrics"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/storage"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// fakeSource serves a catalog from memory and counts loads.
type fakeSource struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	info    storage.Info
	err     error
	delay   time.Duration
	loads   atomic.Int32
}

func (f *fakeSource) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	f.loads.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

func (f *fakeSource) CatalogInfo(context.Context) (storage.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, nil
}

func (f *fakeSource) set(c *catalog.Catalog, info storage.Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog, f.info = c, info
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := data.DefaultCatalog()
	require.NoError(t, err)
	return c
}

func testConfig() Config {
	return Config{
		Scoring: scoring.Options{TopK: scoring.DefaultTopK},
		Scale:   scoring.Scale7,
		Engine:  eligibility.DefaultOptions(),
	}
}

func newTestManager(t *testing.T, src Source, m *metrics.Metrics) *Manager {
	t.Helper()
	return New(src, testConfig(), logger.New("error"), m)
}

func TestManager_CurrentBeforeLoad(t *testing.T) {
	t.Parallel()
	mgr := newTestManager(t, &fakeSource{}, nil)

	assert.False(t, mgr.Ready())
	_, err := mgr.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestManager_Reload(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	src := &fakeSource{}
	src.set(defaultCatalog(t), storage.Info{Version: "v1", ImportedAt: time.Unix(100, 0)})
	mgr := newTestManager(t, src, m)

	s, err := mgr.Reload(context.Background())
	require.NoError(t, err)
	require.True(t, mgr.Ready())

	cur, err := mgr.Current()
	require.NoError(t, err)
	assert.Same(t, s, cur)
	assert.Equal(t, "v1", cur.Info.Version)

	_, programs := cur.Catalog.Count()
	assert.Equal(t, programs, cur.Index.Count())

	subjects := []subject.Subject{
		{Name: "English", Percentage: 75},
		{Name: "Mathematics", Percentage: 80},
		{Name: "Physical Sciences", Percentage: 70},
		{Name: "Life Sciences", Percentage: 65},
		{Name: "Geography", Percentage: 60},
		{Name: "Accounting", Percentage: 55},
	}
	report := cur.Engine.Evaluate(subjects, cur.Catalog.Institutions)
	assert.Positive(t, report.APS)
	assert.NotEmpty(t, report.Matches)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CatalogReloadsTotal.WithLabelValues("success")))
	assert.Positive(t, testutil.ToFloat64(m.CatalogPrograms.WithLabelValues(string(catalog.KindUniversity))))
}

func TestManager_ReloadFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	src := &fakeSource{}
	src.set(defaultCatalog(t), storage.Info{Version: "v1"})
	mgr := newTestManager(t, src, m)

	first, err := mgr.Reload(context.Background())
	require.NoError(t, err)

	src.mu.Lock()
	src.err = domerrors.ErrCatalogEmpty
	src.mu.Unlock()

	_, err = mgr.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domerrors.ErrCatalogEmpty)

	cur, err := mgr.Current()
	require.NoError(t, err)
	assert.Same(t, first, cur)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CatalogReloadsTotal.WithLabelValues("error")))
}

func TestManager_ReloadRejectsInvalidCatalog(t *testing.T) {
	t.Parallel()
	src := &fakeSource{}
	src.set(&catalog.Catalog{Institutions: []catalog.Institution{{ID: "x", Name: "X", Kind: "school"}}}, storage.Info{})
	mgr := newTestManager(t, src, nil)

	_, err := mgr.Reload(context.Background())
	require.Error(t, err)
	assert.False(t, mgr.Ready())
}

func TestManager_ReloadCoalesces(t *testing.T) {
	t.Parallel()
	src := &fakeSource{delay: 50 * time.Millisecond}
	src.set(defaultCatalog(t), storage.Info{Version: "v1"})
	mgr := newTestManager(t, src, nil)

	var wg sync.WaitGroup
	results := make([]*Snapshot, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := mgr.Reload(context.Background())
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	assert.Less(t, src.loads.Load(), int32(len(results)))
	for _, s := range results {
		assert.NotNil(t, s)
	}
}

func TestManager_ReloadCallerCancel(t *testing.T) {
	t.Parallel()
	src := &fakeSource{delay: 200 * time.Millisecond}
	src.set(defaultCatalog(t), storage.Info{Version: "v1"})
	mgr := newTestManager(t, src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mgr.Reload(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The shared load is detached from the caller and still completes.
	assert.Eventually(t, mgr.Ready, 2*time.Second, 10*time.Millisecond)
}

func TestManager_Polling(t *testing.T) {
	t.Parallel()
	src := &fakeSource{}
	src.set(defaultCatalog(t), storage.Info{Version: "v1", ImportedAt: time.Unix(100, 0)})

	cfg := testConfig()
	cfg.PollInterval = 10 * time.Millisecond
	mgr := New(src, cfg, logger.New("error"), nil)

	_, err := mgr.Reload(context.Background())
	require.NoError(t, err)

	mgr.StartPolling(context.Background())
	mgr.StartPolling(context.Background()) // second call is a no-op
	defer mgr.StopPolling()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), src.loads.Load(), "unchanged import must not reload")

	src.set(defaultCatalog(t), storage.Info{Version: "v2", ImportedAt: time.Unix(200, 0)})
	assert.Eventually(t, func() bool {
		cur, err := mgr.Current()
		return err == nil && cur.Info.Version == "v2"
	}, 2*time.Second, 10*time.Millisecond)

	mgr.StopPolling()
	mgr.StopPolling()
}

func TestManager_PollingDisabled(t *testing.T) {
	t.Parallel()
	mgr := newTestManager(t, &fakeSource{}, nil)
	mgr.StartPolling(context.Background())
	mgr.StopPolling()
}

func TestManager_WithStorage(t *testing.T) {
	t.Parallel()
	db, err := storage.NewTestDB()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	mgr := newTestManager(t, db, nil)

	_, err = mgr.Reload(ctx)
	require.Error(t, err, "empty store has no catalog info")
	assert.True(t, errors.Is(err, domerrors.ErrNotFound))

	require.NoError(t, db.SaveCatalog(ctx, defaultCatalog(t)))
	s, err := mgr.Reload(ctx)
	require.NoError(t, err)

	hits, err := s.Index.Search("engineering", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)
}
