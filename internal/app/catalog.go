package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/data"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/storage"
)

// CatalogStore is the subset of storage used to prepare the catalog.
type CatalogStore interface {
	SaveCatalog(ctx context.Context, c *catalog.Catalog) error
	CatalogInfo(ctx context.Context) (storage.Info, error)
}

// ImportFile loads, validates and stores the catalog file at path,
// replacing whatever the store held.
func ImportFile(ctx context.Context, store CatalogStore, path string) (*catalog.Catalog, error) {
	c, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	if err := store.SaveCatalog(ctx, c); err != nil {
		return nil, fmt.Errorf("store catalog: %w", err)
	}
	return c, nil
}

// PrepareCatalog makes sure the store holds a catalog before the first
// snapshot load. A configured path is always imported; otherwise an empty
// store is seeded with the embedded default catalog.
func PrepareCatalog(ctx context.Context, store CatalogStore, path string, log *logger.Logger) error {
	if path != "" {
		c, err := ImportFile(ctx, store, path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		institutions, programs := c.Count()
		log.WithFields(map[string]any{
			"path":         path,
			"version":      c.Version,
			"institutions": institutions,
			"programs":     programs,
		}).Info("Catalog imported")
		return nil
	}

	info, err := store.CatalogInfo(ctx)
	switch {
	case err == nil:
		log.WithField("version", info.Version).Debug("Using stored catalog")
		return nil
	case !errors.Is(err, domerrors.ErrNotFound):
		return fmt.Errorf("read catalog info: %w", err)
	}

	c, err := data.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("parse embedded catalog: %w", err)
	}
	if err := store.SaveCatalog(ctx, c); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.WithField("version", c.Version).Info("Seeded empty store with the default catalog")
	return nil
}
