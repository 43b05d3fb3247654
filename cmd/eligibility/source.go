package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/config"
	"github.com/garyellow/course-eligibility-go/internal/data"
	"github.com/garyellow/course-eligibility-go/internal/eligibility"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/snapshot"
	"github.com/garyellow/course-eligibility-go/internal/storage"
)

// sourceOptions selects the catalog a command runs against and how the
// engine is configured.
type sourceOptions struct {
	catalogPath    string
	dbPath         string
	scale          string
	topK           int
	fallbackCutoff int
}

func (o *sourceOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.catalogPath, "catalog", "", "Catalog file (YAML, .gz or .zst); defaults to the embedded catalog")
	cmd.Flags().StringVar(&o.dbPath, "db", "", "Read the catalog from this SQLite store instead of a file")
	cmd.Flags().StringVar(&o.scale, "scale", "7", "Requirement level scale: 7 or 8")
	cmd.Flags().IntVar(&o.topK, "top-k", scoring.DefaultTopK, "Subjects summed by the default APS")
	cmd.Flags().IntVar(&o.fallbackCutoff, "fallback-cutoff", eligibility.DefaultFallbackCutoff,
		"Qualifying universities below which colleges are evaluated (0 = never)")
	cmd.MarkFlagsMutuallyExclusive("catalog", "db")
}

func (o *sourceOptions) config() (snapshot.Config, error) {
	scale, err := scoring.ScaleByName(o.scale)
	if err != nil {
		return snapshot.Config{}, domerrors.NewWrapper("cli", "configure").
			Wrap(domerrors.NewValidationError("scale", err.Error()), "invalid --scale")
	}
	if o.topK <= 0 {
		return snapshot.Config{}, domerrors.NewValidationError("top-k", "must be positive")
	}
	if o.fallbackCutoff < 0 {
		return snapshot.Config{}, domerrors.NewValidationError("fallback-cutoff", "cannot be negative")
	}
	return snapshot.Config{
		Scoring: scoring.Options{TopK: o.topK},
		Scale:   scale,
		Engine:  eligibility.Options{FallbackCutoff: o.fallbackCutoff},
	}, nil
}

// load builds a snapshot from the selected catalog source.
func (o *sourceOptions) load(ctx context.Context, log *logger.Logger) (*snapshot.Snapshot, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	wrap := domerrors.NewWrapper("cli", "load catalog")
	var (
		c    *catalog.Catalog
		info storage.Info
	)
	switch {
	case o.dbPath != "":
		c, info, err = loadFromStore(ctx, o.dbPath)
		if err != nil {
			return nil, wrap.Wrapf(err, "cannot read catalog from %s", o.dbPath)
		}
	case o.catalogPath != "":
		c, err = catalog.Load(o.catalogPath)
		if err != nil {
			return nil, wrap.Inputf(err, "cannot load catalog %s", o.catalogPath)
		}
		info.Version = c.Version
	default:
		c, err = data.DefaultCatalog()
		if err != nil {
			return nil, wrap.Wrap(err, "embedded catalog is broken")
		}
		info.Version = c.Version
	}

	snap, err := snapshot.Build(c, info, cfg, log)
	if err != nil {
		return nil, wrap.Wrap(err, "cannot prepare catalog")
	}
	log.WithField("version", info.Version).Debug("Catalog ready")
	return snap, nil
}

func loadFromStore(ctx context.Context, path string) (*catalog.Catalog, storage.Info, error) {
	db, err := storage.New(ctx, path)
	if err != nil {
		return nil, storage.Info{}, err
	}
	defer func() { _ = db.Close() }()

	info, err := db.CatalogInfo(ctx)
	if err != nil {
		return nil, storage.Info{}, err
	}
	c, err := db.LoadCatalog(ctx)
	if err != nil {
		return nil, storage.Info{}, err
	}
	return c, info, nil
}

// resolveDBPath returns path, or the server's store location from the
// environment when path is empty.
func resolveDBPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.SQLitePath(), nil
}

// invalidInput marks err as caused by user input.
func invalidInput(err error) error {
	if err == nil || domerrors.IsInvalidInput(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domerrors.ErrInvalidInput, err)
}
