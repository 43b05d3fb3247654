// Package storage persists the programme catalog in SQLite.
package storage

import (
	"context"
	"time"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
)

// CatalogRepository defines the catalog persistence operations.
type CatalogRepository interface {
	SaveCatalog(ctx context.Context, c *catalog.Catalog) error
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
	CatalogInfo(ctx context.Context) (Info, error)
	CountInstitutions(ctx context.Context) (int, error)
	CountPrograms(ctx context.Context) (int, error)
	SearchProgramsByName(ctx context.Context, term string) ([]ProgramRef, error)
	Ping(ctx context.Context) error
}

// Info describes the stored catalog.
type Info struct {
	Version    string    `json:"version"`
	ImportedAt time.Time `json:"imported_at"`
}

// ProgramRef identifies a stored programme.
type ProgramRef struct {
	InstitutionID   string       `json:"institution_id"`
	InstitutionName string       `json:"institution_name"`
	Kind            catalog.Kind `json:"kind"`
	ProgramID       string       `json:"program_id"`
	ProgramName     string       `json:"program_name"`
	MinScore        int          `json:"min_score"`
}

var _ CatalogRepository = (*DB)(nil)
