package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/app"
	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/config"
	"github.com/garyellow/course-eligibility-go/internal/data"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/storage"
)

// catalogSummary is printed by catalog import, info and validate.
type catalogSummary struct {
	Version      string `json:"version"`
	Institutions int    `json:"institutions"`
	Programs     int    `json:"programs"`
	ImportedAt   string `json:"imported_at,omitempty"`
	Path         string `json:"path,omitempty"`
}

func summarize(c *catalog.Catalog) catalogSummary {
	institutions, programs := c.Count()
	return catalogSummary{Version: c.Version, Institutions: institutions, Programs: programs}
}

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the programme catalog",
		Long: `Catalog validates catalog files and manages the SQLite store read by the
server. When --db is omitted the store location comes from ELIG_DATA_DIR.

A running server picks up an import on its next catalog poll. Publish
uploads a catalog to R2 for servers that sync from the bucket.`,
	}

	cmd.AddCommand(newCatalogValidateCommand())
	cmd.AddCommand(newCatalogImportCommand())
	cmd.AddCommand(newCatalogExportCommand())
	cmd.AddCommand(newCatalogInfoCommand())
	cmd.AddCommand(newCatalogFindCommand())
	cmd.AddCommand(newCatalogPublishCommand())

	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a catalog file without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return domerrors.NewWrapper("cli", "validate").Inputf(err, "%s is not a valid catalog", args[0])
			}
			summary := summarize(c)
			summary.Path = args[0]
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newCatalogImportCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a catalog file into the store",
		Long: `Import validates the catalog file and replaces the stored catalog in one
transaction. Files ending in .gz or .zst are decompressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), dbPath, func(ctx context.Context, db *storage.DB) error {
				ctx, cancel := context.WithTimeout(ctx, config.CatalogImport)
				defer cancel()

				c, err := app.ImportFile(ctx, db, args[0])
				if err != nil {
					return domerrors.NewWrapper("cli", "import").Wrapf(catalogFileError(err), "cannot import %s", args[0])
				}
				commandLogger(cmd).WithFields(map[string]any{
					"path":    args[0],
					"version": c.Version,
				}).Debug("Catalog imported")

				info, err := db.CatalogInfo(ctx)
				if err != nil {
					return err
				}
				summary := summarize(c)
				summary.ImportedAt = info.ImportedAt.Format(time.RFC3339)
				summary.Path = db.Path()
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default from ELIG_DATA_DIR)")
	return cmd
}

func newCatalogExportCommand() *cobra.Command {
	var (
		dbPath   string
		embedded bool
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the stored catalog to a file",
		Long: `Export writes the stored catalog as YAML, gzip-compressed for .gz files and
zstd-compressed for .zst files. With --embedded the built-in default
catalog is written instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wrap := domerrors.NewWrapper("cli", "export")
			if embedded {
				c, err := data.DefaultCatalog()
				if err != nil {
					return wrap.Wrap(err, "embedded catalog is broken")
				}
				return exportCatalog(cmd, c, args[0])
			}
			return withStore(cmd.Context(), dbPath, func(ctx context.Context, db *storage.DB) error {
				c, err := db.LoadCatalog(ctx)
				if err != nil {
					return wrap.Wrap(err, "cannot read the stored catalog")
				}
				return exportCatalog(cmd, c, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default from ELIG_DATA_DIR)")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "Export the embedded default catalog")
	cmd.MarkFlagsMutuallyExclusive("db", "embedded")
	return cmd
}

func exportCatalog(cmd *cobra.Command, c *catalog.Catalog, path string) error {
	if err := catalog.Save(path, c); err != nil {
		return domerrors.NewWrapper("cli", "export").Wrapf(err, "cannot write %s", path)
	}
	summary := summarize(c)
	summary.Path = path
	return writeJSON(cmd.OutOrStdout(), summary)
}

func newCatalogInfoCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the stored catalog version and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), dbPath, func(ctx context.Context, db *storage.DB) error {
				info, err := db.CatalogInfo(ctx)
				if err != nil {
					if domerrors.IsNotFound(err) {
						return domerrors.NewWrapper("cli", "info").Wrap(err, "the store holds no catalog; run catalog import first")
					}
					return err
				}
				institutions, err := db.CountInstitutions(ctx)
				if err != nil {
					return err
				}
				programs, err := db.CountPrograms(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), catalogSummary{
					Version:      info.Version,
					Institutions: institutions,
					Programs:     programs,
					ImportedAt:   info.ImportedAt.Format(time.RFC3339),
					Path:         db.Path(),
				})
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default from ELIG_DATA_DIR)")
	return cmd
}

func newCatalogFindCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "Find stored programmes whose name contains the query words in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), dbPath, func(ctx context.Context, db *storage.DB) error {
				refs, err := db.SearchProgramsByName(ctx, args[0])
				if err != nil {
					return domerrors.NewWrapper("cli", "find").Wrap(err, "lookup failed")
				}
				if refs == nil {
					refs = []storage.ProgramRef{}
				}
				return writeJSON(cmd.OutOrStdout(), refs)
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default from ELIG_DATA_DIR)")
	return cmd
}

// withStore opens the store at dbPath (or the configured default) for the
// duration of fn.
func withStore(ctx context.Context, dbPath string, fn func(context.Context, *storage.DB) error) error {
	path, err := resolveDBPath(dbPath)
	if err != nil {
		return err
	}
	db, err := storage.New(ctx, path)
	if err != nil {
		return domerrors.NewWrapper("cli", "open store").Wrapf(err, "cannot open store %s", path)
	}
	defer func() { _ = db.Close() }()
	return fn(ctx, db)
}

// catalogFileError marks catalog file failures as input errors and leaves
// store failures alone.
func catalogFileError(err error) error {
	var ce *domerrors.CatalogError
	if errors.As(err, &ce) {
		return invalidInput(err)
	}
	return err
}
