package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/catalogsync"
	"github.com/garyellow/course-eligibility-go/internal/config"
	"github.com/garyellow/course-eligibility-go/internal/data"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/r2client"
)

// publishOutput is printed by catalog publish.
type publishOutput struct {
	catalogSummary
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	ETag   string `json:"etag"`
}

func newCatalogPublishCommand() *cobra.Command {
	var (
		key      string
		embedded bool
	)
	cmd := &cobra.Command{
		Use:   "publish [file]",
		Short: "Upload a catalog to R2 for servers to import",
		Long: `Publish validates a catalog and uploads it to the R2 bucket configured by
the ELIG_R2_* variables. Servers with R2 enabled import it on their next
sync. The key's extension (.gz, .zst) selects the upload compression.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wrap := domerrors.NewWrapper("cli", "publish")
			if embedded == (len(args) == 1) {
				return domerrors.NewValidationError("file", "pass exactly one of a catalog file or --embedded")
			}

			var (
				c   *catalog.Catalog
				err error
			)
			if embedded {
				c, err = data.DefaultCatalog()
				if err != nil {
					return wrap.Wrap(err, "embedded catalog is broken")
				}
			} else {
				c, err = catalog.Load(args[0])
				if err != nil {
					return wrap.Wrapf(catalogFileError(err), "%s is not a valid catalog", args[0])
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return wrap.Input(err, "invalid configuration")
			}
			if key == "" {
				key = cfg.R2CatalogKey
			}
			client, err := newR2Client(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), config.CatalogDownload)
			defer cancel()
			etag, err := catalogsync.Publish(ctx, client, key, c)
			if err != nil {
				return wrap.Wrapf(err, "cannot publish to %s/%s", client.Bucket(), key)
			}

			commandLogger(cmd).WithFields(map[string]any{"bucket": client.Bucket(), "key": key}).Debug("Catalog published")
			return writeJSON(cmd.OutOrStdout(), publishOutput{
				catalogSummary: summarize(c),
				Bucket:         client.Bucket(),
				Key:            key,
				ETag:           etag,
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Object key (default from ELIG_R2_CATALOG_KEY)")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "Publish the embedded default catalog")
	return cmd
}

// newR2Client builds a client from the ELIG_R2_* settings. Publishing does
// not require ELIG_R2_ENABLED, which only controls server-side syncing.
func newR2Client(ctx context.Context, cfg *config.Config) (*r2client.Client, error) {
	switch {
	case cfg.R2AccountID == "" && cfg.R2Endpoint == "":
		return nil, domerrors.NewValidationError(config.EnvR2AccountID, "set the account ID or "+config.EnvR2Endpoint)
	case cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "":
		return nil, domerrors.NewValidationError(config.EnvR2AccessKeyID, "R2 credentials are required")
	case cfg.R2BucketName == "":
		return nil, domerrors.NewValidationError(config.EnvR2BucketName, "bucket name is required")
	}
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2EndpointURL(),
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to R2: %w", err)
	}
	return client, nil
}
