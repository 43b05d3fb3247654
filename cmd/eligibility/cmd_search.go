package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/search"
)

// maxSearchLimit matches the HTTP API cap.
const maxSearchLimit = 100

// searchOutput is the JSON document printed by search.
type searchOutput struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

func newSearchCommand() *cobra.Command {
	var (
		source sourceOptions
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search programmes by name, faculty or institution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return domerrors.NewValidationError("query", "must not be empty")
			}
			if limit <= 0 || limit > maxSearchLimit {
				return domerrors.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxSearchLimit))
			}

			snap, err := source.load(cmd.Context(), commandLogger(cmd))
			if err != nil {
				return err
			}
			hits, err := snap.Index.Search(query, limit)
			if err != nil {
				return domerrors.NewWrapper("cli", "search").Wrap(err, "search failed")
			}
			if hits == nil {
				hits = []search.Hit{}
			}
			return writeJSON(cmd.OutOrStdout(), searchOutput{Query: query, Hits: hits})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of hits")
	source.addFlags(cmd)
	return cmd
}
