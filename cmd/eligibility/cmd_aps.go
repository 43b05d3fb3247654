package main

import (
	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/scoring"
)

// apsOutput is the JSON document printed by aps.
type apsOutput struct {
	Score     int      `json:"score"`
	Rule      string   `json:"rule"`
	RuleFound bool     `json:"rule_found"`
	Rules     []string `json:"available_rules"`
}

func newAPSCommand() *cobra.Command {
	var (
		source       sourceOptions
		subjectsPath string
		rule         string
	)
	cmd := &cobra.Command{
		Use:   "aps",
		Short: "Compute an admission point score",
		Long: `Aps computes the admission point score of --subjects under a named scoring
rule. Rules come from the built-ins and the selected catalog; an unknown
rule falls back to the default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subjects, err := readSubjects(subjectsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			snap, err := source.load(cmd.Context(), commandLogger(cmd))
			if err != nil {
				return err
			}

			registry := snap.Engine.Registry()
			name := rule
			_, found := registry.Lookup(name)
			if !found {
				name = scoring.RuleDefault
			}
			return writeJSON(cmd.OutOrStdout(), apsOutput{
				Score:     snap.Engine.Score(subjects, name),
				Rule:      name,
				RuleFound: found,
				Rules:     registry.Names(),
			})
		},
	}
	cmd.Flags().StringVarP(&subjectsPath, "subjects", "s", "", "Subjects JSON file (required, - for stdin)")
	cmd.Flags().StringVarP(&rule, "rule", "r", scoring.RuleDefault, "Scoring rule name")
	source.addFlags(cmd)
	return cmd
}
