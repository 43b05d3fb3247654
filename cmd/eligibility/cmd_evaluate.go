package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/eligibility"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
)

type evaluateOptions struct {
	source         sourceOptions
	subjectsPath   string
	onlyQualifying bool
	requireMatch   bool
	format         string
}

// evaluateOutput is the JSON document printed by evaluate.
type evaluateOutput struct {
	eligibility.Report
	CatalogVersion string `json:"catalog_version"`
}

func newEvaluateCommand() *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate subject results against the catalog",
		Long: `Evaluate computes the APS, the NSC pass level and every programme match
for the subject results in --subjects.

The subjects file is a JSON array of {"name", "percentage"} objects or an
object with a "subjects" array. Percentages may be numbers or strings such
as "65%". Use "-" to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.subjectsPath, "subjects", "s", "", "Subjects JSON file (required, - for stdin)")
	cmd.Flags().BoolVar(&opts.onlyQualifying, "only-qualifying", false, "Only list programmes whose requirements are met")
	cmd.Flags().BoolVar(&opts.requireMatch, "require-match", false, "Exit with status 1 when no programme qualifies")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or text")
	opts.source.addFlags(cmd)

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	if opts.format != "json" && opts.format != "text" {
		return domerrors.NewValidationError("format", fmt.Sprintf("unsupported format %q: must be json or text", opts.format))
	}
	log := commandLogger(cmd)

	subjects, err := readSubjects(opts.subjectsPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	snap, err := opts.source.load(cmd.Context(), log)
	if err != nil {
		return err
	}

	engine := snap.Engine
	if opts.onlyQualifying {
		engineOpts := engine.Options()
		engineOpts.OnlyQualifying = true
		engine = engine.WithOptions(engineOpts)
	}
	report := engine.Evaluate(subjects, snap.Catalog.Institutions)
	log.WithFields(map[string]any{
		"aps":        report.APS,
		"matches":    len(report.Matches),
		"qualifying": report.Qualifying,
	}).Debug("Evaluation complete")

	out := cmd.OutOrStdout()
	if opts.format == "text" {
		err = writeReportText(out, report, snap.Info.Version)
	} else {
		err = writeJSON(out, evaluateOutput{Report: report, CatalogVersion: snap.Info.Version})
	}
	if err != nil {
		return err
	}

	if opts.requireMatch && report.Qualifying == 0 {
		return &NoMatchError{Evaluated: len(report.Matches)}
	}
	return nil
}

func writeReportText(w io.Writer, r eligibility.Report, version string) error {
	fmt.Fprintf(w, "Catalog:    %s\n", version)
	fmt.Fprintf(w, "APS:        %d\n", r.APS)
	fmt.Fprintf(w, "NSC:        %s\n", r.NSC.PassLevel)
	fmt.Fprintf(w, "Qualifying: %d of %d\n", r.Qualifying, len(r.Matches))
	if len(r.Conflicts) > 0 {
		fmt.Fprintf(w, "Conflicts:  %s\n", strings.Join(r.Conflicts, ", "))
	}
	if len(r.Unrecognized) > 0 {
		fmt.Fprintf(w, "Unrecognized: %s\n", strings.Join(r.Unrecognized, ", "))
	}
	if len(r.Matches) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tPROGRAMME\tINSTITUTION\tSCORE\tMISSING")
	for _, m := range r.Matches {
		status := "no"
		if m.MeetsRequirements {
			status = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
			status, m.Course, m.Institution, m.StudentScore, m.RequiredScore,
			strings.Join(m.MissingRequirements, "; "))
	}
	return tw.Flush()
}
