package main

import (
	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/nsc"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

func newNSCCommand() *cobra.Command {
	var subjectsPath string
	cmd := &cobra.Command{
		Use:   "nsc",
		Short: "Determine the NSC pass level",
		Long: `Nsc reports the National Senior Certificate pass level (none, higher
certificate, diploma or bachelor) for the subject results in --subjects,
with the reasons behind it. No catalog is needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subjects, err := readSubjects(subjectsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			result := nsc.Evaluate(subject.Deduplicate(subjects))
			commandLogger(cmd).WithField("result", result.String()).Debug("NSC evaluated")
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&subjectsPath, "subjects", "s", "", "Subjects JSON file (required, - for stdin)")
	return cmd
}
