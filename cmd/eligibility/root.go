package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/garyellow/course-eligibility-go/internal/buildinfo"
	"github.com/garyellow/course-eligibility-go/internal/logger"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Match NSC results against university and college programmes",
		Long: `eligibility scores a student's subject results, checks the NSC pass level
and lists the programmes whose admission requirements are met.

Evaluations run against the embedded default catalog, a catalog file
(--catalog) or the SQLite store used by the server (--db).`,
		Version:      buildinfo.Release(),
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := "warn"
		if *debugLogging {
			level = "debug"
		}
		slog.SetDefault(logger.NewWithWriter(level, cmd.ErrOrStderr()).Logger)
	}

	// Add subcommands
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newAPSCommand())
	cmd.AddCommand(newNSCCommand())
	cmd.AddCommand(newSearchCommand())
	cmd.AddCommand(newCatalogCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// commandLogger returns a logger writing to the command's stderr.
func commandLogger(cmd *cobra.Command) *logger.Logger {
	level := "warn"
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		level = "debug"
	}
	return logger.NewWithWriter(level, cmd.ErrOrStderr()).WithModule("cli")
}
