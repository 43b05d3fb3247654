// Command eligibility evaluates student results against the programme
// catalog and manages the catalog store from the command line.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Command completed
	ExitNoMatch      = 1 // Evaluation ran but nothing qualified (--require-match)
	ExitError        = 2 // Configuration or runtime error
	ExitInvalidInput = 3 // Unreadable or invalid input files
)

// NoMatchError indicates that the evaluation ran successfully but no
// programme qualified.
type NoMatchError struct {
	Evaluated int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no qualifying programme among %d evaluated", e.Evaluated)
}

func main() {
	if err := execute(); err != nil {
		slog.Debug("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", domerrors.GetUserMessage(err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var noMatch *NoMatchError
	if errors.As(err, &noMatch) {
		return ExitNoMatch
	}
	if domerrors.IsInvalidInput(err) {
		return ExitInvalidInput
	}
	return ExitError
}
