package errors

import (
	"errors"
	"fmt"
)

// Wrapper tags errors from one step of a command or request with where they
// happened and what the caller should be told.
type Wrapper struct {
	module    string
	operation string
}

// NewWrapper creates a wrapper for operation within module.
func NewWrapper(module, operation string) *Wrapper {
	return &Wrapper{module: module, operation: operation}
}

// Wrap attaches userMessage to err. Returns nil if err is nil.
func (w *Wrapper) Wrap(err error, userMessage string) error {
	return w.wrap(err, userMessage, false)
}

// Wrapf is Wrap with a formatted message.
func (w *Wrapper) Wrapf(err error, format string, args ...any) error {
	return w.wrap(err, fmt.Sprintf(format, args...), false)
}

// Input is Wrap for failures caused by what the caller supplied: a subjects
// file that does not parse, a catalog that does not validate. The result
// matches ErrInvalidInput.
func (w *Wrapper) Input(err error, userMessage string) error {
	return w.wrap(err, userMessage, true)
}

// Inputf is Input with a formatted message.
func (w *Wrapper) Inputf(err error, format string, args ...any) error {
	return w.wrap(err, fmt.Sprintf(format, args...), true)
}

func (w *Wrapper) wrap(err error, userMessage string, input bool) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Module:      w.module,
		Operation:   w.operation,
		Cause:       err,
		UserMessage: userMessage,
		Input:       input,
	}
}

// WrappedError carries the internal cause and the user-facing message.
type WrappedError struct {
	Module      string // e.g. "cli", "api"
	Operation   string // e.g. "import", "evaluate"
	Cause       error
	UserMessage string
	Input       bool // caused by caller input
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Module, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// Is reports input errors as ErrInvalidInput.
func (e *WrappedError) Is(target error) bool {
	return e.Input && target == ErrInvalidInput
}

// GetUserMessage returns the outermost user message in err's chain, or the
// error string when there is none. A ValidationError further down the chain
// is appended so the caller learns which field was rejected.
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var wrapped *WrappedError
	if !errors.As(err, &wrapped) {
		return err.Error()
	}
	var invalid *ValidationError
	if errors.As(wrapped.Cause, &invalid) {
		return fmt.Sprintf("%s: %s %s", wrapped.UserMessage, invalid.Field, invalid.Message)
	}
	return wrapped.UserMessage
}
