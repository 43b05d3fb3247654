// Package errors provides domain-specific error types and sentinel errors
// for the service shell around the eligibility engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCatalogEmpty indicates no programme catalog has been loaded yet.
	ErrCatalogEmpty = errors.New("catalog is empty")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCatalogEmpty reports whether err is or wraps ErrCatalogEmpty.
func IsCatalogEmpty(err error) bool {
	return errors.Is(err, ErrCatalogEmpty)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// CatalogError reports a catalog that failed to load, with its source.
type CatalogError struct {
	Source string
	Err    error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog error (source=%s): %v", e.Source, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// NewCatalogError creates a new catalog error.
func NewCatalogError(source string, err error) *CatalogError {
	return &CatalogError{
		Source: source,
		Err:    err,
	}
}
