package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{
			name:     "ErrNotFound is recognized",
			err:      ErrNotFound,
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Wrapped ErrNotFound is recognized",
			err:      fmt.Errorf("load program: %w", ErrNotFound),
			checkFn:  IsNotFound,
			expected: true,
		},
		{
			name:     "Different error is not ErrNotFound",
			err:      ErrCatalogEmpty,
			checkFn:  IsNotFound,
			expected: false,
		},
		{
			name:     "ErrCatalogEmpty is recognized",
			err:      errors.Join(ErrCatalogEmpty, errors.New("no rows")),
			checkFn:  IsCatalogEmpty,
			expected: true,
		},
		{
			name:     "ValidationError is invalid input",
			err:      NewValidationError("subjects", "must not be empty"),
			checkFn:  IsInvalidInput,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checkFn(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("percentage", "out of range")

	if err.Field != "percentage" {
		t.Errorf("expected field 'percentage', got '%s'", err.Field)
	}

	expected := "validation failed on percentage: out of range"
	if err.Error() != expected {
		t.Errorf("expected error '%s', got '%s'", expected, err.Error())
	}
}

func TestCatalogError(t *testing.T) {
	baseErr := errors.New("yaml: line 3: did not find expected key")
	err := NewCatalogError("catalog.yaml", baseErr)

	if err.Source != "catalog.yaml" {
		t.Errorf("expected source 'catalog.yaml', got '%s'", err.Source)
	}

	if !errors.Is(err, baseErr) {
		t.Error("expected error to wrap base error")
	}

	expected := "catalog error (source=catalog.yaml): yaml: line 3: did not find expected key"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
}
