package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrRunNotFound    = fmt.Errorf("%w: run", ErrNotFound)

	// Data errors
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrRowCountMismatch  = errors.New("column row count does not match dataset")
	ErrDuplicateColumn   = errors.New("duplicate column name")
	ErrNotNumeric        = errors.New("column is not numeric")
	ErrInvalidTransition = errors.New("invalid hypothesis state transition")
)

// NewColumnNotFoundError reports a column the caller asked for that the dataset lacks
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// NewRowCountError reports a column whose length disagrees with the dataset
func NewRowCountError(column string, got, want int) error {
	return fmt.Errorf("%w: %s has %d rows, dataset has %d", ErrRowCountMismatch, column, got, want)
}

// NewInsufficientDataError reports a test that could not run
func NewInsufficientDataError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsColumnNotFound(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
