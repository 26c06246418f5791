package engine

import (
	"errors"
	"fmt"
)

// Common errors returned by the engine package.
var (
	// ErrLoad matches every failure returned by Load.
	ErrLoad = errors.New("load failed")

	// ErrColumnNotFound is returned when an operation names a column the table does not have.
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptyCatalog reports a table without categorical or without numeric columns.
	ErrEmptyCatalog = errors.New("nothing to select")

	// ErrEmptyDomain reports a categorical column with no non-missing values.
	ErrEmptyDomain = errors.New("no values found for category column")

	// ErrNoDateColumn is returned when a table has no column named "date".
	ErrNoDateColumn = errors.New("no date column found")

	// ErrDateFormat is returned when date values match none of the known layouts.
	ErrDateFormat = errors.New("unrecognised date format")

	// ErrUnsupportedFile is returned for export targets with an unknown extension.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// LoadError wraps any failure to turn a file into a Table.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes every LoadError match ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// IsNotice reports whether err says the data cannot be plotted as selected
// (nothing to select, no usable date column) rather than a failure.
func IsNotice(err error) bool {
	return errors.Is(err, ErrEmptyCatalog) || errors.Is(err, ErrEmptyDomain) ||
		errors.Is(err, ErrNoDateColumn) || errors.Is(err, ErrDateFormat)
}

func columnNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}
