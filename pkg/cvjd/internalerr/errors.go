package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNotFound      = errors.New("not found")

	// ErrEmptyCorpus is returned when every merged document of a group is
	// empty, so no vocabulary can be built.
	ErrEmptyCorpus = errors.New("empty corpus: no terms in any document")
)

// MissingFieldError reports a required column absent from the input table.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// DimensionError reports a target dimension the TF-IDF matrix cannot support.
type DimensionError struct {
	Requested int
	Rows      int
	Cols      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension %d exceeds min(rows=%d, cols=%d)", e.Requested, e.Rows, e.Cols)
}

// Max returns the largest dimension the matrix would have accepted.
func (e *DimensionError) Max() int {
	return min(e.Rows, e.Cols)
}

// MalformedFieldError reports structured field content that could not be
// parsed. It is recovered per record and never aborts a group.
type MalformedFieldError struct {
	Record string
	Field  string
	Err    error
}

func (e *MalformedFieldError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("malformed field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("record %s: malformed field %q: %v", e.Record, e.Field, e.Err)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }
