package ingest

import (
	"errors"
	"strings"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
)

// Record is one row of the CV/JD table
type Record struct {
	ID     string
	Fields map[string]string
}

// Field returns the raw value of a column. Missing values read as "".
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// Validate checks if the record has required fields
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("record ID is required")
	}
	return nil
}

// Table is a materialized set of records sharing one column layout.
type Table struct {
	Columns []string
	Records []Record
}

// HasColumn reports whether the table header carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Require returns a MissingFieldError for the first absent column.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &internalerr.MissingFieldError{Field: c}
		}
	}
	return nil
}

// FillMissing returns a copy of the records where every listed column is
// present, using "" for absent values. Input records are not modified.
func FillMissing(records []Record, columns []string) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		fields := make(map[string]string, len(rec.Fields)+len(columns))
		for k, v := range rec.Fields {
			fields[k] = v
		}
		for _, c := range columns {
			if _, ok := fields[c]; !ok {
				fields[c] = ""
			}
		}
		out[i] = Record{ID: rec.ID, Fields: fields}
	}
	return out
}
