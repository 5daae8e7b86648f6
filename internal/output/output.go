// Package output writes feature tables as CSV, gzip-compressed when the
// target path ends in ".gz".
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/cognicore/cvjd/pkg/cvjd/featurize"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

// Column is a named per-record scalar column.
type Column struct {
	Name   string
	Values []store.Scalar
}

// WriteMatrix writes one row per record with headers "0".."d-1" followed by
// idHeader.
func WriteMatrix(path, idHeader string, m *featurize.Matrix) error {
	rows, cols := m.Dims()
	if len(m.IDs) != rows {
		return fmt.Errorf("matrix has %d rows but %d ids", rows, len(m.IDs))
	}

	header := make([]string, 0, cols+1)
	for j := 0; j < cols; j++ {
		header = append(header, strconv.Itoa(j))
	}
	header = append(header, idHeader)

	return write(path, func(w *csv.Writer) error {
		if err := w.Write(header); err != nil {
			return err
		}
		record := make([]string, cols+1)
		for i := 0; i < rows; i++ {
			for j, v := range m.Row(i) {
				record[j] = formatFloat(v)
			}
			record[cols] = m.IDs[i]
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteColumns writes idHeader followed by each scalar column. Invalid
// values are written as empty cells.
func WriteColumns(path, idHeader string, ids []string, columns []Column) error {
	for _, c := range columns {
		if len(c.Values) != len(ids) {
			return fmt.Errorf("column %s has %d values for %d ids", c.Name, len(c.Values), len(ids))
		}
	}

	header := []string{idHeader}
	for _, c := range columns {
		header = append(header, c.Name)
	}

	return write(path, func(w *csv.Writer) error {
		if err := w.Write(header); err != nil {
			return err
		}
		record := make([]string, len(columns)+1)
		for i, id := range ids {
			record[0] = id
			for j, c := range columns {
				record[j+1] = ""
				if v := c.Values[i]; v.Valid {
					record[j+1] = formatFloat(v.Value)
				}
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// StoreMatrix converts a feature matrix to the row layout of the store.
func StoreMatrix(m *featurize.Matrix) store.Matrix {
	rows, _ := m.Dims()
	out := store.Matrix{IDs: append([]string(nil), m.IDs...), Rows: make([][]float64, rows)}
	for i := 0; i < rows; i++ {
		out.Rows[i] = m.Row(i)
	}
	return out
}

func write(path string, fill func(w *csv.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var dst io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer func() {
			if cerr := gz.Close(); err == nil {
				err = cerr
			}
		}()
		dst = gz
	}

	w := csv.NewWriter(dst)
	if err := fill(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
