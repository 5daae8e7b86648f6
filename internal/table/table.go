// Package table loads the CV/JD record table from CSV or JSONL files.
package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/cvjd/internal/logging"
	"github.com/cognicore/cvjd/pkg/cvjd/ingest"
)

// Load reads a record table, picking the format from the file extension.
// A trailing ".gz" is decompressed first. idColumn names the record id; when
// empty the zero-based row index is used.
func Load(path, idColumn string, log *logrus.Entry) (*ingest.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("read file %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	var t *ingest.Table
	if strings.HasSuffix(name, ".jsonl") {
		t, err = ReadJSONL(r, idColumn, logging.OrDiscard(log))
	} else {
		t, err = ReadCSV(r, idColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads a table with a header row.
func ReadCSV(r io.Reader, idColumn string) (*ingest.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkIDColumn(header, idColumn); err != nil {
		return nil, err
	}

	t := &ingest.Table{Columns: header}
	for row := 0; ; row++ {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(values) {
				fields[col] = values[i]
			}
		}
		t.Records = append(t.Records, ingest.Record{ID: recordID(fields, idColumn, row), Fields: fields})
	}
	return t, nil
}

// ReadJSONL reads one JSON object per line. Malformed lines are logged and
// skipped. Columns are collected in first-seen order.
func ReadJSONL(r io.Reader, idColumn string, log *logrus.Entry) (*ingest.Table, error) {
	t := &ingest.Table{}
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 0; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			log.WithError(err).WithField("line", line+1).Warn("skipping malformed JSON line")
			continue
		}

		fields := make(map[string]string, len(obj))
		for _, col := range sortedKeys(obj) {
			if !seen[col] {
				seen[col] = true
				t.Columns = append(t.Columns, col)
			}
			fields[col] = stringify(obj[col])
		}
		t.Records = append(t.Records, ingest.Record{ID: recordID(fields, idColumn, len(t.Records)), Fields: fields})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(t.Records) == 0 {
		return nil, errors.New("no valid records found")
	}
	if err := checkIDColumn(t.Columns, idColumn); err != nil {
		return nil, err
	}
	return t, nil
}

func checkIDColumn(columns []string, idColumn string) error {
	if idColumn == "" {
		return nil
	}
	t := ingest.Table{Columns: columns}
	return t.Require(idColumn)
}

func recordID(fields map[string]string, idColumn string, row int) string {
	if idColumn != "" {
		return fields[idColumn]
	}
	return strconv.Itoa(row)
}

// stringify renders a JSON value the way it would appear in a CSV cell.
// Nested lists and objects are kept in their JSON form.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
