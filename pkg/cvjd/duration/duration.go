// Package duration extracts employment spans from a CV's work history.
package duration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
)

// Field is the column holding the serialized work history.
const Field = "jobTracks"

// MaxDays bounds a single span; longer spans are treated as data errors.
const MaxDays = 3650

// earliest is the lowest accepted start month.
var earliest = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

// Span is one accepted job with its length in days
type Span struct {
	Start time.Time
	End   time.Time
	Days  int
}

// Extract decodes raw work history and returns the plausible spans in input
// order. Entries without both dates, starting before 1990-01, ending after
// now, ending on or before their start, or longer than MaxDays are skipped.
// Undecodable history or a bad date fails the whole field.
func Extract(raw string, now time.Time) ([]Span, error) {
	raw = strings.ReplaceAll(raw, "'", "")

	var jobs []map[string]any
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		return nil, &internalerr.MalformedFieldError{Field: Field, Err: err}
	}

	spans := make([]Span, 0, len(jobs))
	for _, job := range jobs {
		startRaw, endRaw := job["startDate"], job["endDate"]
		if empty(startRaw) || empty(endRaw) {
			continue
		}

		start, err := parseMonth(startRaw)
		if err != nil {
			return nil, &internalerr.MalformedFieldError{Field: Field, Err: err}
		}
		end, err := parseMonth(endRaw)
		if err != nil {
			return nil, &internalerr.MalformedFieldError{Field: Field, Err: err}
		}

		if end.After(now) || start.Before(earliest) {
			continue
		}
		if !end.After(start) {
			continue
		}
		days := int(end.Sub(start).Hours() / 24)
		if days > MaxDays {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Days: days})
	}
	return spans, nil
}

// Mean returns the average span length in days; ok is false for no spans.
func Mean(spans []Span) (float64, bool) {
	if len(spans) == 0 {
		return 0, false
	}
	total := 0
	for _, s := range spans {
		total += s.Days
	}
	return float64(total) / float64(len(spans)), true
}

func empty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// parseMonth reads a "YYYY-MM" value as the first day of that month.
func parseMonth(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("date %v is not a string", v)
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM", s)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("date %q out of range", s)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}
