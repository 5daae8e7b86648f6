package ingest

import "strings"

// Merge joins column representations with a single space. Blank parts are
// skipped so no doubled or edge separators appear.
func Merge(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, " ")
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}
