// Package overlap counts the distinct words a CV shares with a job
// description.
package overlap

import (
	"github.com/cognicore/cvjd/pkg/cvjd/ingest"
)

var (
	// CVColumns are merged into the candidate side.
	CVColumns = []string{"currentPosition", "desiredPosition", "skills"}
	// JDColumns are merged into the job side.
	JDColumns = []string{"title", "category_name", "tags"}
)

// Count returns the size of the set intersection of the two token lists.
func Count(cvTokens, jdTokens []string) int {
	seen := make(map[string]struct{}, len(cvTokens))
	for _, tok := range cvTokens {
		seen[tok] = struct{}{}
	}

	shared := 0
	for _, tok := range jdTokens {
		if _, ok := seen[tok]; ok {
			shared++
			delete(seen, tok)
		}
	}
	return shared
}

// Counter computes overlaps for paired CV/JD records
type Counter struct {
	tokenizer *ingest.Tokenizer
	filter    *ingest.Filter

	CV []string
	JD []string
}

// NewCounter creates a counter over the default CV and JD columns
func NewCounter(tokenizer *ingest.Tokenizer, filter *ingest.Filter) *Counter {
	return &Counter{tokenizer: tokenizer, filter: filter, CV: CVColumns, JD: JDColumns}
}

// Tokens merges the raw column values and segments the merged text as-is.
// List-like values are not decoded here, so brackets and quotes reach the
// filter and drop out with the tokens that carry them.
func (c *Counter) Tokens(rec ingest.Record, columns []string) []string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = rec.Field(col)
	}
	// Raw tokenizing never fails.
	raw, _ := c.tokenizer.Tokenize(ingest.Merge(parts...), ingest.PolicyRaw)
	return c.filter.Apply(raw)
}

// Compute returns the overlap count of one record.
func (c *Counter) Compute(rec ingest.Record) int {
	return Count(c.Tokens(rec, c.CV), c.Tokens(rec, c.JD))
}

// ComputeAll maps Compute over records, preserving their order.
func (c *Counter) ComputeAll(records []ingest.Record) []int {
	out := make([]int, len(records))
	for i, rec := range records {
		out[i] = c.Compute(rec)
	}
	return out
}
