package ingest

import (
	"errors"
	"strings"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
	"github.com/cognicore/cvjd/pkg/cvjd/normalize"
)

// ColumnPolicy controls how one column is prepared before tokenizing.
type ColumnPolicy struct {
	Field       FieldPolicy
	StripMarkup bool
}

// Pipeline orchestrates the per-record text flow:
// raw field → (markup strip) → tokenization → filtering → aliases → merge
type Pipeline struct {
	tokenizer *Tokenizer
	filter    *Filter
	aliases   *AliasTable
	policies  map[string]ColumnPolicy
}

// NewPipeline creates an ingestion pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, filter *Filter) *Pipeline {
	return &Pipeline{
		tokenizer: tokenizer,
		filter:    filter,
		policies:  make(map[string]ColumnPolicy),
	}
}

// SetAliases installs a synonym table applied after filtering. Entries
// whose canonical term the filter rejects are left out.
func (p *Pipeline) SetAliases(aliases *AliasTable) {
	p.aliases = aliases.Restrict(p.filter)
}

// SetPolicy overrides the default policy of a column.
func (p *Pipeline) SetPolicy(column string, policy ColumnPolicy) {
	p.policies[column] = policy
}

// PolicyFor returns the explicit policy of a column, or its default.
func (p *Pipeline) PolicyFor(column string) ColumnPolicy {
	if policy, ok := p.policies[column]; ok {
		return policy
	}
	return ColumnPolicy{Field: DefaultPolicy(column)}
}

// ProcessedDoc is a record after tokenizing and merging one column group
type ProcessedDoc struct {
	ID        string
	Columns   map[string][]string
	Merged    string
	Malformed []*internalerr.MalformedFieldError
}

// Tokens runs a single field value through tokenizing, filtering and aliases.
func (p *Pipeline) Tokens(column, value string) ([]string, error) {
	policy := p.PolicyFor(column)
	if policy.StripMarkup {
		value = normalize.StripMarkup(value)
	}

	raw, err := p.tokenizer.Tokenize(value, policy.Field)
	if err != nil {
		return nil, &internalerr.MalformedFieldError{Field: column, Err: err}
	}
	return p.aliases.Apply(p.filter.Apply(raw)), nil
}

// Process tokenizes every column of a record and merges the results.
// A malformed column degrades to an empty token sequence and is reported
// in Malformed instead of failing the record.
func (p *Pipeline) Process(rec Record, columns []string) ProcessedDoc {
	doc := ProcessedDoc{
		ID:      rec.ID,
		Columns: make(map[string][]string, len(columns)),
	}

	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		tokens, err := p.Tokens(col, rec.Field(col))
		if err != nil {
			var malformed *internalerr.MalformedFieldError
			if !errors.As(err, &malformed) {
				malformed = &internalerr.MalformedFieldError{Field: col, Err: err}
			}
			malformed.Record = rec.ID
			doc.Malformed = append(doc.Malformed, malformed)
			tokens = []string{}
		}
		doc.Columns[col] = tokens
		parts = append(parts, strings.Join(tokens, " "))
	}
	doc.Merged = Merge(parts...)

	return doc
}

// ProcessAll maps Process over records, preserving their order.
func (p *Pipeline) ProcessAll(records []Record, columns []string) []ProcessedDoc {
	docs := make([]ProcessedDoc, len(records))
	for i, rec := range records {
		docs[i] = p.Process(rec, columns)
	}
	return docs
}
