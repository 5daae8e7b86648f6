package config

import (
	"fmt"

	"github.com/cognicore/cvjd/pkg/cvjd/ingest"
	"github.com/cognicore/cvjd/pkg/cvjd/normalize"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	StoplistPath string
	AliasesPath  string
	Columns      map[string]ColumnConfig

	// Segmenter and Normalizer default to gse and OpenCC when nil.
	Segmenter  ingest.Segmenter
	Normalizer ingest.Normalizer
}

// Components holds all loaded configuration components
type Components struct {
	Normalizer ingest.Normalizer
	Tokenizer  *ingest.Tokenizer
	Filter     *ingest.Filter
	Aliases    *ingest.AliasTable
	Pipeline   *ingest.Pipeline
}

// NewLoader returns a loader for the files and column settings of cfg.
func NewLoader(cfg *Config) *Loader {
	return &Loader{
		StoplistPath: cfg.Stoplist,
		AliasesPath:  cfg.Aliases,
		Columns:      cfg.Columns,
	}
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Normalizer: l.Normalizer}

	if comp.Normalizer == nil {
		norm, err := normalize.New()
		if err != nil {
			return nil, fmt.Errorf("load normalizer: %w", err)
		}
		comp.Normalizer = norm
	}

	seg := l.Segmenter
	if seg == nil {
		gseSeg, err := ingest.NewGSESegmenter()
		if err != nil {
			return nil, err
		}
		seg = gseSeg
	}
	comp.Tokenizer = ingest.NewTokenizer(seg)

	// Load stoplist
	var stopwords []string
	if l.StoplistPath != "" {
		stoplist, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stopwords = stoplist.Terms
	}
	comp.Filter = ingest.NewFilter(comp.Normalizer, stopwords)

	// Load alias dictionary
	var entries []ingest.AliasEntry
	if l.AliasesPath != "" {
		dict, err := LoadDict(l.AliasesPath)
		if err != nil {
			return nil, fmt.Errorf("load aliases: %w", err)
		}
		entries = make([]ingest.AliasEntry, len(dict.Entries))
		for i, e := range dict.Entries {
			entries[i] = ingest.AliasEntry{Canonical: e.Canonical, Variants: e.Variants}
		}
	}
	comp.Aliases = ingest.NewAliasTable(entries, comp.Normalizer)

	comp.Pipeline = ingest.NewPipeline(comp.Tokenizer, comp.Filter)
	comp.Pipeline.SetAliases(comp.Aliases)
	for name, col := range l.Columns {
		comp.Pipeline.SetPolicy(name, col.policy(name))
	}

	return comp, nil
}

func (c ColumnConfig) policy(column string) ingest.ColumnPolicy {
	policy := ingest.ColumnPolicy{Field: ingest.DefaultPolicy(column), StripMarkup: c.StripMarkup}
	if c.Raw != nil {
		if *c.Raw {
			policy.Field = ingest.PolicyRaw
		} else {
			policy.Field = ingest.PolicyStructured
		}
	}
	return policy
}
