package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-ego/gse"
)

// Segmenter splits mixed Chinese/Latin text into word-level segments.
type Segmenter interface {
	Segment(text string) []string
}

// gseSegmenter adapts gse's jieba-compatible precise mode.
type gseSegmenter struct {
	seg gse.Segmenter
}

// NewGSESegmenter loads the dictionary compiled into gse, so nothing is read
// from disk. Loading is slow, so a single segmenter should be shared; it is
// read-only once loaded.
func NewGSESegmenter() (Segmenter, error) {
	g := &gseSegmenter{}
	g.seg.SkipLog = true
	if err := g.seg.LoadDictEmbed(); err != nil {
		return nil, fmt.Errorf("load segmenter dictionary: %w", err)
	}
	return g, nil
}

func (g *gseSegmenter) Segment(text string) []string {
	return g.seg.Cut(text, true)
}

// FieldPolicy decides how a column's raw value is prepared for segmentation.
type FieldPolicy int

const (
	// PolicyStructured collapses list-like values before segmentation.
	PolicyStructured FieldPolicy = iota
	// PolicyRaw segments the serialized value as-is. Work-history columns use
	// it because their serialized object lists are often not valid JSON.
	PolicyRaw
)

// DefaultPolicy returns the policy used for a column with no explicit setting.
func DefaultPolicy(column string) FieldPolicy {
	if strings.HasSuffix(column, "Tracks") {
		return PolicyRaw
	}
	return PolicyStructured
}

// Tokenizer segments field values into ordered token sequences
type Tokenizer struct {
	seg Segmenter
}

// NewTokenizer creates a tokenizer over the given segmenter
func NewTokenizer(seg Segmenter) *Tokenizer {
	return &Tokenizer{seg: seg}
}

// Tokenize splits a field value into tokens according to policy.
// The only error is a list-like value that fails to decode.
func (t *Tokenizer) Tokenize(text string, policy FieldPolicy) ([]string, error) {
	if policy == PolicyStructured {
		collapsed, err := Collapse(text)
		if err != nil {
			return nil, err
		}
		text = collapsed
	}
	if text == "" {
		return []string{}, nil
	}
	return t.seg.Segment(text), nil
}

// Collapse turns a list-like field into a whitespace-joined string.
// "[...]" values are decoded as a JSON array of strings; anything else is
// split on comma, full-width comma, slash and space.
func Collapse(text string) (string, error) {
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return "", fmt.Errorf("decode list: %w", err)
		}
		return strings.Join(items, " "), nil
	}

	parts := strings.FieldsFunc(text, isListDelimiter)
	return strings.Join(parts, " "), nil
}

func isListDelimiter(r rune) bool {
	switch r {
	case ',', '，', '/', ' ':
		return true
	}
	return false
}
