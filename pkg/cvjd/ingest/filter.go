package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctuation lists the marks that disqualify a token, ASCII first, then
// their CJK counterparts.
var punctuation = []string{
	",", ".", "/", "[", "]", "{", "}", "(", ")", ":", "*", "#", "!", " ", "\"", "\\",
	"，", "。", "、", "（", "）", "：", "！", "”", "“",
}

// Normalizer canonicalizes a single token before it is checked.
type Normalizer interface {
	Normalize(s string) string
}

// Filter drops noise tokens: pure digits, single characters and anything
// carrying punctuation. Stopwords are optional and empty by default.
type Filter struct {
	norm      Normalizer
	stopwords map[string]struct{}
}

// NewFilter creates a token filter. norm may be nil to skip normalization.
func NewFilter(norm Normalizer, stopwords []string) *Filter {
	f := &Filter{norm: norm, stopwords: make(map[string]struct{}, len(stopwords))}
	for _, w := range stopwords {
		f.stopwords[f.normalize(w)] = struct{}{}
	}
	return f
}

// Apply returns the normalized tokens that pass every check, in input order.
func (f *Filter) Apply(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if word, ok := f.Keep(tok); ok {
			out = append(out, word)
		}
	}
	return out
}

// Keep normalizes a single token and reports whether it survives filtering.
func (f *Filter) Keep(token string) (string, bool) {
	word := f.normalize(token)

	if isNumericOnly(word) {
		return "", false
	}
	if utf8.RuneCountInString(word) <= 1 {
		return "", false
	}
	if hasPunctuation(word) {
		return "", false
	}
	if _, stop := f.stopwords[word]; stop {
		return "", false
	}
	return word, true
}

// StopwordCount returns the number of configured stopwords
func (f *Filter) StopwordCount() int {
	return len(f.stopwords)
}

func (f *Filter) normalize(s string) string {
	if f.norm == nil {
		return s
	}
	return f.norm.Normalize(s)
}

// isNumericOnly returns true for a non-empty token made only of digits.
func isNumericOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasPunctuation(s string) bool {
	for _, p := range punctuation {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
