// Package normalize canonicalizes script and case of CV/JD text.
//
// Traditional Chinese characters are converted to Simplified, then the text
// is lower-cased. Both steps are deterministic and idempotent, so normalizing
// an already-canonical string returns it unchanged.
package normalize

import (
	"fmt"
	"strings"

	"github.com/longbridgeapp/opencc"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Converter maps text from one Chinese script variant to another.
type Converter interface {
	Convert(in string) (string, error)
}

// Normalizer converts text to Simplified script and lower case.
type Normalizer struct {
	t2s Converter
}

// New loads the Traditional→Simplified conversion tables.
func New() (*Normalizer, error) {
	conv, err := opencc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("load t2s tables: %w", err)
	}
	return &Normalizer{t2s: conv}, nil
}

// NewWithConverter builds a Normalizer around a custom script converter.
// A nil converter leaves the script untouched and only folds case.
func NewWithConverter(conv Converter) *Normalizer {
	return &Normalizer{t2s: conv}
}

// Normalize returns the canonical form of s.
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return s
	}
	if n.t2s != nil {
		if out, err := n.t2s.Convert(s); err == nil {
			s = out
		}
	}
	// Casers keep state between calls, so one is built per call.
	return cases.Lower(language.Und).String(s)
}

// StripMarkup returns the text content of an HTML fragment. Input that does
// not parse is returned unchanged.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}
