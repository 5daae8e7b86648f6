// Package tfidf builds term-frequency × inverse-document-frequency matrices
// over whitespace-delimited documents.
//
// Fitting produces an immutable Model; the same Model transforms any batch
// of documents into rows over its vocabulary. Weights follow the smoothed
// convention idf = ln((1+n)/(1+df)) + 1 with raw term counts and
// L2-normalized rows.
package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
)

// Model is a fitted vocabulary with its IDF weights.
type Model struct {
	// Vocabulary is sorted, so column j always holds the same term for
	// identical input.
	Vocabulary []string
	IDF        []float64
	Documents  int

	index map[string]int
}

// Fit learns the vocabulary and IDF weights of a corpus.
func Fit(docs []string) (*Model, error) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range Terms(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, internalerr.ErrEmptyCorpus
	}

	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return &Model{
		Vocabulary: vocab,
		IDF:        idf,
		Documents:  len(docs),
		index:      index,
	}, nil
}

// Index returns the column of a term.
func (m *Model) Index(term string) (int, bool) {
	i, ok := m.index[term]
	return i, ok
}

// Transform weights each document against the fitted vocabulary. Terms
// outside the vocabulary are ignored; a document with none is a zero row.
func (m *Model) Transform(docs []string) *mat.Dense {
	if len(docs) == 0 {
		return &mat.Dense{}
	}

	out := mat.NewDense(len(docs), len(m.Vocabulary), nil)
	row := make([]float64, len(m.Vocabulary))
	for i, doc := range docs {
		for j := range row {
			row[j] = 0
		}
		for _, term := range Terms(doc) {
			if j, ok := m.index[term]; ok {
				row[j]++
			}
		}

		// Summed in column order so identical input gives identical bits.
		var norm float64
		for j, c := range row {
			if c == 0 {
				continue
			}
			row[j] = c * m.IDF[j]
			norm += row[j] * row[j]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for j := range row {
			row[j] /= norm
		}
		out.SetRow(i, row)
	}
	return out
}

// FitTransform fits a Model on docs and returns their weight matrix.
func FitTransform(docs []string) (*mat.Dense, *Model, error) {
	m, err := Fit(docs)
	if err != nil {
		return nil, nil, err
	}
	return m.Transform(docs), m, nil
}

// Terms splits a document on whitespace, dropping single-character terms.
func Terms(doc string) []string {
	fields := strings.Fields(doc)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
