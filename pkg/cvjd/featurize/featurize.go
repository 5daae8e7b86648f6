// Package featurize turns column groups of a CV/JD table into dense
// TF-IDF+PCA feature matrices.
//
// Every group is an independent batch: tokens are produced per record, then
// one vocabulary and one projection are fit over the whole group and
// discarded once its matrix is built. A fatal error in any stage returns no
// matrix at all for that group.
package featurize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cvjd/internal/logging"
	"github.com/cognicore/cvjd/pkg/cvjd/ingest"
	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
	"github.com/cognicore/cvjd/pkg/cvjd/pca"
	"github.com/cognicore/cvjd/pkg/cvjd/tfidf"
)

// Group names the columns merged into one feature matrix and its width.
type Group struct {
	Name      string
	Columns   []string
	Dimension int
}

// Validate checks a group definition before any work is done.
func (g Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: group name is required", internalerr.ErrInvalidConfig)
	}
	if len(g.Columns) == 0 {
		return fmt.Errorf("%w: group %s has no columns", internalerr.ErrInvalidConfig, g.Name)
	}
	if g.Dimension <= 0 {
		return fmt.Errorf("%w: group %s dimension must be positive, got %d", internalerr.ErrInvalidConfig, g.Name, g.Dimension)
	}
	return nil
}

// Matrix is a dense feature matrix; row i belongs to IDs[i].
type Matrix struct {
	IDs  []string
	Data *mat.Dense
}

// Dims returns the row and column counts.
func (m *Matrix) Dims() (int, int) {
	return m.Data.Dims()
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	_, c := m.Data.Dims()
	return mat.Row(make([]float64, c), i, m.Data)
}

// Result is the output of one group run with its fit diagnostics.
type Result struct {
	Group                  Group
	Features               *Matrix
	VocabularySize         int
	ExplainedVarianceRatio []float64
	Malformed              int
	Elapsed                time.Duration
}

// Observer receives every finished group run.
type Observer interface {
	ObserveRun(r *Result)
}

// Featurizer runs column groups through the text pipeline.
type Featurizer struct {
	pipeline    *ingest.Pipeline
	log         *logrus.Entry
	observer    Observer
	parallelism int
}

// New creates a Featurizer. log may be nil.
func New(pipeline *ingest.Pipeline, log *logrus.Entry) *Featurizer {
	return &Featurizer{
		pipeline:    pipeline,
		log:         logging.OrDiscard(log),
		parallelism: 1,
	}
}

// SetObserver registers a hook called after each successful group run.
func (f *Featurizer) SetObserver(o Observer) {
	f.observer = o
}

// SetParallelism bounds how many groups RunAll fits at once.
func (f *Featurizer) SetParallelism(n int) {
	if n < 1 {
		n = 1
	}
	f.parallelism = n
}

// Documents runs the per-record stages and returns one merged document per
// record, in table order, plus the number of recovered malformed fields.
func (f *Featurizer) Documents(table *ingest.Table, group Group) ([]ingest.ProcessedDoc, int, error) {
	if err := table.Require(group.Columns...); err != nil {
		return nil, 0, err
	}

	records := ingest.FillMissing(table.Records, group.Columns)
	docs := f.pipeline.ProcessAll(records, group.Columns)

	malformed := 0
	for _, doc := range docs {
		for _, m := range doc.Malformed {
			malformed++
			f.log.WithFields(logrus.Fields{
				"group":  group.Name,
				"record": m.Record,
				"field":  m.Field,
			}).WithError(m.Err).Warn("malformed field treated as empty")
		}
	}
	return docs, malformed, nil
}

// Run builds the feature matrix of one group.
func (f *Featurizer) Run(ctx context.Context, table *ingest.Table, group Group) (*Result, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := f.log.WithField("group", group.Name)

	docs, malformed, err := f.Documents(table, group)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", group.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	merged := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		merged[i] = doc.Merged
	}

	weights, model, err := tfidf.FitTransform(merged)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", group.Name, err)
	}
	log.WithFields(logrus.Fields{
		"records":    len(merged),
		"vocabulary": len(model.Vocabulary),
	}).Debug("tf-idf fitted")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reduced, proj, err := pca.FitTransform(weights, group.Dimension)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", group.Name, err)
	}

	result := &Result{
		Group:                  group,
		Features:               &Matrix{IDs: ids, Data: reduced},
		VocabularySize:         len(model.Vocabulary),
		ExplainedVarianceRatio: proj.ExplainedVarianceRatio,
		Malformed:              malformed,
		Elapsed:                time.Since(start),
	}
	log.WithFields(logrus.Fields{
		"records":    len(ids),
		"vocabulary": result.VocabularySize,
		"dimension":  group.Dimension,
		"variance":   proj.TotalExplainedVarianceRatio(),
		"malformed":  malformed,
		"elapsed":    result.Elapsed,
	}).Info("group featurized")

	if f.observer != nil {
		f.observer.ObserveRun(result)
	}
	return result, nil
}

// RunAll runs every group with independent fits. Results follow the order of
// groups. The first failing group cancels the rest and its error is returned.
func (f *Featurizer) RunAll(ctx context.Context, table *ingest.Table, groups []Group) ([]*Result, error) {
	results := make([]*Result, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			res, err := f.Run(gctx, table, group)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
