package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	runs     map[string]store.Run
	matrices map[string]store.Matrix
	scalars  map[string][]store.Scalar
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:     make(map[string]store.Run),
		matrices: make(map[string]store.Matrix),
		scalars:  make(map[string][]store.Scalar),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun inserts or updates a run header.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Groups = append([]string(nil), r.Groups...)
	s.runs[r.ID] = r
	return nil
}

// Runs lists every run ordered by id.
func (s *Store) Runs(ctx context.Context) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		r.Groups = append([]string(nil), r.Groups...)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveMatrix replaces the matrix stored for (runID, group).
func (s *Store) SaveMatrix(ctx context.Context, runID, group string, m store.Matrix) error {
	if len(m.IDs) != len(m.Rows) {
		return fmt.Errorf("%w: %d ids for %d rows", internalerr.ErrInvalidInput, len(m.IDs), len(m.Rows))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, runID)
	}
	s.matrices[key(runID, group)] = copyMatrix(m)
	return nil
}

// LoadMatrix returns a copy of the matrix stored for (runID, group).
func (s *Store) LoadMatrix(ctx context.Context, runID, group string) (store.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matrices[key(runID, group)]
	if !ok || len(m.Rows) == 0 {
		return store.Matrix{}, fmt.Errorf("%w: run %s group %s", internalerr.ErrNotFound, runID, group)
	}
	return copyMatrix(m), nil
}

// SaveScalars replaces the named scalar column of a run.
func (s *Store) SaveScalars(ctx context.Context, runID, name string, values []store.Scalar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("%w: run %s", internalerr.ErrNotFound, runID)
	}
	s.scalars[key(runID, name)] = append([]store.Scalar(nil), values...)
	return nil
}

// LoadScalars returns the named scalar column of a run.
func (s *Store) LoadScalars(ctx context.Context, runID, name string) ([]store.Scalar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.scalars[key(runID, name)]
	if !ok || len(values) == 0 {
		return nil, fmt.Errorf("%w: run %s scalars %s", internalerr.ErrNotFound, runID, name)
	}
	return append([]store.Scalar(nil), values...), nil
}

func key(runID, name string) string {
	return runID + "\x00" + name
}

func copyMatrix(m store.Matrix) store.Matrix {
	out := store.Matrix{
		IDs:  append([]string(nil), m.IDs...),
		Rows: make([][]float64, len(m.Rows)),
	}
	for i, row := range m.Rows {
		out.Rows[i] = append([]float64(nil), row...)
	}
	return out
}
