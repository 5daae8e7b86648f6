package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store persists feature runs: one dense matrix per column group and named
// per-record scalar columns such as parsed salaries.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	Runs(ctx context.Context) ([]Run, error)

	// Matrices
	SaveMatrix(ctx context.Context, runID, group string, m Matrix) error
	LoadMatrix(ctx context.Context, runID, group string) (Matrix, error)

	// Scalars
	SaveScalars(ctx context.Context, runID, name string, values []Scalar) error
	LoadScalars(ctx context.Context, runID, name string) ([]Scalar, error)
}

// Run describes one batch invocation
type Run struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Groups    []string
}

// Matrix is a row-ordered feature matrix; Rows[i] belongs to IDs[i].
type Matrix struct {
	IDs  []string
	Rows [][]float64
}

// Scalar is one per-record value. Valid is false when the record had
// nothing to parse.
type Scalar struct {
	ID    string
	Value float64
	Valid bool
}

// RunIDs hands out lexically sortable run identifiers
type RunIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewRunIDs creates a run id generator
func NewRunIDs() *RunIDs {
	return &RunIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Next returns a new id for a run started at t.
func (g *RunIDs) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}
