package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT,
	created_at TEXT NOT NULL,
	groups_json TEXT
);

CREATE TABLE IF NOT EXISTS matrix_rows (
	run_id TEXT NOT NULL,
	grp TEXT NOT NULL,
	pos INTEGER NOT NULL,
	record_id TEXT NOT NULL,
	vec TEXT NOT NULL,
	PRIMARY KEY(run_id, grp, pos),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS scalars (
	run_id TEXT NOT NULL,
	name TEXT NOT NULL,
	pos INTEGER NOT NULL,
	record_id TEXT NOT NULL,
	value REAL,
	PRIMARY KEY(run_id, name, pos),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or updates a run header
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}
	groups, err := json.Marshal(r.Groups)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO runs (id, source, created_at, groups_json)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	created_at=excluded.created_at,
	groups_json=excluded.groups_json;
`
	_, err = s.db.ExecContext(ctx, stmt, r.ID, r.Source, r.CreatedAt.UTC().Format(time.RFC3339Nano), string(groups))
	return err
}

// Runs lists every run, oldest first
func (s *sqliteStore) Runs(ctx context.Context) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, created_at, groups_json FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			r         store.Run
			source    sql.NullString
			createdAt string
			groups    sql.NullString
		)
		if err := rows.Scan(&r.ID, &source, &createdAt, &groups); err != nil {
			return nil, err
		}
		r.Source = source.String
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = ts
		}
		if groups.Valid && groups.String != "" {
			if err := json.Unmarshal([]byte(groups.String), &r.Groups); err != nil {
				return nil, fmt.Errorf("run %s: decode groups: %w", r.ID, err)
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveMatrix replaces the rows stored for (runID, group)
func (s *sqliteStore) SaveMatrix(ctx context.Context, runID, group string, m store.Matrix) error {
	if len(m.IDs) != len(m.Rows) {
		return fmt.Errorf("%w: %d ids for %d rows", internalerr.ErrInvalidInput, len(m.IDs), len(m.Rows))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matrix_rows WHERE run_id=? AND grp=?`, runID, group); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matrix_rows (run_id, grp, pos, record_id, vec) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range m.Rows {
		vec, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, group, i, m.IDs[i], string(vec)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadMatrix returns the rows of (runID, group) in the order they were saved
func (s *sqliteStore) LoadMatrix(ctx context.Context, runID, group string) (store.Matrix, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, vec FROM matrix_rows WHERE run_id=? AND grp=? ORDER BY pos`, runID, group)
	if err != nil {
		return store.Matrix{}, err
	}
	defer rows.Close()

	var m store.Matrix
	for rows.Next() {
		var id, vec string
		if err := rows.Scan(&id, &vec); err != nil {
			return store.Matrix{}, err
		}
		var row []float64
		if err := json.Unmarshal([]byte(vec), &row); err != nil {
			return store.Matrix{}, fmt.Errorf("run %s group %s record %s: %w", runID, group, id, err)
		}
		m.IDs = append(m.IDs, id)
		m.Rows = append(m.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return store.Matrix{}, err
	}
	if len(m.Rows) == 0 {
		return store.Matrix{}, fmt.Errorf("%w: run %s group %s", internalerr.ErrNotFound, runID, group)
	}
	return m, nil
}

// SaveScalars replaces the named scalar column of a run
func (s *sqliteStore) SaveScalars(ctx context.Context, runID, name string, values []store.Scalar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scalars WHERE run_id=? AND name=?`, runID, name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scalars (run_id, name, pos, record_id, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, v := range values {
		value := sql.NullFloat64{Float64: v.Value, Valid: v.Valid}
		if _, err := stmt.ExecContext(ctx, runID, name, i, v.ID, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadScalars returns the named scalar column of a run in row order
func (s *sqliteStore) LoadScalars(ctx context.Context, runID, name string) ([]store.Scalar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record_id, value FROM scalars WHERE run_id=? AND name=? ORDER BY pos`, runID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Scalar
	for rows.Next() {
		var (
			id    string
			value sql.NullFloat64
		)
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		out = append(out, store.Scalar{ID: id, Value: value.Float64, Valid: value.Valid})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: run %s scalars %s", internalerr.ErrNotFound, runID, name)
	}
	return out, nil
}
