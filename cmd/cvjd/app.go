package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/cvjd/internal/logging"
	"github.com/cognicore/cvjd/internal/metrics"
	"github.com/cognicore/cvjd/internal/output"
	"github.com/cognicore/cvjd/internal/table"
	"github.com/cognicore/cvjd/pkg/cvjd/config"
	"github.com/cognicore/cvjd/pkg/cvjd/ingest"
	"github.com/cognicore/cvjd/pkg/cvjd/store"
	"github.com/cognicore/cvjd/pkg/cvjd/store/sqlite"
)

// app carries what every subcommand shares
type app struct {
	flags struct {
		config      string
		input       string
		idColumn    string
		outDir      string
		db          string
		logLevel    string
		metricsFile string
		compress    bool
	}

	// segmenter replaces the gse dictionary when set.
	segmenter ingest.Segmenter

	cfg     *config.Config
	log     *logrus.Entry
	metrics *metrics.Recorder
}

// setup resolves configuration: defaults, then the YAML file, then CVJD_*
// variables, then flags.
func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.flags.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	if a.flags.input != "" {
		cfg.Input.Path = a.flags.input
	}
	if a.flags.idColumn != "" {
		cfg.Input.IDColumn = a.flags.idColumn
	}
	if a.flags.outDir != "" {
		cfg.Output.Dir = a.flags.outDir
	}
	if a.flags.db != "" {
		cfg.Output.Database = a.flags.db
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.metricsFile != "" {
		cfg.Output.MetricsFile = a.flags.metricsFile
	}
	if a.flags.compress {
		cfg.Output.Compress = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, nil)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.metrics = metrics.NewRecorder()
	return nil
}

func (a *app) loadTable(required ...string) (*ingest.Table, error) {
	start := time.Now()
	t, err := table.Load(a.cfg.Input.Path, a.cfg.Input.IDColumn, a.log)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{
		"path":    a.cfg.Input.Path,
		"records": len(t.Records),
		"columns": len(t.Columns),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("loaded records")
	return t, nil
}

func (a *app) loadComponents() (*config.Components, error) {
	loader := config.NewLoader(a.cfg)
	loader.Segmenter = a.segmenter
	comp, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load components: %w", err)
	}
	return comp, nil
}

// openRun opens the feature store and registers a new run. It returns a
// nil store when no database is configured.
func (a *app) openRun(ctx context.Context, groups ...string) (store.Store, string, error) {
	if a.cfg.Output.Database == "" {
		return nil, "", nil
	}

	st, err := sqlite.OpenSQLite(ctx, a.cfg.Output.Database)
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}

	now := time.Now()
	run := store.Run{
		ID:        store.NewRunIDs().Next(now),
		Source:    a.cfg.Input.Path,
		CreatedAt: now,
		Groups:    groups,
	}
	if err := st.SaveRun(ctx, run); err != nil {
		st.Close()
		return nil, "", fmt.Errorf("save run: %w", err)
	}
	a.log.WithField("run_id", run.ID).Info("registered run")
	return st, run.ID, nil
}

// outputPath returns the table path for name inside the output directory.
func (a *app) outputPath(name string) string {
	ext := ".csv"
	if a.cfg.Output.Compress {
		ext += ".gz"
	}
	return filepath.Join(a.cfg.Output.Dir, name+ext)
}

func (a *app) idHeader() string {
	if a.cfg.Input.IDColumn != "" {
		return a.cfg.Input.IDColumn
	}
	return "id"
}

// writeScalars writes the scalar columns to one table and, when a store is
// open, persists each column under its name.
func (a *app) writeScalars(ctx context.Context, st store.Store, runID, name string, ids []string, cols []output.Column) error {
	path := a.outputPath(name)
	if err := output.WriteColumns(path, a.idHeader(), ids, cols); err != nil {
		return err
	}
	a.log.WithField("path", path).Info("wrote table")

	for _, c := range cols {
		missing := 0
		for i := range c.Values {
			c.Values[i].ID = ids[i]
			if !c.Values[i].Valid {
				missing++
			}
		}
		a.metrics.ObserveScalars(c.Name, len(c.Values), missing)

		if st == nil {
			continue
		}
		if err := st.SaveScalars(ctx, runID, c.Name, c.Values); err != nil {
			return fmt.Errorf("store %s: %w", c.Name, err)
		}
	}
	return nil
}

// finish dumps metrics when a textfile is configured.
func (a *app) finish() error {
	if a.cfg.Output.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Output.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func recordIDs(t *ingest.Table) []string {
	ids := make([]string, len(t.Records))
	for i, rec := range t.Records {
		ids[i] = rec.ID
	}
	return ids
}
