package migration

import (
	"context"

	"riskhypo/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every statement
// is idempotent, so Run can be called on each start.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAnalysisRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}

	if err := r.createTestResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create hypothesis_test_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createAnalysisRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id UUID PRIMARY KEY,
			input_fingerprint TEXT NOT NULL DEFAULT '',
			generated_at TIMESTAMPTZ NOT NULL,
			result_count INTEGER NOT NULL DEFAULT 0
		)`)
	return err
}

func (r *MigrationRunner) createTestResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS hypothesis_test_results (
			run_id UUID NOT NULL REFERENCES analysis_runs(run_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			hypothesis TEXT NOT NULL,
			metric TEXT NOT NULL,
			group_descriptor TEXT NOT NULL,
			kind TEXT NOT NULL,
			statistic DOUBLE PRECISION,
			p_value DOUBLE PRECISION,
			raw_p_value DOUBLE PRECISION,
			decision TEXT NOT NULL,
			interpretation TEXT NOT NULL,
			groups JSONB NOT NULL DEFAULT '[]',
			sample_sizes JSONB NOT NULL DEFAULT '[]',
			PRIMARY KEY (run_id, position)
		)`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_generated_at ON analysis_runs(generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_test_results_hypothesis ON hypothesis_test_results(hypothesis)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
