package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"riskhypo/domain/core"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal/errors"
	"riskhypo/internal/report"
	"riskhypo/ports"

	"github.com/jmoiron/sqlx"
)

// ReportRepositoryImpl implements ReportRepository for PostgreSQL
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

type runRow struct {
	RunID            string    `db:"run_id"`
	InputFingerprint string    `db:"input_fingerprint"`
	GeneratedAt      time.Time `db:"generated_at"`
	ResultCount      int       `db:"result_count"`
}

type resultRow struct {
	Position        int             `db:"position"`
	Hypothesis      string          `db:"hypothesis"`
	Metric          string          `db:"metric"`
	GroupDescriptor string          `db:"group_descriptor"`
	Kind            string          `db:"kind"`
	Statistic       sql.NullFloat64 `db:"statistic"`
	PValue          sql.NullFloat64 `db:"p_value"`
	RawPValue       sql.NullFloat64 `db:"raw_p_value"`
	Decision        string          `db:"decision"`
	Interpretation  string          `db:"interpretation"`
	Groups          []byte          `db:"groups"`
	SampleSizes     []byte          `db:"sample_sizes"`
}

// nullable stores non-finite values as NULL
func nullable(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func fromNullable(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

// Save writes a report and its results in one transaction. Saving the same
// run twice replaces the stored results.
func (r *ReportRepositoryImpl) Save(ctx context.Context, rep *report.Report) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	results := rep.Results()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, input_fingerprint, generated_at, result_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE SET
			input_fingerprint = EXCLUDED.input_fingerprint,
			generated_at = EXCLUDED.generated_at,
			result_count = EXCLUDED.result_count`,
		rep.RunID.String(), rep.InputFingerprint.String(), rep.GeneratedAt, len(results))
	if err != nil {
		return errors.DatabaseError("failed to save run", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM hypothesis_test_results WHERE run_id = $1`, rep.RunID.String()); err != nil {
		return errors.DatabaseError("failed to clear previous results", err)
	}

	for i, res := range results {
		groupsJSON, _ := json.Marshal(res.Groups)
		sizesJSON, _ := json.Marshal(res.SampleSizes)

		_, err := tx.ExecContext(ctx, `
			INSERT INTO hypothesis_test_results (
				run_id, position, hypothesis, metric, group_descriptor, kind,
				statistic, p_value, raw_p_value, decision, interpretation, groups, sample_sizes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			rep.RunID.String(), i, res.Hypothesis, res.Metric, res.Group, string(res.Kind),
			nullable(res.Statistic), nullable(res.PValue), nullable(res.RawPValue),
			string(res.Decision), res.Interpretation, groupsJSON, sizesJSON)
		if err != nil {
			return errors.DatabaseError("failed to save test result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit report", err)
	}
	return nil
}

// Get loads a stored report with its results in execution order
func (r *ReportRepositoryImpl) Get(ctx context.Context, runID core.RunID) (*report.Report, error) {
	var run runRow
	err := r.db.GetContext(ctx, &run, `
		SELECT run_id, input_fingerprint, generated_at, result_count
		FROM analysis_runs WHERE run_id = $1`, runID.String())
	if err == sql.ErrNoRows {
		return nil, errors.WithCode(errors.CodeNotFound, core.ErrRunNotFound)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get run", err)
	}

	var rows []resultRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT position, hypothesis, metric, group_descriptor, kind,
			statistic, p_value, raw_p_value, decision, interpretation, groups, sample_sizes
		FROM hypothesis_test_results WHERE run_id = $1 ORDER BY position`, runID.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to get test results", err)
	}

	results := make([]hypothesis.TestResult, 0, len(rows))
	for _, row := range rows {
		res := hypothesis.TestResult{
			Hypothesis:     row.Hypothesis,
			Metric:         row.Metric,
			Group:          row.GroupDescriptor,
			Kind:           hypothesis.TestKind(row.Kind),
			Statistic:      fromNullable(row.Statistic),
			PValue:         fromNullable(row.PValue),
			RawPValue:      fromNullable(row.RawPValue),
			Decision:       hypothesis.Decision(row.Decision),
			Interpretation: row.Interpretation,
		}
		if len(row.Groups) > 0 {
			_ = json.Unmarshal(row.Groups, &res.Groups)
		}
		if len(row.SampleSizes) > 0 {
			_ = json.Unmarshal(row.SampleSizes, &res.SampleSizes)
		}
		results = append(results, res)
	}

	return report.New(core.RunID(run.RunID), core.Hash(run.InputFingerprint), run.GeneratedAt, results), nil
}

// ListRuns returns the most recent runs first
func (r *ReportRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT run_id, input_fingerprint, generated_at, result_count
		FROM analysis_runs ORDER BY generated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	out := make([]ports.RunSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.RunSummary{
			RunID:            core.RunID(row.RunID),
			InputFingerprint: core.Hash(row.InputFingerprint),
			GeneratedAt:      row.GeneratedAt,
			ResultCount:      row.ResultCount,
		})
	}
	return out, nil
}
