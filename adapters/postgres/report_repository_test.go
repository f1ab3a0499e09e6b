package postgres

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"riskhypo/domain/core"
	"riskhypo/domain/hypothesis"
	apperrors "riskhypo/internal/errors"
	"riskhypo/internal/report"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*ReportRepositoryImpl, sqlmock.Sqlmock) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "postgres")
	t.Cleanup(func() { db.Close() })
	return &ReportRepositoryImpl{db: db}, mock
}

func sampleReport(runID core.RunID) *report.Report {
	hs := hypothesis.DefaultHypotheses()
	return report.New(runID, "fp", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), []hypothesis.TestResult{
		hypothesis.NewTestResult(hs[0], "Province (3 groups)", 5.1, 0.0012, []string{"a", "b", "c"}, []int{30, 31, 32}),
		hypothesis.NewTestResult(hs[3], "Male vs Female", math.Inf(1), 0, []string{"Male", "Female"}, []int{30, 30}),
	})
}

func TestSave(t *testing.T) {
	repo, mock := newMockRepo(t)
	runID := core.NewRunID()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO analysis_runs").
		WithArgs(runID.String(), "fp", sqlmock.AnyArg(), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM hypothesis_test_results").
		WithArgs(runID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO hypothesis_test_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO hypothesis_test_results").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), sampleReport(runID)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	runID := core.NewRunID()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO analysis_runs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM hypothesis_test_results").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO hypothesis_test_results").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), sampleReport(runID))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	runID := core.NewRunID()
	generated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("FROM analysis_runs WHERE run_id").
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "input_fingerprint", "generated_at", "result_count"}).
			AddRow(runID.String(), "fp", generated, 2))
	mock.ExpectQuery("FROM hypothesis_test_results WHERE run_id").
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{
			"position", "hypothesis", "metric", "group_descriptor", "kind",
			"statistic", "p_value", "raw_p_value", "decision", "interpretation", "groups", "sample_sizes",
		}).
			AddRow(0, "h1", "LossRatio", "Province (3 groups)", "anova", 5.1, 0.0012, 0.00118, "Reject", "i1", []byte(`["a","b","c"]`), []byte(`[30,31,32]`)).
			AddRow(1, "h2", "LossRatio", "Male vs Female", "welch_t", nil, 0.0, 0.0, "Reject", "i2", []byte(`["Male","Female"]`), []byte(`[30,30]`)))

	rep, err := repo.Get(context.Background(), runID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, runID, rep.RunID)
	assert.Equal(t, core.Hash("fp"), rep.InputFingerprint)
	assert.True(t, rep.GeneratedAt.Equal(generated))

	results := rep.Results()
	require.Len(t, results, 2)
	assert.Equal(t, hypothesis.KindANOVA, results[0].Kind)
	assert.Equal(t, []string{"a", "b", "c"}, results[0].Groups)
	assert.Equal(t, []int{30, 31, 32}, results[0].SampleSizes)
	assert.True(t, math.IsNaN(results[1].Statistic))
	assert.Equal(t, hypothesis.DecisionReject, results[1].Decision)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	runID := core.NewRunID()

	mock.ExpectQuery("FROM analysis_runs WHERE run_id").
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "input_fingerprint", "generated_at", "result_count"}))

	_, err := repo.Get(context.Background(), runID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	assert.True(t, core.IsNotFoundError(err))
}

func TestListRuns(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM analysis_runs ORDER BY generated_at DESC").
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "input_fingerprint", "generated_at", "result_count"}).
			AddRow("r2", "fp2", now, 4).
			AddRow("r1", "fp1", now.Add(-time.Hour), 3))

	runs, err := repo.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, runs, 2)
	assert.Equal(t, core.RunID("r2"), runs[0].RunID)
	assert.Equal(t, 3, runs[1].ResultCount)
}
