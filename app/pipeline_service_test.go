package app

import (
	"context"
	"errors"
	"testing"

	"riskhypo/domain/core"
	domainDataset "riskhypo/domain/dataset"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal/dataset"
	"riskhypo/internal/report"
	"riskhypo/internal/testkit"
	"riskhypo/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Save(ctx context.Context, rep *report.Report) error {
	args := m.Called(ctx, rep)
	return args.Error(0)
}

func (m *MockReportRepository) Get(ctx context.Context, runID core.RunID) (*report.Report, error) {
	args := m.Called(ctx, runID)
	if rep := args.Get(0); rep != nil {
		return rep.(*report.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]ports.RunSummary), args.Error(1)
}

type failingReader struct{ err error }

func (f failingReader) Load(context.Context) (*ports.LoadedDataset, error) { return nil, f.err }

func newKitReader(t *testing.T) ports.DatasetReader {
	t.Helper()
	kit := testkit.NewTestKit(t.TempDir(), testkit.DefaultInsuranceConfig())
	path, err := kit.PolicyFile("policies.txt")
	require.NoError(t, err)
	return kit.Reader(path)
}

func TestPipelineService_Prepare(t *testing.T) {
	svc := NewPipelineService(newKitReader(t), nil, nil, DefaultPipelineOptions())

	prepared, err := svc.Prepare(context.Background())
	require.NoError(t, err)

	ds := prepared.Dataset
	assert.Equal(t, 2000, ds.Rows())
	assert.False(t, prepared.Fingerprint.IsEmpty())

	// sparse column is pruned
	assert.Contains(t, prepared.Cleaning.DroppedColumns, "CrossBorder")
	_, ok := ds.Column("CrossBorder")
	assert.False(t, ok)

	// imputed columns have no gaps left
	for _, name := range []string{domainDataset.FieldGender, domainDataset.FieldCustomValueEstimate} {
		col, ok := ds.Column(name)
		require.True(t, ok, name)
		assert.Zero(t, col.MissingCount(), name)
	}

	// dates normalized, the odd unparseable intro date is missing and flagged
	month, _ := ds.Column(domainDataset.FieldTransactionMonth)
	assert.Equal(t, domainDataset.ValueTypeDate, month.Type())
	require.Len(t, prepared.Dates, 2)
	assert.Zero(t, prepared.Dates[0].Failed)
	assert.Positive(t, prepared.Dates[1].Failed)
	_, ok = ds.Column(domainDataset.FieldVehicleIntroDate + domainDataset.MissingFlagSuffix)
	assert.True(t, ok)

	// metrics derived, zero premiums give missing loss ratios
	assert.ElementsMatch(t, []string{
		domainDataset.MetricLossRatio, domainDataset.MetricMargin,
		domainDataset.MetricClaimFrequency, domainDataset.MetricClaimSeverity,
	}, prepared.Metrics.Added)
	lr, ok := ds.Column(domainDataset.MetricLossRatio)
	require.True(t, ok)
	assert.Positive(t, lr.MissingCount())
	assert.Zero(t, dataset.CountInfinities(ds))
}

func TestPipelineService_Run(t *testing.T) {
	repo := new(MockReportRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*report.Report")).Return(nil).Once()

	svc := NewPipelineService(newKitReader(t), repo, nil, DefaultPipelineOptions())
	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Persisted)
	assert.Empty(t, result.Skipped())
	require.Equal(t, 4, result.Report.Len())

	results := result.Report.Results()
	assert.Contains(t, results[0].Group, "Province (")
	assert.Equal(t, hypothesis.KindANOVA, results[0].Kind)
	assert.Equal(t, "Male vs Female", results[3].Group)
	assert.Equal(t, hypothesis.KindWelchT, results[3].Kind)
	for _, r := range results {
		assert.Equal(t, hypothesis.Decide(r.RawPValue), r.Decision)
	}
	for _, ev := range result.Evaluations {
		assert.Equal(t, hypothesis.StatusRecorded, ev.Status)
	}
	assert.Equal(t, result.Fingerprint, result.Report.InputFingerprint)
	repo.AssertExpectations(t)
}

func TestPipelineService_RunParallelMatchesSequential(t *testing.T) {
	reader := newKitReader(t)

	seq, err := NewPipelineService(reader, nil, nil, DefaultPipelineOptions()).Run(context.Background())
	require.NoError(t, err)

	opts := DefaultPipelineOptions()
	opts.Runner.Parallel = true
	par, err := NewPipelineService(reader, nil, nil, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seq.Report.Table(), par.Report.Table())
}

func TestPipelineService_SkipsMissingColumns(t *testing.T) {
	opts := DefaultPipelineOptions()
	opts.Hypotheses = append(opts.Hypotheses, hypothesis.Hypothesis{
		Name: "No risk differences across vehicle colours", Metric: "LossRatio", GroupColumn: "Colour",
	})

	result, err := NewPipelineService(newKitReader(t), nil, nil, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Report.Len())
	skipped := result.Skipped()
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].SkipReason, "Colour")
}

func TestPipelineService_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewPipelineService(failingReader{err: boom}, nil, nil, DefaultPipelineOptions()).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPipelineService_SaveError(t *testing.T) {
	repo := new(MockReportRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	_, err := NewPipelineService(newKitReader(t), repo, nil, DefaultPipelineOptions()).Run(context.Background())
	assert.ErrorContains(t, err, "persisting report")
}

func TestPipelineService_Analyses(t *testing.T) {
	opts := DefaultPipelineOptions()
	opts.AddDateParts = true
	svc := NewPipelineService(newKitReader(t), nil, nil, opts)
	ctx := context.Background()

	profiles, err := svc.Profile(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, dataset.ColumnTransactionQuarter)

	ct, err := svc.Equivalence(ctx, domainDataset.FieldProvince, domainDataset.FieldGender)
	require.NoError(t, err)
	assert.NotEmpty(t, ct.Groups)

	means, err := svc.SegmentMeans(ctx, domainDataset.MetricLossRatio, domainDataset.FieldProvince)
	require.NoError(t, err)
	require.NotEmpty(t, means)
	for i := 1; i < len(means); i++ {
		assert.LessOrEqual(t, means[i-1].Mean, means[i].Mean)
	}

	_, err = svc.SegmentMeans(ctx, domainDataset.MetricLossRatio, "Colour")
	assert.True(t, core.IsColumnNotFound(err))
}
