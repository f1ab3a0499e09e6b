package app

import (
	"context"
	"fmt"
	"time"

	"riskhypo/domain/core"
	domainDataset "riskhypo/domain/dataset"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal"
	"riskhypo/internal/analysis/equivalence"
	hypothesisRunner "riskhypo/internal/analysis/hypothesis"
	"riskhypo/internal/analysis/partition"
	"riskhypo/internal/dataset"
	"riskhypo/internal/errors"
	"riskhypo/internal/profiling"
	"riskhypo/internal/report"
	"riskhypo/ports"
)

// PipelineOptions configures one pipeline run
type PipelineOptions struct {
	Dates        dataset.DateNormalizerConfig
	Cleaning     dataset.CleanerConfig
	Runner       hypothesisRunner.Options
	AddDateParts bool
	Hypotheses   []hypothesis.Hypothesis
}

// DefaultPipelineOptions runs the default hypotheses sequentially
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Dates:      dataset.DefaultDateNormalizerConfig(),
		Cleaning:   dataset.DefaultCleanerConfig(),
		Hypotheses: hypothesis.DefaultHypotheses(),
	}
}

// PreparedData is the cleaned, metric-augmented dataset plus the stage reports
type PreparedData struct {
	Dataset     *domainDataset.Dataset
	Fingerprint core.Hash
	Source      string
	Dates       []dataset.DateParseReport
	Cleaning    dataset.CleaningReport
	Metrics     dataset.MetricsReport
}

// PipelineResult is everything a completed run produced
type PipelineResult struct {
	PreparedData
	Evaluations []*hypothesis.Evaluation
	Report      *report.Report
	Persisted   bool
}

// Skipped returns the evaluations that did not run
func (r *PipelineResult) Skipped() []*hypothesis.Evaluation {
	var out []*hypothesis.Evaluation
	for _, ev := range r.Evaluations {
		if ev.Skipped {
			out = append(out, ev)
		}
	}
	return out
}

// PipelineService runs load → normalize → clean → derive → test → report
type PipelineService struct {
	reader ports.DatasetReader
	repo   ports.ReportRepository
	logger *internal.Logger
	opts   PipelineOptions
	now    func() time.Time
}

// NewPipelineService creates a pipeline service. repo may be nil, which disables persistence.
func NewPipelineService(reader ports.DatasetReader, repo ports.ReportRepository, logger *internal.Logger, opts PipelineOptions) *PipelineService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.Hypotheses == nil {
		opts.Hypotheses = hypothesis.DefaultHypotheses()
	}
	return &PipelineService{
		reader: reader,
		repo:   repo,
		logger: logger.With("pipeline"),
		opts:   opts,
		now:    time.Now,
	}
}

// Prepare loads the input and runs every data stage up to metric derivation
func (s *PipelineService) Prepare(ctx context.Context) (*PreparedData, error) {
	loaded, err := s.reader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded %d rows x %d columns from %s", loaded.Dataset.Rows(), len(loaded.Dataset.ColumnNames()), loaded.Source)

	normalizer := dataset.NewDateNormalizer(s.opts.Dates, s.logger)
	ds, dateReports := normalizer.Normalize(loaded.Dataset)
	dataset.LogMissingRates(s.logger, dateReports)

	cleaner := dataset.NewCleaner(s.opts.Cleaning, s.logger)
	ds, cleaning := cleaner.Clean(ds)

	ds, metrics := dataset.NewMetricsDeriver(s.logger).Derive(ds)

	if s.opts.AddDateParts {
		withParts, err := dataset.AddDateParts(ds)
		if err != nil {
			return nil, errors.Wrap(err, "adding date parts")
		}
		ds = withParts
	}

	return &PreparedData{
		Dataset:     ds,
		Fingerprint: loaded.Fingerprint,
		Source:      loaded.Source,
		Dates:       dateReports,
		Cleaning:    cleaning,
		Metrics:     metrics,
	}, nil
}

// Run executes the full pipeline and, when a repository is configured, persists the report
func (s *PipelineService) Run(ctx context.Context) (*PipelineResult, error) {
	prepared, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	agg := report.NewAggregator(runID, prepared.Fingerprint)
	runner := hypothesisRunner.NewRunner(agg, s.logger, s.opts.Runner)

	evals, err := runner.Run(ctx, prepared.Dataset, s.opts.Hypotheses)
	if err != nil {
		return nil, fmt.Errorf("hypothesis run failed: %w", err)
	}

	rep := agg.Report()
	rep.GeneratedAt = s.now().UTC()

	result := &PipelineResult{
		PreparedData: *prepared,
		Evaluations:  evals,
		Report:       rep,
	}
	s.logger.Info("run %s: %d results, %d skipped", runID, rep.Len(), len(result.Skipped()))

	if s.repo != nil {
		if err := s.repo.Save(ctx, rep); err != nil {
			return nil, errors.Wrap(err, "persisting report")
		}
		result.Persisted = true
	}
	return result, nil
}

// Profile prepares the data and profiles every column
func (s *PipelineService) Profile(ctx context.Context) ([]profiling.ColumnProfile, error) {
	prepared, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	return profiling.NewDataProfiler(s.logger).ProfileDataset(prepared.Dataset), nil
}

// Equivalence builds the group/feature crosstab on prepared data
func (s *PipelineService) Equivalence(ctx context.Context, groupColumn, feature string) (*equivalence.Crosstab, error) {
	prepared, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	return equivalence.Build(prepared.Dataset, groupColumn, feature)
}

// SegmentMeans computes the per-group mean of a metric on prepared data
func (s *PipelineService) SegmentMeans(ctx context.Context, metric, groupColumn string) ([]partition.SegmentMean, error) {
	prepared, err := s.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	return partition.SegmentMeans(prepared.Dataset, metric, groupColumn)
}
