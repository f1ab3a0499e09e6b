package hypothesis

import (
	"context"
	"fmt"
	"strings"

	domainDataset "riskhypo/domain/dataset"
	"riskhypo/domain/hypothesis"
	"riskhypo/internal"
	"riskhypo/internal/analysis/partition"
	"riskhypo/internal/analysis/significance"

	"golang.org/x/sync/errgroup"
)

// Recorder receives the results of evaluated hypotheses, in run order
type Recorder interface {
	Append(result hypothesis.TestResult)
}

// Options tune a Runner
type Options struct {
	// Parallel evaluates hypotheses concurrently. Results are still recorded
	// in declaration order.
	Parallel   bool
	MaxWorkers int
	// MinGroupSize overrides every hypothesis' own minimum when > 0
	MinGroupSize int
}

// Runner evaluates hypotheses against a cleaned, metric-augmented dataset.
// It only reads the dataset.
type Runner struct {
	recorder Recorder
	logger   *internal.Logger
	opts     Options
}

// NewRunner creates a runner that records into recorder
func NewRunner(recorder Recorder, logger *internal.Logger, opts Options) *Runner {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}
	return &Runner{recorder: recorder, logger: logger.With("hypothesis"), opts: opts}
}

// Run evaluates each hypothesis at most once and records every executed test.
// Hypotheses that cannot run are skipped with a log line and record nothing.
// The only error is a cancelled context.
func (r *Runner) Run(ctx context.Context, ds *domainDataset.Dataset, hs []hypothesis.Hypothesis) ([]*hypothesis.Evaluation, error) {
	evals := make([]*hypothesis.Evaluation, len(hs))
	seen := make(map[string]bool, len(hs))
	for i, h := range hs {
		evals[i] = hypothesis.NewEvaluation(h)
		if seen[h.Name] {
			r.skip(evals[i], "already evaluated in this run")
			continue
		}
		seen[h.Name] = true
	}

	if r.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.MaxWorkers)
		for _, ev := range evals {
			if ev.Status != hypothesis.StatusPending {
				continue
			}
			ev := ev
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r.evaluate(ds, ev)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return evals, err
		}
		for _, ev := range evals {
			r.record(ev)
		}
		return evals, nil
	}

	for _, ev := range evals {
		if err := ctx.Err(); err != nil {
			return evals, err
		}
		if ev.Status == hypothesis.StatusPending {
			r.evaluate(ds, ev)
		}
		r.record(ev)
	}
	return evals, nil
}

func (r *Runner) minSize(h hypothesis.Hypothesis) int {
	if r.opts.MinGroupSize > 0 {
		return r.opts.MinGroupSize
	}
	return h.MinSize()
}

// evaluate moves ev from Pending to Skipped or Evaluated
func (r *Runner) evaluate(ds *domainDataset.Dataset, ev *hypothesis.Evaluation) {
	h := ev.Hypothesis

	var absent []string
	for _, c := range h.RequiredColumns() {
		if !ds.Has(c) {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		r.skip(ev, "missing column(s): "+strings.Join(absent, ", "))
		return
	}

	var (
		result hypothesis.TestResult
		reason string
	)
	switch h.Kind() {
	case hypothesis.KindWelchT:
		result, reason = r.welch(ds, h)
	default:
		result, reason = r.anova(ds, h)
	}
	if reason != "" {
		r.skip(ev, reason)
		return
	}

	if err := ev.Evaluate(result); err != nil {
		r.logger.Error("%v", err)
		return
	}
	r.logger.Info("%s: statistic=%.4f p=%.4f -> %s", h.Name, result.Statistic, result.PValue, result.Decision.Label())
}

func (r *Runner) welch(ds *domainDataset.Dataset, h hypothesis.Hypothesis) (hypothesis.TestResult, string) {
	min := r.minSize(h)
	pp, err := partition.Pair(ds, h.Metric, h.GroupColumn, h.Pair.A, h.Pair.B, min)
	if err != nil {
		return hypothesis.TestResult{}, err.Error()
	}
	if !pp.Feasible {
		return hypothesis.TestResult{}, "insufficient data: " + pp.Reason
	}

	out, err := significance.WelchTTest(pp.A.Values, pp.B.Values)
	if err != nil {
		return hypothesis.TestResult{}, err.Error()
	}
	return hypothesis.NewTestResult(h, h.Pair.String(), out.Statistic, out.PValue,
		[]string{pp.A.Label, pp.B.Label}, []int{pp.A.Size(), pp.B.Size()}), ""
}

func (r *Runner) anova(ds *domainDataset.Dataset, h hypothesis.Hypothesis) (hypothesis.TestResult, string) {
	min := r.minSize(h)
	p, err := partition.Split(ds, h.Metric, h.GroupColumn, min)
	if err != nil {
		return hypothesis.TestResult{}, err.Error()
	}
	if len(p.Undersized) > 0 {
		r.logger.Debug("%s: %d %s groups below %d observations excluded", h.Name, len(p.Undersized), h.GroupColumn, min)
	}
	if len(p.Groups) < 2 {
		return hypothesis.TestResult{}, fmt.Sprintf("insufficient data: %d %s group(s) with at least %d observations, need 2",
			len(p.Groups), h.GroupColumn, min)
	}

	out, err := significance.OneWayANOVA(p.Samples()...)
	if err != nil {
		return hypothesis.TestResult{}, err.Error()
	}
	return hypothesis.NewTestResult(h, hypothesis.GroupDescriptor(h.GroupColumn, len(p.Groups)),
		out.Statistic, out.PValue, p.Labels(), p.Sizes()), ""
}

func (r *Runner) skip(ev *hypothesis.Evaluation, reason string) {
	if err := ev.Skip(reason); err != nil {
		r.logger.Error("%v", err)
		return
	}
	r.logger.Warn("Skipping %q: %s", ev.Hypothesis.Name, reason)
}

// record appends evaluated results and closes out every evaluation
func (r *Runner) record(ev *hypothesis.Evaluation) {
	if ev.Status == hypothesis.StatusEvaluated && r.recorder != nil {
		r.recorder.Append(*ev.Result)
	}
	if err := ev.Advance(hypothesis.StatusRecorded); err != nil {
		r.logger.Error("%v", err)
	}
}
