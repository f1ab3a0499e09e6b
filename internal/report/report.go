package report

import (
	"strconv"
	"time"

	"riskhypo/domain/core"
	"riskhypo/domain/hypothesis"
)

// TableHeader is the column layout of the tabular report view
var TableHeader = []string{"Hypothesis", "Metric", "Group", "p-value", "Decision", "Interpretation"}

// Report is the read-only, ordered outcome of one run
type Report struct {
	RunID            core.RunID `json:"run_id"`
	InputFingerprint core.Hash  `json:"input_fingerprint"`
	GeneratedAt      time.Time  `json:"generated_at"`
	results          []hypothesis.TestResult
}

// New assembles a report from stored results, e.g. when loading a past run
func New(runID core.RunID, fingerprint core.Hash, generatedAt time.Time, results []hypothesis.TestResult) *Report {
	return &Report{
		RunID:            runID,
		InputFingerprint: fingerprint,
		GeneratedAt:      generatedAt,
		results:          append([]hypothesis.TestResult(nil), results...),
	}
}

// Results returns a copy of the results in execution order
func (r *Report) Results() []hypothesis.TestResult {
	return append([]hypothesis.TestResult(nil), r.results...)
}

// Len returns the number of results
func (r *Report) Len() int { return len(r.results) }

// Table renders one row per result under TableHeader
func (r *Report) Table() [][]string {
	rows := make([][]string, 0, len(r.results))
	for _, res := range r.results {
		rows = append(rows, []string{
			res.Hypothesis,
			res.Metric,
			res.Group,
			FormatPValue(res.PValue),
			res.Decision.Label(),
			res.Interpretation,
		})
	}
	return rows
}

// FormatPValue prints a rounded p-value without trailing zeros; non-finite values print as NaN
func FormatPValue(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
