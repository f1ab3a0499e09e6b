package hypothesis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"riskhypo/domain/core"
)

// SignificanceLevel is the fixed threshold below which the null hypothesis is rejected
const SignificanceLevel = 0.05

// DefaultMinGroupSize is the minimum non-missing observations per group
const DefaultMinGroupSize = 30

// TestKind names the statistical test behind a result
type TestKind string

const (
	KindWelchT TestKind = "welch_t"
	KindANOVA  TestKind = "anova"
)

// GroupPair names the two groups of a two-sample comparison
type GroupPair struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

func (p GroupPair) String() string { return p.A + " vs " + p.B }

// Hypothesis is a null claim of no difference in Metric across GroupColumn.
// With Pair set it compares exactly two groups (Welch t-test); without it all
// groups that reach MinGroupSize are compared (one-way ANOVA).
type Hypothesis struct {
	Name         string     `json:"name" yaml:"name" validate:"required"`
	Metric       string     `json:"metric" yaml:"metric" validate:"required"`
	GroupColumn  string     `json:"group" yaml:"group" validate:"required"`
	Pair         *GroupPair `json:"pair,omitempty" yaml:"pair,omitempty"`
	MinGroupSize int        `json:"min_group_size,omitempty" yaml:"min_group_size,omitempty" validate:"gte=0"`
}

// Kind returns the test this hypothesis is evaluated with
func (h Hypothesis) Kind() TestKind {
	if h.Pair != nil {
		return KindWelchT
	}
	return KindANOVA
}

// MinSize returns MinGroupSize, defaulting to DefaultMinGroupSize
func (h Hypothesis) MinSize() int {
	if h.MinGroupSize <= 0 {
		return DefaultMinGroupSize
	}
	return h.MinGroupSize
}

// RequiredColumns lists the columns the hypothesis cannot run without
func (h Hypothesis) RequiredColumns() []string {
	return []string{h.Metric, h.GroupColumn}
}

// Decision is the accept/reject outcome of a test
type Decision string

const (
	DecisionReject       Decision = "Reject"
	DecisionFailToReject Decision = "FailToReject"
)

// Decide applies the significance rule to an unrounded p-value.
// A NaN p-value never rejects.
func Decide(p float64) Decision {
	if p < SignificanceLevel {
		return DecisionReject
	}
	return DecisionFailToReject
}

// Label is the display form used in report tables
func (d Decision) Label() string {
	if d == DecisionReject {
		return "Reject H₀"
	}
	return "Fail to Reject H₀"
}

// RoundPValue rounds to 4 decimal places
func RoundPValue(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return p
	}
	return math.Round(p*1e4) / 1e4
}

// TestResult is the immutable outcome of one evaluated hypothesis
type TestResult struct {
	Hypothesis     string
	Metric         string
	Group          string
	Kind           TestKind
	Statistic      float64
	PValue         float64
	RawPValue      float64
	Decision       Decision
	Interpretation string
	Groups         []string
	SampleSizes    []int
}

// NewTestResult assembles a result, rounding p and deriving decision and interpretation
func NewTestResult(h Hypothesis, group string, statistic, p float64, labels []string, sizes []int) TestResult {
	decision := Decide(p)
	return TestResult{
		Hypothesis:     h.Name,
		Metric:         h.Metric,
		Group:          group,
		Kind:           h.Kind(),
		Statistic:      statistic,
		PValue:         RoundPValue(p),
		RawPValue:      p,
		Decision:       decision,
		Interpretation: interpret(h, decision),
		Groups:         append([]string(nil), labels...),
		SampleSizes:    append([]int(nil), sizes...),
	}
}

func interpret(h Hypothesis, d Decision) string {
	strength := "no significant"
	if d == DecisionReject {
		strength = "a significant"
	}
	metric := strings.ToLower(h.Metric)
	if h.Pair != nil {
		return fmt.Sprintf("There is %s difference in %s between %s and %s.", strength, metric, h.Pair.A, h.Pair.B)
	}
	return fmt.Sprintf("There is %s difference in %s across %s groups.", strength, metric, h.GroupColumn)
}

// GroupDescriptor formats the Group field of an ANOVA result
func GroupDescriptor(column string, k int) string {
	return fmt.Sprintf("%s (%d groups)", column, k)
}

type testResultJSON struct {
	Hypothesis     string   `json:"hypothesis"`
	Metric         string   `json:"metric"`
	Group          string   `json:"group"`
	Kind           TestKind `json:"kind"`
	Statistic      *float64 `json:"statistic"`
	PValue         *float64 `json:"p_value"`
	RawPValue      *float64 `json:"raw_p_value"`
	Decision       Decision `json:"decision"`
	Interpretation string   `json:"interpretation"`
	Groups         []string `json:"groups"`
	SampleSizes    []int    `json:"sample_sizes"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func orNaN(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

// MarshalJSON encodes non-finite statistics and p-values as null
func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(testResultJSON{
		Hypothesis:     r.Hypothesis,
		Metric:         r.Metric,
		Group:          r.Group,
		Kind:           r.Kind,
		Statistic:      finite(r.Statistic),
		PValue:         finite(r.PValue),
		RawPValue:      finite(r.RawPValue),
		Decision:       r.Decision,
		Interpretation: r.Interpretation,
		Groups:         r.Groups,
		SampleSizes:    r.SampleSizes,
	})
}

// UnmarshalJSON reverses MarshalJSON, reading null as NaN
func (r *TestResult) UnmarshalJSON(data []byte) error {
	var raw testResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = TestResult{
		Hypothesis:     raw.Hypothesis,
		Metric:         raw.Metric,
		Group:          raw.Group,
		Kind:           raw.Kind,
		Statistic:      orNaN(raw.Statistic),
		PValue:         orNaN(raw.PValue),
		RawPValue:      orNaN(raw.RawPValue),
		Decision:       raw.Decision,
		Interpretation: raw.Interpretation,
		Groups:         raw.Groups,
		SampleSizes:    raw.SampleSizes,
	}
	return nil
}

// Status tracks a hypothesis through one run:
// Pending → {Skipped | Evaluated} → Recorded.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSkipped   Status = "skipped"
	StatusEvaluated Status = "evaluated"
	StatusRecorded  Status = "recorded"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusSkipped, StatusEvaluated},
	StatusSkipped:   {StatusRecorded},
	StatusEvaluated: {StatusRecorded},
}

// CanTransition reports whether from → to is allowed
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Evaluation is the per-run record of one hypothesis
type Evaluation struct {
	Hypothesis Hypothesis
	Status     Status
	SkipReason string
	Result     *TestResult
	// Skipped is kept after Recorded so callers can tell the two terminal paths apart
	Skipped bool
}

// NewEvaluation starts an evaluation in the Pending state
func NewEvaluation(h Hypothesis) *Evaluation {
	return &Evaluation{Hypothesis: h, Status: StatusPending}
}

// Advance moves the evaluation forward; backwards or repeated transitions fail
func (e *Evaluation) Advance(to Status) error {
	if !CanTransition(e.Status, to) {
		return fmt.Errorf("%w: %s -> %s for %q", core.ErrInvalidTransition, e.Status, to, e.Hypothesis.Name)
	}
	if to == StatusSkipped {
		e.Skipped = true
	}
	e.Status = to
	return nil
}

// Skip moves a pending evaluation to Skipped with a reason
func (e *Evaluation) Skip(reason string) error {
	if err := e.Advance(StatusSkipped); err != nil {
		return err
	}
	e.SkipReason = reason
	return nil
}

// Evaluate moves a pending evaluation to Evaluated with its result
func (e *Evaluation) Evaluate(result TestResult) error {
	if err := e.Advance(StatusEvaluated); err != nil {
		return err
	}
	e.Result = &result
	return nil
}

// DefaultHypotheses returns the standard insurance risk hypotheses, in run order
func DefaultHypotheses() []Hypothesis {
	return []Hypothesis{
		{
			Name:        "No risk differences across provinces",
			Metric:      "LossRatio",
			GroupColumn: "Province",
		},
		{
			Name:        "No risk differences between postal codes",
			Metric:      "LossRatio",
			GroupColumn: "PostalCode",
		},
		{
			Name:        "No significant margin difference between postal codes",
			Metric:      "Margin",
			GroupColumn: "PostalCode",
		},
		{
			Name:        "No significant risk difference between Women and Men",
			Metric:      "LossRatio",
			GroupColumn: "Gender",
			Pair:        &GroupPair{A: "Male", B: "Female"},
		},
	}
}
