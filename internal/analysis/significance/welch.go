package significance

import (
	"fmt"
	"math"

	"riskhypo/domain/core"

	"gonum.org/v1/gonum/stat"
)

// Outcome is the statistic and p-value of one test. DF2 is only set for F tests.
type Outcome struct {
	Statistic float64
	PValue    float64
	DF        float64
	DF2       float64
}

// WelchTTest compares the means of two samples without assuming equal variances.
//
// When both samples have zero variance the t statistic is undefined. Equal
// means then give t=0, p=1; different means give t=±Inf, p=0.
func WelchTTest(a, b []float64) (Outcome, error) {
	if len(a) < 2 || len(b) < 2 {
		return Outcome{}, core.NewInsufficientDataError(
			fmt.Sprintf("welch t-test needs 2 observations per group, got %d and %d", len(a), len(b)))
	}

	n1, n2 := float64(len(a)), float64(len(b))
	mean1, var1 := stat.MeanVariance(a, nil)
	mean2, var2 := stat.MeanVariance(b, nil)

	se1, se2 := var1/n1, var2/n2
	se := math.Sqrt(se1 + se2)
	diff := mean1 - mean2

	if se == 0 {
		if diff == 0 {
			return Outcome{Statistic: 0, PValue: 1, DF: n1 + n2 - 2}, nil
		}
		return Outcome{Statistic: math.Copysign(math.Inf(1), diff), PValue: 0, DF: n1 + n2 - 2}, nil
	}

	t := diff / se
	// Welch–Satterthwaite
	df := (se1 + se2) * (se1 + se2) / (se1*se1/(n1-1) + se2*se2/(n2-1))

	return Outcome{Statistic: t, PValue: TwoSidedTPValue(t, df), DF: df}, nil
}
