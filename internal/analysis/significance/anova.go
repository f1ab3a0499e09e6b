package significance

import (
	"fmt"
	"math"

	"riskhypo/domain/core"

	"gonum.org/v1/gonum/stat"
)

// OneWayANOVA tests whether the means of two or more groups differ.
//
// With zero within-group variance F is undefined: identical group means give
// F=0, p=1, otherwise F=+Inf, p=0.
func OneWayANOVA(groups ...[]float64) (Outcome, error) {
	if len(groups) < 2 {
		return Outcome{}, core.NewInsufficientDataError(fmt.Sprintf("anova needs at least 2 groups, got %d", len(groups)))
	}

	var all []float64
	for i, g := range groups {
		if len(g) == 0 {
			return Outcome{}, core.NewInsufficientDataError(fmt.Sprintf("anova group %d is empty", i))
		}
		all = append(all, g...)
	}

	k, n := float64(len(groups)), float64(len(all))
	if n <= k {
		return Outcome{}, core.NewInsufficientDataError(
			fmt.Sprintf("anova needs more observations (%d) than groups (%d)", len(all), len(groups)))
	}
	grand := stat.Mean(all, nil)

	var between, within float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		between += float64(len(g)) * (m - grand) * (m - grand)
		for _, x := range g {
			within += (x - m) * (x - m)
		}
	}

	df1, df2 := k-1, n-k
	out := Outcome{DF: df1, DF2: df2}

	if within == 0 {
		if between == 0 {
			out.Statistic, out.PValue = 0, 1
			return out, nil
		}
		out.Statistic, out.PValue = math.Inf(1), 0
		return out, nil
	}

	out.Statistic = (between / df1) / (within / df2)
	out.PValue = FTestPValue(out.Statistic, df1, df2)
	return out, nil
}
