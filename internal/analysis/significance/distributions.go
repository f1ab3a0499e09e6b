package significance

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TwoSidedTPValue returns P(|T| >= |t|) for a Student's t with df degrees of freedom
func TwoSidedTPValue(t, df float64) float64 {
	if math.IsNaN(t) || df <= 0 {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * tDist.Survival(math.Abs(t))
	return math.Min(1, p)
}

// FTestPValue returns P(F >= f) for an F distribution with (d1, d2) degrees of freedom
func FTestPValue(f, d1, d2 float64) float64 {
	if math.IsNaN(f) || d1 <= 0 || d2 <= 0 {
		return math.NaN()
	}
	if math.IsInf(f, 1) {
		return 0
	}
	if f <= 0 {
		return 1
	}
	fDist := distuv.F{D1: d1, D2: d2}
	return fDist.Survival(f)
}
