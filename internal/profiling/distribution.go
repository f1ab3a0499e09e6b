package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the numeric summary of one column's non-missing values
type Summary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
}

// Summarize computes the numeric summary of data
func Summarize(data []float64) (Summary, error) {
	var s Summary
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	// sample standard deviation, matching the usual dataframe describe()
	if len(data) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	// quartiles interpolate, so two- and three-value columns still get them
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	s.Q25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	s.Q75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	s.Skewness = calculateSkewness(data, s.Mean, s.StdDev)
	s.Outliers = detectOutliers(data, s.Q25, s.Q75)
	return s, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	return sumCubed / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower, upper := q25-1.5*iqr, q75+1.5*iqr

	n := 0
	for _, x := range data {
		if x < lower || x > upper {
			n++
		}
	}
	return n
}
