package dataset

import (
	"math"

	domainDataset "riskhypo/domain/dataset"
	"riskhypo/internal"
)

// MetricsReport lists the derived columns and the infinities removed
type MetricsReport struct {
	Added             []string       `json:"added"`
	Skipped           []string       `json:"skipped"`
	InfinitiesRemoved map[string]int `json:"infinities_removed"`
}

// MetricsDeriver adds loss ratio, margin, claim frequency and claim severity
type MetricsDeriver struct {
	logger *internal.Logger
}

// NewMetricsDeriver creates a deriver
func NewMetricsDeriver(logger *internal.Logger) *MetricsDeriver {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &MetricsDeriver{logger: logger.With("metrics")}
}

// Derive computes each metric whose prerequisite columns are present, then
// turns every ±Inf in any numeric column of the dataset into MISSING.
func (m *MetricsDeriver) Derive(ds *domainDataset.Dataset) (*domainDataset.Dataset, MetricsReport) {
	schema := domainDataset.BindSchema(ds)
	report := MetricsReport{InfinitiesRemoved: make(map[string]int)}

	var derived []*domainDataset.Column
	add := func(col *domainDataset.Column) {
		derived = append(derived, col)
		report.Added = append(report.Added, col.Name())
	}

	premium, claims, count := schema.TotalPremium, schema.TotalClaims, schema.ClaimCount

	if claims != nil && premium != nil {
		add(binary(domainDataset.MetricLossRatio, claims, premium, func(c, p float64) float64 { return c / p }))
		add(binary(domainDataset.MetricMargin, premium, claims, func(p, c float64) float64 { return p - c }))
	} else {
		report.Skipped = append(report.Skipped, domainDataset.MetricLossRatio, domainDataset.MetricMargin)
	}

	if claims != nil {
		add(claims.Map(domainDataset.ValueTypeBoolean, func(_ int, v domainDataset.Value) domainDataset.Value {
			c, ok := v.Float()
			if !ok {
				return domainDataset.Missing()
			}
			return domainDataset.Boolean(c > 0)
		}).Renamed(domainDataset.MetricClaimFrequency))
	} else {
		report.Skipped = append(report.Skipped, domainDataset.MetricClaimFrequency)
	}

	if claims != nil && count != nil {
		add(binary(domainDataset.MetricClaimSeverity, claims, count, func(c, n float64) float64 {
			if n > 0 {
				return c / n
			}
			return math.NaN()
		}))
	} else {
		report.Skipped = append(report.Skipped, domainDataset.MetricClaimSeverity)
	}

	if len(report.Skipped) > 0 {
		m.logger.Info("metrics not derived, prerequisites absent: %v", report.Skipped)
	}

	out, err := ds.WithColumns(derived...)
	if err != nil {
		m.logger.Error("attaching derived metrics: %v", err)
		out = ds
	}

	out = m.replaceInfinities(out, report.InfinitiesRemoved)
	return out, report
}

// binary applies fn row-wise; a missing operand, NaN or ±Inf result yields MISSING
func binary(name string, a, b *domainDataset.Column, fn func(x, y float64) float64) *domainDataset.Column {
	values := make([]domainDataset.Value, a.Len())
	for i := range values {
		x, okX := a.At(i).Float()
		y, okY := b.At(i).Float()
		if !okX || !okY {
			values[i] = domainDataset.Missing()
			continue
		}
		values[i] = domainDataset.Number(fn(x, y))
	}
	return domainDataset.NewColumn(name, domainDataset.ValueTypeNumeric, values)
}

// replaceInfinities sweeps every numeric column. Columns built through
// domainDataset.Number never hold infinities, so this only fires for values
// that entered the dataset some other way.
func (m *MetricsDeriver) replaceInfinities(ds *domainDataset.Dataset, removed map[string]int) *domainDataset.Dataset {
	out := ds
	for _, col := range ds.Columns() {
		if col.Type() != domainDataset.ValueTypeNumeric {
			continue
		}
		n := 0
		for i := 0; i < col.Len(); i++ {
			if v := col.At(i); !v.IsMissing() && math.IsInf(v.Num, 0) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		cleaned := col.Map(domainDataset.ValueTypeNumeric, func(_ int, v domainDataset.Value) domainDataset.Value {
			if !v.IsMissing() && math.IsInf(v.Num, 0) {
				return domainDataset.Missing()
			}
			return v
		})
		removed[col.Name()] = n
		if next, err := out.WithColumn(cleaned); err == nil {
			out = next
		}
		m.logger.Info("replaced %d infinite values in %s with missing", n, col.Name())
	}
	return out
}

// CountInfinities counts ±Inf cells across numeric columns. Used by checks and tests.
func CountInfinities(ds *domainDataset.Dataset) int {
	n := 0
	for _, col := range ds.Columns() {
		for i := 0; i < col.Len(); i++ {
			if v := col.At(i); v.Type == domainDataset.ValueTypeNumeric && math.IsInf(v.Num, 0) {
				n++
			}
		}
	}
	return n
}

// DeriveMetrics runs a MetricsDeriver without logging
func DeriveMetrics(ds *domainDataset.Dataset) (*domainDataset.Dataset, MetricsReport) {
	return NewMetricsDeriver(nil).Derive(ds)
}
