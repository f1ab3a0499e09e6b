package profiling

import (
	domainDataset "riskhypo/domain/dataset"
	"riskhypo/internal"
)

// ColumnProfile describes one column of a dataset
type ColumnProfile struct {
	Name           string                  `json:"name"`
	Type           domainDataset.ValueType `json:"type"`
	Rows           int                     `json:"rows"`
	Missing        int                     `json:"missing"`
	MissingPercent float64                 `json:"missing_percent"`
	Distinct       int                     `json:"distinct"`
	Summary        *Summary                `json:"summary,omitempty"`
}

// DataProfiler profiles every column of a dataset
type DataProfiler struct {
	logger *internal.Logger
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler(logger *internal.Logger) *DataProfiler {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataProfiler{logger: logger.With("profiler")}
}

// ProfileColumn profiles a single column. Numeric columns with at least one
// present value also get a Summary.
func (dp *DataProfiler) ProfileColumn(col *domainDataset.Column) ColumnProfile {
	p := ColumnProfile{
		Name:    col.Name(),
		Type:    col.Type(),
		Rows:    col.Len(),
		Missing: col.MissingCount(),
	}
	if p.Rows > 0 {
		p.MissingPercent = 100 * float64(p.Missing) / float64(p.Rows)
	}

	distinct := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if v := col.At(i); !v.IsMissing() {
			distinct[v.String()] = struct{}{}
		}
	}
	p.Distinct = len(distinct)

	if col.Type() == domainDataset.ValueTypeNumeric {
		if data := col.NonMissingFloats(); len(data) > 0 {
			summary, err := Summarize(data)
			if err != nil {
				dp.logger.Warn("summarizing %s: %v", col.Name(), err)
			} else {
				p.Summary = &summary
			}
		}
	}
	return p
}

// ProfileDataset profiles all columns, in dataset order
func (dp *DataProfiler) ProfileDataset(ds *domainDataset.Dataset) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(ds.ColumnNames()))
	for _, col := range ds.Columns() {
		out = append(out, dp.ProfileColumn(col))
	}
	dp.logger.Debug("profiled %d columns over %d rows", len(out), ds.Rows())
	return out
}
