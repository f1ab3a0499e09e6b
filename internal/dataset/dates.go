package dataset

import (
	"time"

	domainDataset "riskhypo/domain/dataset"
	"riskhypo/internal"
)

// DateNormalizerConfig selects the date columns and the parse cascade
type DateNormalizerConfig struct {
	Columns     []string
	Strategies  []ParseStrategy
	FlagColumns []string // columns that also get a <name>_missing boolean column
}

// DefaultDateNormalizerConfig covers the policy extract's date columns
func DefaultDateNormalizerConfig() DateNormalizerConfig {
	return DateNormalizerConfig{
		Columns:     []string{domainDataset.FieldTransactionMonth, domainDataset.FieldVehicleIntroDate},
		Strategies:  DefaultDateStrategies(),
		FlagColumns: []string{domainDataset.FieldVehicleIntroDate},
	}
}

// DateParseReport is the per-column side channel of a normalization
type DateParseReport struct {
	Column          string         `json:"column"`
	Total           int            `json:"total"`
	FailedFirstPass int            `json:"failed_first_pass"`
	Failed          int            `json:"failed"`
	ResolvedBy      map[string]int `json:"resolved_by"`
	Unparsed        []string       `json:"unparsed,omitempty"` // up to five samples
}

// MissingRate is the share of rows without a date after the cascade
func (r DateParseReport) MissingRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Failed) / float64(r.Total)
}

// DateNormalizer converts free-form date text into date values
type DateNormalizer struct {
	config DateNormalizerConfig
	logger *internal.Logger
}

// NewDateNormalizer creates a normalizer; an empty strategy list means the default cascade
func NewDateNormalizer(config DateNormalizerConfig, logger *internal.Logger) *DateNormalizer {
	if len(config.Strategies) == 0 {
		config.Strategies = DefaultDateStrategies()
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DateNormalizer{config: config, logger: logger.With("dates")}
}

// Normalize parses every configured date column present in ds. Absent columns are skipped.
func (n *DateNormalizer) Normalize(ds *domainDataset.Dataset) (*domainDataset.Dataset, []DateParseReport) {
	flag := make(map[string]bool, len(n.config.FlagColumns))
	for _, c := range n.config.FlagColumns {
		flag[c] = true
	}

	out := ds
	var reports []DateParseReport
	for _, name := range n.config.Columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}

		parsed, report := n.NormalizeColumn(col)
		reports = append(reports, report)

		next, err := out.WithColumn(parsed)
		if err != nil {
			// same length by construction
			n.logger.Error("replacing %s: %v", name, err)
			continue
		}
		out = next

		if flag[name] {
			missing := parsed.Map(domainDataset.ValueTypeBoolean, func(_ int, v domainDataset.Value) domainDataset.Value {
				return domainDataset.Boolean(v.IsMissing())
			}).Renamed(name + domainDataset.MissingFlagSuffix)
			if next, err := out.WithColumn(missing); err == nil {
				out = next
			}
		}
	}
	return out, reports
}

// NormalizeColumn runs the cascade over one column
func (n *DateNormalizer) NormalizeColumn(col *domainDataset.Column) (*domainDataset.Column, DateParseReport) {
	report := DateParseReport{
		Column:     col.Name(),
		Total:      col.Len(),
		ResolvedBy: make(map[string]int),
	}

	if col.Type() == domainDataset.ValueTypeDate {
		report.Failed = col.MissingCount()
		report.FailedFirstPass = report.Failed
		return col, report
	}

	resolved := make([]time.Time, col.Len())
	var unresolved []int
	for i := 0; i < col.Len(); i++ {
		unresolved = append(unresolved, i)
	}

	for step, strategy := range n.config.Strategies {
		if len(unresolved) == 0 {
			break
		}
		remaining := unresolved[:0:0]
		for _, i := range unresolved {
			v := col.At(i)
			if v.IsMissing() {
				remaining = append(remaining, i)
				continue
			}
			t, err := safeParse(strategy, v.String())
			if err != nil {
				remaining = append(remaining, i)
				continue
			}
			resolved[i] = t
			report.ResolvedBy[strategy.Name()]++
		}
		unresolved = remaining

		if step == 0 {
			report.FailedFirstPass = len(unresolved)
			n.logger.Info("'%s': %d rows failed %s parsing out of %d", col.Name(), len(unresolved), strategy.Name(), col.Len())
		} else if len(unresolved) == 0 {
			n.logger.Info("all dates in '%s' parsed successfully using format %s", col.Name(), strategy.Name())
		}
	}

	report.Failed = len(unresolved)
	for _, i := range unresolved {
		if len(report.Unparsed) == 5 {
			break
		}
		if v := col.At(i); !v.IsMissing() {
			report.Unparsed = append(report.Unparsed, v.String())
		}
	}
	if report.Failed > 0 {
		n.logger.Warn("some values in '%s' could not be parsed into dates: %d of %d, e.g. %v",
			col.Name(), report.Failed, report.Total, report.Unparsed)
	}

	values := make([]domainDataset.Value, col.Len())
	for i := range values {
		values[i] = domainDataset.Date(resolved[i])
	}
	return domainDataset.NewColumn(col.Name(), domainDataset.ValueTypeDate, values), report
}

// LogMissingRates writes the post-parse missing percentage of each report
func LogMissingRates(logger *internal.Logger, reports []DateParseReport) {
	for _, r := range reports {
		logger.Info("%s: %.2f%% missing after parsing.", r.Column, 100*r.MissingRate())
	}
}
