package dataset

import (
	"math"

	domainDataset "riskhypo/domain/dataset"
	"riskhypo/internal"

	"github.com/montanaflynn/stats"
)

// MinCompleteness is the share of non-missing cells a column needs to survive cleaning
const MinCompleteness = 0.9

// CleanerConfig names the imputed columns
type CleanerConfig struct {
	MedianColumns      []string
	CategoricalColumns []string
	CategoricalFill    string
}

// DefaultCleanerConfig imputes the custom value estimate and the customer categoricals
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		MedianColumns:      []string{domainDataset.FieldCustomValueEstimate},
		CategoricalColumns: domainDataset.ImputedCategoricals,
		CategoricalFill:    domainDataset.UnknownCategory,
	}
}

// CleaningReport describes what a Clean call changed
type CleaningReport struct {
	BaselineRows   int            `json:"baseline_rows"`
	MinNonMissing  int            `json:"min_non_missing"`
	DroppedColumns []string       `json:"dropped_columns"`
	Imputed        map[string]int `json:"imputed"`
	MedianFills    map[string]float64
}

// Cleaner drops sparse columns and imputes the remaining gaps.
//
// The completeness threshold is computed against the row count seen on the
// first Clean call and stays fixed for the lifetime of the Cleaner, so
// repeated cleaning of the same data is a no-op.
type Cleaner struct {
	config   CleanerConfig
	logger   *internal.Logger
	baseline int
	frozen   bool
}

// NewCleaner creates a cleaner
func NewCleaner(config CleanerConfig, logger *internal.Logger) *Cleaner {
	if config.CategoricalFill == "" {
		config.CategoricalFill = domainDataset.UnknownCategory
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Cleaner{config: config, logger: logger.With("cleaner")}
}

// Baseline returns the frozen row count, or 0 before the first Clean call
func (c *Cleaner) Baseline() int { return c.baseline }

// requiredNonMissing is ceil(0.9 * rows), guarded against float noise
func requiredNonMissing(rows int) int {
	return int(math.Ceil(MinCompleteness*float64(rows) - 1e-9))
}

// Clean applies column pruning, median imputation and categorical imputation, in that order
func (c *Cleaner) Clean(ds *domainDataset.Dataset) (*domainDataset.Dataset, CleaningReport) {
	if !c.frozen {
		c.baseline = ds.Rows()
		c.frozen = true
	}
	report := CleaningReport{
		BaselineRows:  c.baseline,
		MinNonMissing: requiredNonMissing(c.baseline),
		Imputed:       make(map[string]int),
		MedianFills:   make(map[string]float64),
	}

	// Rule 1: prune columns below the completeness threshold
	for _, col := range ds.Columns() {
		nonMissing := col.Len() - col.MissingCount()
		if nonMissing < report.MinNonMissing {
			report.DroppedColumns = append(report.DroppedColumns, col.Name())
		}
	}
	out := ds.Without(report.DroppedColumns...)
	if len(report.DroppedColumns) > 0 {
		c.logger.Info("dropped %d columns below %.0f%% completeness: %v",
			len(report.DroppedColumns), MinCompleteness*100, report.DroppedColumns)
	}

	// Rule 2: median imputation
	for _, name := range c.config.MedianColumns {
		col, ok := out.Column(name)
		if !ok || !col.IsNumeric() || col.MissingCount() == 0 {
			continue
		}
		median, err := stats.Median(col.NonMissingFloats())
		if err != nil {
			c.logger.Warn("no median for %s: %v", name, err)
			continue
		}
		filled := col.Map(domainDataset.ValueTypeNumeric, func(_ int, v domainDataset.Value) domainDataset.Value {
			if v.IsMissing() {
				return domainDataset.Number(median)
			}
			f, _ := v.Float()
			return domainDataset.Number(f)
		})
		report.Imputed[name] = col.MissingCount()
		report.MedianFills[name] = median
		out, _ = out.WithColumn(filled)
		c.logger.Info("imputed %d missing %s values with median %.4f", report.Imputed[name], name, median)
	}

	// Rule 3: categorical imputation
	for _, name := range c.config.CategoricalColumns {
		col, ok := out.Column(name)
		if !ok || col.MissingCount() == 0 {
			continue
		}
		if col.Type() != domainDataset.ValueTypeText && col.Type() != domainDataset.ValueTypeMissing {
			c.logger.Warn("skipping categorical imputation of %s: column is %s", name, col.Type())
			continue
		}
		filled := col.Map(domainDataset.ValueTypeText, func(_ int, v domainDataset.Value) domainDataset.Value {
			if v.IsMissing() {
				return domainDataset.Text(c.config.CategoricalFill)
			}
			return v
		})
		report.Imputed[name] = col.MissingCount()
		out, _ = out.WithColumn(filled)
		c.logger.Info("filled %d missing %s values with %q", report.Imputed[name], name, c.config.CategoricalFill)
	}

	return out, report
}
