package dataset

import (
	"math"
	"testing"

	domainDataset "riskhypo/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleaningFixture() *domainDataset.Dataset {
	nan := math.NaN()
	return domainDataset.MustNew(
		// 9 of 10 present: kept
		domainDataset.NumericColumn(domainDataset.FieldCustomValueEstimate, []float64{1, 2, 3, 4, 5, 6, 7, 8, 100, nan}),
		// 8 of 10 present: dropped
		domainDataset.NumericColumn("CrossBorder", []float64{1, 1, 1, 1, 1, 1, 1, 1, nan, nan}),
		domainDataset.TextColumn(domainDataset.FieldGender, []string{"Male", "Female", "", "Male", "Female", "Male", "Female", "Male", "Female", "Male"}),
		domainDataset.NumericColumn(domainDataset.FieldTotalPremium, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
	)
}

func TestCleaner_PrunesImputesAndReports(t *testing.T) {
	c := NewCleaner(DefaultCleanerConfig(), nil)

	out, report := c.Clean(cleaningFixture())

	assert.Equal(t, 10, report.BaselineRows)
	assert.Equal(t, 9, report.MinNonMissing)
	assert.Equal(t, []string{"CrossBorder"}, report.DroppedColumns)
	assert.False(t, out.Has("CrossBorder"))

	estimate := out.Row(9)[domainDataset.FieldCustomValueEstimate]
	assert.Equal(t, 5.0, estimate.Num)
	assert.Equal(t, 5.0, report.MedianFills[domainDataset.FieldCustomValueEstimate])

	gender := out.Row(2)[domainDataset.FieldGender]
	assert.Equal(t, domainDataset.UnknownCategory, gender.Str)
	assert.Equal(t, 1, report.Imputed[domainDataset.FieldGender])
}

func TestCleaner_IsIdempotent(t *testing.T) {
	c := NewCleaner(DefaultCleanerConfig(), nil)

	once, _ := c.Clean(cleaningFixture())
	twice, report := c.Clean(once)

	assert.True(t, once.Equal(twice))
	assert.Empty(t, report.DroppedColumns)
	assert.Empty(t, report.Imputed)
}

func TestCleaner_BaselineFrozenAtFirstCall(t *testing.T) {
	c := NewCleaner(DefaultCleanerConfig(), nil)
	_, _ = c.Clean(cleaningFixture())
	require.Equal(t, 10, c.Baseline())

	// 4 rows: against the frozen baseline every column falls short of 9
	small := domainDataset.MustNew(domainDataset.NumericColumn(domainDataset.FieldTotalPremium, []float64{1, 2, 3, 4}))
	out, report := c.Clean(small)

	assert.Equal(t, 10, report.BaselineRows)
	assert.Equal(t, []string{domainDataset.FieldTotalPremium}, report.DroppedColumns)
	assert.Empty(t, out.ColumnNames())
}

func TestCleaner_LeavesNonTextCategoricalAlone(t *testing.T) {
	nan := math.NaN()
	nums := make([]float64, 20)
	nums[0] = nan
	ds := domainDataset.MustNew(domainDataset.NumericColumn(domainDataset.FieldBank, nums))

	out, report := NewCleaner(DefaultCleanerConfig(), nil).Clean(ds)

	assert.Empty(t, report.Imputed)
	assert.True(t, out.Row(0)[domainDataset.FieldBank].IsMissing())
}

func TestRequiredNonMissing(t *testing.T) {
	assert.Equal(t, 0, requiredNonMissing(0))
	assert.Equal(t, 9, requiredNonMissing(10))
	assert.Equal(t, 1, requiredNonMissing(1))
	assert.Equal(t, 90, requiredNonMissing(100))
	assert.Equal(t, 91, requiredNonMissing(101))
}
