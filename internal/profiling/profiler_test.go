package profiling

import (
	"math"
	"testing"

	domainDataset "riskhypo/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4, 100})
	require.NoError(t, err)

	assert.Equal(t, 22.0, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 100.0, s.Max)
	assert.Equal(t, 3.0, s.Median)
	assert.InDelta(t, 1.25, s.Q25, 1e-12)
	assert.InDelta(t, 3.75, s.Q75, 1e-12)
	assert.Equal(t, 1, s.Outliers)
	assert.Greater(t, s.Skewness, 0.0)
}

func TestSummarize_ShortColumns(t *testing.T) {
	three, err := Summarize([]float64{40, 10, 30})
	require.NoError(t, err)
	assert.Equal(t, 10.0, three.Q25)
	assert.InDelta(t, 32.5, three.Q75, 1e-12)
	assert.Equal(t, 30.0, three.Median)

	two, err := Summarize([]float64{30, 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, two.Q25)
	assert.InDelta(t, 20.0, two.Q75, 1e-12)
	assert.InDelta(t, math.Sqrt(200), two.StdDev, 1e-12)

	one, err := Summarize([]float64{7})
	require.NoError(t, err)
	assert.Equal(t, 7.0, one.Q25)
	assert.Equal(t, 7.0, one.Q75)
	assert.Zero(t, one.StdDev)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	assert.Error(t, err)
}

func TestProfileDataset(t *testing.T) {
	ds := domainDataset.MustNew(
		domainDataset.NumericColumn("TotalPremium", []float64{10, math.NaN(), 30, 40}),
		domainDataset.TextColumn("Province", []string{"Gauteng", "Gauteng", "", "Natal"}),
	)

	profiles := NewDataProfiler(nil).ProfileDataset(ds)
	require.Len(t, profiles, 2)

	premium := profiles[0]
	assert.Equal(t, "TotalPremium", premium.Name)
	assert.Equal(t, 1, premium.Missing)
	assert.InDelta(t, 25.0, premium.MissingPercent, 1e-12)
	require.NotNil(t, premium.Summary)
	assert.Equal(t, 30.0, premium.Summary.Median)
	assert.Equal(t, 10.0, premium.Summary.Q25)

	province := profiles[1]
	assert.Equal(t, domainDataset.ValueTypeText, province.Type)
	assert.Equal(t, 2, province.Distinct)
	assert.Nil(t, province.Summary)
}
