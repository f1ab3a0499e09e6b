package partition

import (
	"math"
	"testing"

	"riskhypo/domain/core"
	domainDataset "riskhypo/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *domainDataset.Dataset {
	nan := math.NaN()
	return domainDataset.MustNew(
		domainDataset.NumericColumn("LossRatio", []float64{1, 2, 3, nan, 5, 6, 7, 8, 9, 10}),
		domainDataset.TextColumn("Province", []string{"Gauteng", "Limpopo", "Gauteng", "Gauteng", "", "Limpopo", "Gauteng", "Natal", "Limpopo", "Gauteng"}),
	)
}

func TestSplit_FirstEncounterOrderAndMinimum(t *testing.T) {
	p, err := Split(fixture(), "LossRatio", "Province", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Gauteng", "Limpopo"}, p.Labels())
	assert.Equal(t, []int{4, 3}, p.Sizes())
	assert.Equal(t, []float64{1, 3, 7, 10}, p.Groups[0].Values)
	require.Len(t, p.Undersized, 1)
	assert.Equal(t, "Natal", p.Undersized[0].Label)
	assert.Equal(t, []int{3, 4}, p.MissingRows)
}

func TestSplit_EveryRowAccountedFor(t *testing.T) {
	ds := fixture()
	for _, min := range []int{0, 1, 2, 3, 4, 5, 30} {
		p, err := Split(ds, "LossRatio", "Province", min)
		require.NoError(t, err)

		retained := 0
		for _, g := range p.Groups {
			assert.GreaterOrEqual(t, g.Size(), min)
			retained += g.Size()
		}
		assert.Equal(t, ds.Rows(), retained+p.ExcludedRows(), "min=%d", min)
	}
}

func TestSplit_NumericGroupLabels(t *testing.T) {
	ds := domainDataset.MustNew(
		domainDataset.NumericColumn("Margin", []float64{1, 2, 3}),
		domainDataset.NumericColumn("PostalCode", []float64{2000, 122, 2000}),
	)

	p, err := Split(ds, "Margin", "PostalCode", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2000", "122"}, p.Labels())
}

func TestSplit_Errors(t *testing.T) {
	_, err := Split(fixture(), "Margin", "Province", 1)
	assert.True(t, core.IsColumnNotFound(err))

	_, err = Split(fixture(), "LossRatio", "Gender", 1)
	assert.True(t, core.IsColumnNotFound(err))

	_, err = Split(fixture(), "Province", "LossRatio", 1)
	assert.ErrorIs(t, err, core.ErrNotNumeric)
}

func TestPair_Feasibility(t *testing.T) {
	ds := fixture()

	pp, err := Pair(ds, "LossRatio", "Province", "Gauteng", "Limpopo", 3)
	require.NoError(t, err)
	assert.True(t, pp.Feasible)
	assert.Equal(t, 4, pp.A.Size())
	assert.Equal(t, 3, pp.B.Size())

	pp, err = Pair(ds, "LossRatio", "Province", "Gauteng", "Natal", 3)
	require.NoError(t, err)
	assert.False(t, pp.Feasible)
	assert.Contains(t, pp.Reason, "Natal")

	pp, err = Pair(ds, "LossRatio", "Province", "Gauteng", "Western Cape", 1)
	require.NoError(t, err)
	assert.False(t, pp.Feasible)
	assert.Equal(t, 0, pp.B.Size())
}

func TestSegmentMeans_Ascending(t *testing.T) {
	means, err := SegmentMeans(fixture(), "LossRatio", "Province")
	require.NoError(t, err)

	require.Len(t, means, 3)
	assert.Equal(t, "Gauteng", means[0].Group)
	assert.InDelta(t, 5.25, means[0].Mean, 1e-12)
	assert.Equal(t, "Limpopo", means[1].Group)
	assert.InDelta(t, 17.0/3.0, means[1].Mean, 1e-12)
	assert.Equal(t, "Natal", means[2].Group)
	assert.Equal(t, 1, means[2].Count)
}
