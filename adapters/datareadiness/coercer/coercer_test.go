package coercer

import (
	"testing"

	"riskhypo/domain/dataset"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name string
		raw  []string
		want dataset.ValueType
	}{
		{"numeric with missing tokens", []string{"1", "2.5", "NA", "", "(3)"}, dataset.ValueTypeNumeric},
		{"currency and thousands", []string{"$1,200", "R 300", "€4"}, dataset.ValueTypeNumeric},
		{"booleans", []string{"Yes", "no", "y", "N"}, dataset.ValueTypeBoolean},
		{"text", []string{"Gauteng", "Natal", "1"}, dataset.ValueTypeText},
		{"dates stay text", []string{"2015-03-01 00:00:00", "2015-04-01 00:00:00"}, dataset.ValueTypeText},
		{"all missing", []string{"", "NULL", "nan"}, dataset.ValueTypeMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.AnalyzeTypeDistribution(tt.raw).RecommendedType)
		})
	}
}

func TestCoerceColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col := c.CoerceColumn("TotalPremium", []string{"100", "(25.5)", "NA"})

	assert.Equal(t, dataset.ValueTypeNumeric, col.Type())
	assert.Equal(t, 100.0, col.At(0).Num)
	assert.Equal(t, -25.5, col.At(1).Num)
	assert.True(t, col.At(2).IsMissing())
}

func TestCoerceValue_NonFiniteIsNotNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.True(t, c.CoerceValue("Inf", dataset.ValueTypeNumeric).IsMissing())
	assert.True(t, c.CoerceValue("-Infinity", dataset.ValueTypeNumeric).IsMissing())
	assert.Equal(t, "Gauteng", c.CoerceValue("  Gauteng ", dataset.ValueTypeText).Str)
}
