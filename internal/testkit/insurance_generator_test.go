package testkit

import (
	"bytes"
	"context"
	"testing"

	domainDataset "riskhypo/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsuranceDataGenerator_Deterministic(t *testing.T) {
	cfg := DefaultInsuranceConfig()
	cfg.PolicyCount = 200

	var a, b bytes.Buffer
	require.NoError(t, NewInsuranceDataGenerator(cfg).WriteDelimited(&a))
	require.NoError(t, NewInsuranceDataGenerator(cfg).WriteDelimited(&b))
	assert.Equal(t, a.String(), b.String())

	cfg.Seed = 7
	var c bytes.Buffer
	require.NoError(t, NewInsuranceDataGenerator(cfg).WriteDelimited(&c))
	assert.NotEqual(t, a.String(), c.String())
}

func TestInsuranceDataGenerator_Rows(t *testing.T) {
	cfg := DefaultInsuranceConfig()
	cfg.PolicyCount = 50

	header, rows := NewInsuranceDataGenerator(cfg).GenerateRows()
	assert.Equal(t, PolicyHeader, header)
	require.Len(t, rows, 50)
	for _, row := range rows {
		assert.Len(t, row, len(header))
	}
}

func TestTestKit_PolicyDataset(t *testing.T) {
	cfg := DefaultInsuranceConfig()
	cfg.PolicyCount = 300

	ds, err := NewTestKit(t.TempDir(), cfg).PolicyDataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 300, ds.Rows())
	schema := domainDataset.BindSchema(ds)
	assert.NotNil(t, schema.TotalPremium)
	assert.NotNil(t, schema.TotalClaims)
	assert.NotNil(t, schema.ClaimCount)
	assert.NotNil(t, schema.Province)

	month, _ := ds.Column(domainDataset.FieldTransactionMonth)
	assert.Equal(t, domainDataset.ValueTypeText, month.Type())
}
