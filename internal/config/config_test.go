package config

import (
	"os"
	"path/filepath"
	"testing"

	"riskhypo/domain/hypothesis"
	"riskhypo/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DATA_FILE", "DATA_DELIMITER", "MIN_GROUP_SIZE", "DATABASE_URL", "PORT", "LOG_LEVEL", "DATE_COLUMNS", "HYPOTHESES_FILE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "|", cfg.Data.Delimiter)
	assert.Equal(t, 30, cfg.Analysis.MinGroupSize)
	assert.Equal(t, []string{"TransactionMonth", "VehicleIntroDate"}, cfg.Data.DateColumns)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, '|', cfg.ReaderConfig().Delimiter)

	hs, err := cfg.Hypotheses()
	require.NoError(t, err)
	assert.Equal(t, hypothesis.DefaultHypotheses(), hs)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DELIMITER", "tab")
	t.Setenv("MIN_GROUP_SIZE", "50")
	t.Setenv("DATE_COLUMNS", "TransactionMonth, ")
	t.Setenv("PARALLEL_TESTS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, '\t', cfg.ReaderConfig().Delimiter)
	assert.Equal(t, 50, cfg.Analysis.MinGroupSize)
	assert.Equal(t, []string{"TransactionMonth"}, cfg.Data.DateColumns)
	assert.True(t, cfg.Analysis.ParallelTests)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MIN_GROUP_SIZE", "1")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_InvalidDelimiter(t *testing.T) {
	t.Setenv("DATA_DELIMITER", "ab")

	_, err := Load()
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestParseHypotheses(t *testing.T) {
	hs, err := ParseHypotheses([]byte(`
hypotheses:
  - name: Provinces
    metric: LossRatio
    group: Province
  - name: Gender
    metric: Margin
    group: Gender
    pair: [Male, Female]
    min_group_size: 10
`))
	require.NoError(t, err)
	require.Len(t, hs, 2)

	assert.Equal(t, hypothesis.KindANOVA, hs[0].Kind())
	assert.Equal(t, "Province", hs[0].GroupColumn)
	assert.Equal(t, hypothesis.KindWelchT, hs[1].Kind())
	assert.Equal(t, &hypothesis.GroupPair{A: "Male", B: "Female"}, hs[1].Pair)
	assert.Equal(t, 10, hs[1].MinSize())
}

func TestParseHypotheses_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "hypotheses: []",
		"no metric":     "hypotheses:\n  - name: x\n    group: Province\n",
		"three in pair": "hypotheses:\n  - name: x\n    metric: LossRatio\n    group: Gender\n    pair: [a, b, c]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHypotheses([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
		})
	}

	_, err := ParseHypotheses([]byte("hypotheses: {"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoadHypothesesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hypotheses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hypotheses:\n  - name: p\n    metric: LossRatio\n    group: PostalCode\n"), 0o644))

	t.Setenv("HYPOTHESES_FILE", path)
	cfg, err := Load()
	require.NoError(t, err)

	hs, err := cfg.Hypotheses()
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "PostalCode", hs[0].GroupColumn)

	_, err = LoadHypothesesFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
