package coercer

import (
	"math"
	"strconv"
	"strings"

	"riskhypo/domain/dataset"
)

// TypeCoercer turns raw text cells into typed columns with deterministic rules
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold"` // share of present values that must parse as numbers
	BooleanThreshold float64  `json:"boolean_threshold"` // share of present values that must parse as booleans
	MissingTokens    []string `json:"missing_tokens"`    // literal cells read as missing
	TrimSpace        bool     `json:"trim_space"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.95,
		BooleanThreshold: 0.98,
		MissingTokens: []string{
			"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "NULL", "null",
			"None", "#N/A", "<NA>", "#NA", "-nan", "1.#IND", "1.#QNAN",
		},
		TrimSpace: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// IsMissingToken reports whether a raw cell denotes a missing value
func (c *TypeCoercer) IsMissingToken(raw string) bool {
	s := raw
	if c.config.TrimSpace {
		s = strings.TrimSpace(s)
	}
	for _, tok := range c.config.MissingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int               `json:"total_count"`
	ValidCount      int               `json:"valid_count"`
	NumericCount    int               `json:"numeric_count"`
	BooleanCount    int               `json:"boolean_count"`
	NumericRatio    float64           `json:"numeric_ratio"`
	BooleanRatio    float64           `json:"boolean_ratio"`
	RecommendedType dataset.ValueType `json:"recommended_type"`
}

// AnalyzeTypeDistribution decides which type a raw column should be coerced to
func (c *TypeCoercer) AnalyzeTypeDistribution(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}

	for _, cell := range raw {
		if c.IsMissingToken(cell) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.tryParseNumeric(cell); ok {
			analysis.NumericCount++
		}
		if _, ok := c.tryParseBoolean(cell); ok {
			analysis.BooleanCount++
		}
	}

	if analysis.ValidCount == 0 {
		analysis.RecommendedType = dataset.ValueTypeMissing
		return analysis
	}

	analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	analysis.BooleanRatio = float64(analysis.BooleanCount) / float64(analysis.ValidCount)
	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) dataset.ValueType {
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.ValueTypeNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.ValueTypeBoolean
	}
	return dataset.ValueTypeText
}

// CoerceColumn types a raw column. Cells that do not fit the chosen type become missing.
// Dates stay text here; the date normalizer owns date parsing.
func (c *TypeCoercer) CoerceColumn(name string, raw []string) *dataset.Column {
	typ := c.AnalyzeTypeDistribution(raw).RecommendedType
	values := make([]dataset.Value, len(raw))
	for i, cell := range raw {
		values[i] = c.CoerceValue(cell, typ)
	}
	return dataset.NewColumn(name, typ, values)
}

// CoerceValue converts one raw cell to the given type
func (c *TypeCoercer) CoerceValue(raw string, typ dataset.ValueType) dataset.Value {
	if c.IsMissingToken(raw) {
		return dataset.Missing()
	}
	switch typ {
	case dataset.ValueTypeNumeric:
		if n, ok := c.tryParseNumeric(raw); ok {
			return dataset.Number(n)
		}
		return dataset.Missing()
	case dataset.ValueTypeBoolean:
		if b, ok := c.tryParseBoolean(raw); ok {
			return dataset.Boolean(b)
		}
		return dataset.Missing()
	case dataset.ValueTypeMissing:
		return dataset.Missing()
	}
	s := raw
	if c.config.TrimSpace {
		s = strings.TrimSpace(s)
	}
	return dataset.Text(s)
}

// tryParseNumeric parses plain and thousands-separated numbers, with optional
// currency symbols and accounting-style parentheses for negatives
func (c *TypeCoercer) tryParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "R "} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	// thousands separators; the source data uses '.' as the decimal point
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func (c *TypeCoercer) tryParseBoolean(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	}
	return false, false
}
