package config

import (
	"fmt"
	"os"

	"riskhypo/domain/hypothesis"
	"riskhypo/internal/errors"

	"gopkg.in/yaml.v3"
)

// hypothesisEntry is one declaration in a hypotheses file:
//
//	hypotheses:
//	  - name: No significant risk difference between Women and Men
//	    metric: LossRatio
//	    group: Gender
//	    pair: [Male, Female]
//	    min_group_size: 30
type hypothesisEntry struct {
	Name         string   `yaml:"name" validate:"required"`
	Metric       string   `yaml:"metric" validate:"required"`
	Group        string   `yaml:"group" validate:"required"`
	Pair         []string `yaml:"pair" validate:"omitempty,len=2,dive,required"`
	MinGroupSize int      `yaml:"min_group_size" validate:"gte=0"`
}

type hypothesesFile struct {
	Hypotheses []hypothesisEntry `yaml:"hypotheses" validate:"required,min=1,dive"`
}

// LoadHypothesesFile reads hypothesis declarations from a YAML file
func LoadHypothesesFile(path string) ([]hypothesis.Hypothesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading hypotheses file %s", path)
	}
	return ParseHypotheses(data)
}

// ParseHypotheses decodes and validates YAML hypothesis declarations, keeping their order
func ParseHypotheses(data []byte) ([]hypothesis.Hypothesis, error) {
	var file hypothesesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("decoding hypotheses: %w", err))
	}
	if err := validate.Struct(file); err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, err)
	}

	out := make([]hypothesis.Hypothesis, 0, len(file.Hypotheses))
	for _, e := range file.Hypotheses {
		h := hypothesis.Hypothesis{
			Name:         e.Name,
			Metric:       e.Metric,
			GroupColumn:  e.Group,
			MinGroupSize: e.MinGroupSize,
		}
		if len(e.Pair) == 2 {
			h.Pair = &hypothesis.GroupPair{A: e.Pair[0], B: e.Pair[1]}
		}
		out = append(out, h)
	}
	return out, nil
}
