package equivalence

import (
	"sort"

	domainDataset "riskhypo/domain/dataset"

	"gonum.org/v1/gonum/floats"
)

// Crosstab is a row-normalised contingency table of a group column against a
// feature. Shares[i][j] is the fraction of group i rows whose feature is Levels[j].
// Groups of comparable composition have similar rows.
type Crosstab struct {
	GroupColumn string      `json:"group_column"`
	Feature     string      `json:"feature"`
	Groups      []string    `json:"groups"`
	Levels      []string    `json:"levels"`
	Counts      [][]int     `json:"counts"`
	Shares      [][]float64 `json:"shares"`
}

// Build counts the feature levels within each group. Rows missing either
// value are left out. Groups and levels are sorted.
func Build(ds *domainDataset.Dataset, groupColumn, feature string) (*Crosstab, error) {
	groups, err := ds.MustColumn(groupColumn)
	if err != nil {
		return nil, err
	}
	levels, err := ds.MustColumn(feature)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]map[string]int)
	levelSet := make(map[string]struct{})
	for i := 0; i < ds.Rows(); i++ {
		g, l := groups.At(i), levels.At(i)
		if g.IsMissing() || l.IsMissing() {
			continue
		}
		gk, lk := g.String(), l.String()
		if counts[gk] == nil {
			counts[gk] = make(map[string]int)
		}
		counts[gk][lk]++
		levelSet[lk] = struct{}{}
	}

	ct := &Crosstab{GroupColumn: groupColumn, Feature: feature}
	for g := range counts {
		ct.Groups = append(ct.Groups, g)
	}
	for l := range levelSet {
		ct.Levels = append(ct.Levels, l)
	}
	sort.Strings(ct.Groups)
	sort.Strings(ct.Levels)

	for _, g := range ct.Groups {
		row := make([]int, len(ct.Levels))
		share := make([]float64, len(ct.Levels))
		for j, l := range ct.Levels {
			row[j] = counts[g][l]
			share[j] = float64(row[j])
		}
		if total := floats.Sum(share); total > 0 {
			floats.Scale(1/total, share)
		}
		ct.Counts = append(ct.Counts, row)
		ct.Shares = append(ct.Shares, share)
	}
	return ct, nil
}

// MaxShareGap returns the largest absolute difference in any level's share
// between two groups. It is 0 for identical compositions and 1 for disjoint ones.
func (c *Crosstab) MaxShareGap() float64 {
	gap := 0.0
	for j := range c.Levels {
		col := make([]float64, len(c.Groups))
		for i := range c.Groups {
			col[i] = c.Shares[i][j]
		}
		if len(col) > 1 {
			if d := floats.Max(col) - floats.Min(col); d > gap {
				gap = d
			}
		}
	}
	return gap
}
