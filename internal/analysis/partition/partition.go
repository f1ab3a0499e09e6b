package partition

import (
	"fmt"
	"sort"

	"riskhypo/domain/core"
	domainDataset "riskhypo/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// Group is the non-missing metric values sharing one group label
type Group struct {
	Label  string
	Values []float64
	Rows   []int
}

// Size returns the retained observation count
func (g Group) Size() int { return len(g.Values) }

// Partition is the result of splitting a metric by a grouping column.
// Every row of the dataset ends up in exactly one of Groups, Undersized or MissingRows.
type Partition struct {
	Metric      string
	GroupColumn string
	MinSize     int
	Groups      []Group // at least MinSize values each, in first-encounter order
	Undersized  []Group
	MissingRows []int // metric or group value missing
}

// Labels returns the surviving group labels
func (p Partition) Labels() []string {
	out := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		out[i] = g.Label
	}
	return out
}

// Sizes returns the surviving group sizes
func (p Partition) Sizes() []int {
	out := make([]int, len(p.Groups))
	for i, g := range p.Groups {
		out[i] = g.Size()
	}
	return out
}

// Samples returns the surviving groups' values
func (p Partition) Samples() [][]float64 {
	out := make([][]float64, len(p.Groups))
	for i, g := range p.Groups {
		out[i] = g.Values
	}
	return out
}

// ExcludedRows counts rows dropped for missing values or undersized groups
func (p Partition) ExcludedRows() int {
	n := len(p.MissingRows)
	for _, g := range p.Undersized {
		n += g.Size()
	}
	return n
}

// Split partitions the non-missing values of metric by the distinct values of
// groupColumn and keeps the groups with at least minSize values.
func Split(ds *domainDataset.Dataset, metric, groupColumn string, minSize int) (Partition, error) {
	all, err := groupAll(ds, metric, groupColumn)
	if err != nil {
		return Partition{}, err
	}
	p := Partition{Metric: metric, GroupColumn: groupColumn, MinSize: minSize, MissingRows: all.missing}
	for _, g := range all.groups {
		if g.Size() >= minSize {
			p.Groups = append(p.Groups, g)
		} else {
			p.Undersized = append(p.Undersized, g)
		}
	}
	return p, nil
}

// PairPartition is a fixed two-group comparison. When Feasible is false no
// test should be run and Reason says why.
type PairPartition struct {
	Metric      string
	GroupColumn string
	A, B        Group
	Feasible    bool
	Reason      string
}

// Pair extracts the two named groups. Other groups are ignored.
func Pair(ds *domainDataset.Dataset, metric, groupColumn, a, b string, minSize int) (PairPartition, error) {
	all, err := groupAll(ds, metric, groupColumn)
	if err != nil {
		return PairPartition{}, err
	}
	pp := PairPartition{
		Metric:      metric,
		GroupColumn: groupColumn,
		A:           Group{Label: a},
		B:           Group{Label: b},
	}
	for _, g := range all.groups {
		switch g.Label {
		case a:
			pp.A = g
		case b:
			pp.B = g
		}
	}
	switch {
	case pp.A.Size() < minSize && pp.B.Size() < minSize:
		pp.Reason = fmt.Sprintf("%s has %d and %s has %d observations, need %d each", a, pp.A.Size(), b, pp.B.Size(), minSize)
	case pp.A.Size() < minSize:
		pp.Reason = fmt.Sprintf("%s has %d observations, need %d", a, pp.A.Size(), minSize)
	case pp.B.Size() < minSize:
		pp.Reason = fmt.Sprintf("%s has %d observations, need %d", b, pp.B.Size(), minSize)
	default:
		pp.Feasible = true
	}
	return pp, nil
}

// SegmentMean is the mean of a metric within one group
type SegmentMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// SegmentMeans returns the per-group mean of metric, lowest first
func SegmentMeans(ds *domainDataset.Dataset, metric, groupColumn string) ([]SegmentMean, error) {
	all, err := groupAll(ds, metric, groupColumn)
	if err != nil {
		return nil, err
	}
	out := make([]SegmentMean, 0, len(all.groups))
	for _, g := range all.groups {
		out = append(out, SegmentMean{Group: g.Label, Mean: stat.Mean(g.Values, nil), Count: g.Size()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean < out[j].Mean })
	return out, nil
}

type grouping struct {
	groups  []Group
	missing []int
}

func groupAll(ds *domainDataset.Dataset, metric, groupColumn string) (grouping, error) {
	values, err := ds.MustColumn(metric)
	if err != nil {
		return grouping{}, err
	}
	if !values.IsNumeric() {
		return grouping{}, fmt.Errorf("%w: %s", core.ErrNotNumeric, metric)
	}
	labels, err := ds.MustColumn(groupColumn)
	if err != nil {
		return grouping{}, err
	}

	var out grouping
	index := make(map[string]int)
	for i := 0; i < ds.Rows(); i++ {
		x, ok := values.At(i).Float()
		label := labels.At(i)
		if !ok || label.IsMissing() {
			out.missing = append(out.missing, i)
			continue
		}
		key := label.String()
		pos, seen := index[key]
		if !seen {
			pos = len(out.groups)
			index[key] = pos
			out.groups = append(out.groups, Group{Label: key})
		}
		out.groups[pos].Values = append(out.groups[pos].Values, x)
		out.groups[pos].Rows = append(out.groups[pos].Rows, i)
	}
	return out, nil
}
