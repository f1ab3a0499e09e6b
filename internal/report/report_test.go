package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"

	"riskhypo/domain/core"
	"riskhypo/domain/hypothesis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []hypothesis.TestResult {
	hs := hypothesis.DefaultHypotheses()
	return []hypothesis.TestResult{
		hypothesis.NewTestResult(hs[0], hypothesis.GroupDescriptor("Province", 3), 4.2, 0.00412345, []string{"Gauteng", "Natal", "Limpopo"}, []int{40, 35, 31}),
		hypothesis.NewTestResult(hs[3], hs[3].Pair.String(), 1.1, 0.27, []string{"Male", "Female"}, []int{35, 35}),
	}
}

func sampleReport() *Report {
	agg := NewAggregator(core.NewRunID(), core.NewHash([]byte("input")))
	for _, r := range sampleResults() {
		agg.Append(r)
	}
	return agg.Report()
}

func TestAggregator_PreservesOrderAndDuplicates(t *testing.T) {
	agg := NewAggregator(core.NewRunID(), "")
	res := sampleResults()
	agg.Append(res[1])
	agg.Append(res[0])
	agg.Append(res[1])

	rep := agg.Report()
	require.Equal(t, 3, rep.Len())
	got := rep.Results()
	assert.Equal(t, res[1].Hypothesis, got[0].Hypothesis)
	assert.Equal(t, res[0].Hypothesis, got[1].Hypothesis)
	assert.Equal(t, res[1].Hypothesis, got[2].Hypothesis)
}

func TestAggregator_SnapshotIsIndependent(t *testing.T) {
	agg := NewAggregator(core.NewRunID(), "")
	agg.Append(sampleResults()[0])
	rep := agg.Report()

	agg.Append(sampleResults()[1])

	assert.Equal(t, 1, rep.Len())
	assert.Equal(t, 2, agg.Len())

	results := rep.Results()
	results[0].Hypothesis = "changed"
	assert.NotEqual(t, "changed", rep.Results()[0].Hypothesis)
}

func TestAggregator_ConcurrentAppends(t *testing.T) {
	agg := NewAggregator(core.NewRunID(), "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Append(sampleResults()[0])
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, agg.Report().Len())
}

func TestReport_Table(t *testing.T) {
	rows := sampleReport().Table()
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"No risk differences across provinces",
		"LossRatio",
		"Province (3 groups)",
		"0.0041",
		"Reject H₀",
		"There is a significant difference in lossratio across Province groups.",
	}, rows[0])
	assert.Equal(t, "Fail to Reject H₀", rows[1][4])
	assert.Equal(t, "Male vs Female", rows[1][2])
}

func TestReport_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Hypothesis,Metric,Group,p-value,Decision,Interpretation", lines[0])
	assert.Contains(t, lines[2], "0.27")
}

func TestReport_WriteJSON_NonFiniteAsNull(t *testing.T) {
	h := hypothesis.DefaultHypotheses()[3]
	res := hypothesis.NewTestResult(h, h.Pair.String(), math.Inf(1), 0, []string{"Male", "Female"}, []int{30, 30})
	rep := New(core.NewRunID(), "abc", sampleReport().GeneratedAt, []hypothesis.TestResult{res})

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))

	var decoded struct {
		RunID   string                   `json:"run_id"`
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, rep.RunID.String(), decoded.RunID)
	require.Len(t, decoded.Results, 1)
	assert.Nil(t, decoded.Results[0]["statistic"])
	assert.Equal(t, 0.0, decoded.Results[0]["p_value"])
}

func TestReport_MarkdownAndHTML(t *testing.T) {
	rep := sampleReport()

	md := rep.Markdown()
	assert.Contains(t, md, "| Hypothesis | Metric | Group | p-value | Decision | Interpretation |")
	assert.Contains(t, md, "Province (3 groups)")

	page := string(rep.HTML())
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<title>Hypothesis Test Results</title>")

	empty := New(core.NewRunID(), "", rep.GeneratedAt, nil)
	assert.Contains(t, empty.Markdown(), "No hypothesis had enough data")
}

func TestReport_WriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(XLSXSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, TableHeader, rows[0])
	assert.Equal(t, "Province (3 groups)", rows[1][2])
	assert.Equal(t, "0.0041", rows[1][3])
}
