package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"riskhypo/app"
	"riskhypo/internal/analysis/equivalence"
	"riskhypo/internal/analysis/partition"
	"riskhypo/internal/profiling"
	"riskhypo/internal/report"
	"riskhypo/internal/testkit"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeReport writes the report in the requested format to output, or stdout when empty
func writeReport(result *app.PipelineResult, format, output string) error {
	rep := result.Report
	format = strings.ToLower(format)
	if format == "xlsx" && output == "" {
		return fmt.Errorf("xlsx output needs --output")
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "table":
		fmt.Fprintln(w, newTable(report.TableHeader, rep.Table()))
		for _, ev := range result.Skipped() {
			fmt.Fprintf(w, "skipped %q: %s\n", ev.Hypothesis.Name, ev.SkipReason)
		}
		return nil
	case "csv":
		return rep.WriteCSV(w)
	case "json":
		return rep.WriteJSON(w)
	case "markdown", "md":
		_, err := io.WriteString(w, rep.Markdown())
		return err
	case "html":
		_, err := w.Write(rep.HTML())
		return err
	case "xlsx":
		return rep.WriteXLSX(w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func renderProfiles(profiles []profiling.ColumnProfile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		row := []string{
			p.Name, string(p.Type), strconv.Itoa(p.Missing),
			fmt.Sprintf("%.2f%%", p.MissingPercent), strconv.Itoa(p.Distinct),
			"", "", "", "",
		}
		if s := p.Summary; s != nil {
			row[5] = formatFloat(s.Mean)
			row[6] = formatFloat(s.StdDev)
			row[7] = formatFloat(s.Min)
			row[8] = formatFloat(s.Max)
		}
		rows = append(rows, row)
	}
	return newTable([]string{"Column", "Type", "Missing", "Missing %", "Distinct", "Mean", "Std", "Min", "Max"}, rows)
}

func renderCrosstab(ct *equivalence.Crosstab) string {
	headers := append([]string{ct.GroupColumn + " \\ " + ct.Feature}, ct.Levels...)
	rows := make([][]string, 0, len(ct.Groups))
	for i, g := range ct.Groups {
		row := []string{g}
		for _, share := range ct.Shares[i] {
			row = append(row, formatFloat(share))
		}
		rows = append(rows, row)
	}
	return newTable(headers, rows)
}

func renderSegments(metric, group string, means []partition.SegmentMean) string {
	rows := make([][]string, 0, len(means))
	for _, m := range means {
		rows = append(rows, []string{m.Group, formatFloat(m.Mean), strconv.Itoa(m.Count)})
	}
	return newTable([]string{group, "Mean " + metric, "Rows"}, rows)
}

func runGenerate(output string, rows int, seed int64) error {
	cfg := testkit.DefaultInsuranceConfig()
	cfg.PolicyCount = rows
	cfg.Seed = seed
	gen := testkit.NewInsuranceDataGenerator(cfg)
	if output == "" {
		return gen.WriteDelimited(os.Stdout)
	}
	if err := gen.WriteToFile(output); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d policies to %s\n", rows, output)
	return nil
}
