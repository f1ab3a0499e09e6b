package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"riskhypo/domain/hypothesis"
	appErrors "riskhypo/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the tabular view with a header row
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(r.Table()); err != nil {
		return err
	}
	return cw.Error()
}

type reportJSON struct {
	RunID            string                  `json:"run_id"`
	InputFingerprint string                  `json:"input_fingerprint"`
	GeneratedAt      string                  `json:"generated_at"`
	Results          []hypothesis.TestResult `json:"results"`
}

// WriteJSON writes the full report including run metadata
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	results := r.results
	if results == nil {
		results = []hypothesis.TestResult{}
	}
	return enc.Encode(reportJSON{
		RunID:            r.RunID.String(),
		InputFingerprint: r.InputFingerprint.String(),
		GeneratedAt:      r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Results:          results,
	})
}

// Markdown renders the report as a markdown document with one table
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Hypothesis Test Results\n\n")
	fmt.Fprintf(&b, "Run `%s`, input `%s`, generated %s.\n\n",
		r.RunID, r.InputFingerprint.Short(), r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if len(r.results) == 0 {
		b.WriteString("No hypothesis had enough data to be tested.\n")
		return b.String()
	}

	b.WriteString("| " + strings.Join(TableHeader, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(TableHeader)) + "\n")
	for _, row := range r.Table() {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// HTML renders the markdown form as a complete HTML page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Hypothesis Test Results",
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// XLSXSheet is the worksheet name used by WriteXLSX
const XLSXSheet = "Results"

// WriteXLSX writes the tabular view as a single-sheet workbook
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return appErrors.Wrap(err, "renaming sheet")
	}

	write := func(row int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return f.SetSheetRow(XLSXSheet, cell, &cells)
	}

	if err := write(1, TableHeader); err != nil {
		return appErrors.Wrap(err, "writing header")
	}
	table := r.Table()
	for i, res := range r.results {
		if err := write(i+2, table[i]); err != nil {
			return appErrors.Wrapf(err, "writing row %d", i+2)
		}
		// keep p-values numeric so they sort and filter in a spreadsheet
		if p := res.PValue; !math.IsNaN(p) && !math.IsInf(p, 0) {
			cell, _ := excelize.CoordinatesToCellName(4, i+2)
			if err := f.SetCellFloat(XLSXSheet, cell, p, -1, 64); err != nil {
				return appErrors.Wrapf(err, "writing p-value row %d", i+2)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return appErrors.Wrap(err, "encoding workbook")
	}
	return nil
}
