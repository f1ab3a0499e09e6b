package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"riskhypo/adapters/datareadiness/coercer"
	"riskhypo/domain/core"
	"riskhypo/domain/dataset"
	"riskhypo/internal"
	apperrors "riskhypo/internal/errors"
	"riskhypo/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader loads a delimited or xlsx file wholesale into a Dataset
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a reader for the configured file
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if config.Delimiter == 0 {
		config.Delimiter = '|'
	}
	if config.Sheet == "" {
		config.Sheet = "Sheet1"
	}
	if config.CoercionConfig.MissingTokens == nil {
		config.CoercionConfig = coercer.DefaultCoercionConfig()
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger.With("reader"),
	}
}

// Load reads the configured file
func (r *DataReader) Load(ctx context.Context) (*ports.LoadedDataset, error) {
	path := r.config.FilePath
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.IngestionFailed(fmt.Sprintf("input file %s not readable", path), err)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch DetectFileType(path) {
	case FileTypeXLSX:
		rows, err = r.readExcelRows(path)
	default:
		rows, err = r.readDelimitedFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := r.buildDataset(rows)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.IngestionFailed("failed to reopen input for fingerprinting", err)
	}
	defer f.Close()
	fingerprint, err := core.HashReader(f)
	if err != nil {
		return nil, apperrors.IngestionFailed("failed to fingerprint input", err)
	}

	r.logger.Info("loaded %s (%d columns, %d rows) in %.2fms, fingerprint %s",
		path, len(ds.ColumnNames()), ds.Rows(), float64(time.Since(start).Nanoseconds())/1e6, fingerprint.Short())

	return &ports.LoadedDataset{Dataset: ds, Fingerprint: fingerprint, Source: path}, nil
}

// ReadDelimited parses delimited text from any reader
func (r *DataReader) ReadDelimited(ctx context.Context, in io.Reader) (*dataset.Dataset, error) {
	rows, err := r.parseDelimited(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.buildDataset(rows)
}

func (r *DataReader) readDelimitedFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.IngestionFailed("failed to open delimited file", err)
	}
	defer f.Close()
	return r.parseDelimited(f)
}

func (r *DataReader) parseDelimited(in io.Reader) ([][]string, error) {
	reader := csv.NewReader(in)
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.IngestionFailed(fmt.Sprintf("failed to parse %q-delimited input", string(r.config.Delimiter)), err)
	}
	return rows, nil
}

// readExcelRows reads the configured sheet
func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.IngestionFailed("failed to open Excel file", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.config.Sheet)
	if err != nil {
		return nil, apperrors.IngestionFailed(fmt.Sprintf("failed to read sheet %s", r.config.Sheet), err)
	}
	return rows, nil
}

// buildDataset turns header + rows into typed columns
func (r *DataReader) buildDataset(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, apperrors.IngestionFailed("input has no header row", nil)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		name := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			return nil, apperrors.IngestionFailed(fmt.Sprintf("duplicate column %q in header", name), core.ErrDuplicateColumn)
		}
		seen[name] = true
		headers[i] = name
	}

	data := rows[1:]
	raw := make([][]string, len(headers))
	for j := range raw {
		raw[j] = make([]string, len(data))
	}
	for i, row := range data {
		if len(row) > len(headers) {
			return nil, apperrors.IngestionFailed(
				fmt.Sprintf("line %d has %d fields, header has %d", i+2, len(row), len(headers)), nil)
		}
		// short rows are padded with missing cells
		for j, cell := range row {
			raw[j][i] = cell
		}
	}

	columns := make([]*dataset.Column, len(headers))
	for j, name := range headers {
		columns[j] = r.coercer.CoerceColumn(name, raw[j])
		r.logger.Debug("column %s typed as %s", name, columns[j].Type())
	}

	ds, err := dataset.New(columns...)
	if err != nil {
		return nil, apperrors.IngestionFailed("failed to assemble dataset", err)
	}
	return ds, nil
}
