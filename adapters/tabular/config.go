package tabular

import (
	"path/filepath"
	"strings"

	"riskhypo/adapters/datareadiness/coercer"
)

// FileType is the container format of an input file
type FileType string

const (
	FileTypeDelimited FileType = "delimited"
	FileTypeXLSX      FileType = "xlsx"
)

// ReaderConfig holds configuration for a tabular data source
type ReaderConfig struct {
	FilePath       string                 `json:"file_path" validate:"required"`
	Delimiter      rune                   `json:"delimiter"`
	Sheet          string                 `json:"sheet"`
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultReaderConfig returns defaults for pipe-delimited policy extracts
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Delimiter:      '|',
		Sheet:          "Sheet1",
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}

// DetectFileType picks the container format from the file extension
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	default:
		return FileTypeDelimited
	}
}

// ParseDelimiter maps a configuration string to a delimiter rune.
// "\t", "tab" and "pipe" are accepted as names.
func ParseDelimiter(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "":
		return '|', true
	case `\t`, "tab", "\t":
		return '\t', true
	case "pipe":
		return '|', true
	case "comma":
		return ',', true
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, false
	}
	return r[0], true
}
