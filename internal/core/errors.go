package core

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies pipeline failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput: a required column is missing.
	KindInvalidInput
	// KindMalformedValue: a cell failed to parse. Recovered locally, never returned.
	KindMalformedValue
	// KindIO: the upload is not tabular data or the export could not be written.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindMalformedValue:
		return "malformed_value"
	case KindIO:
		return "io_error"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidCSV is returned when the upload cannot be parsed as CSV.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrEmptyFile is returned when the upload has no header or no bytes.
	ErrEmptyFile = errors.New("empty file")

	// ErrFileTooLarge is returned when the upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrExport is returned when the workbook cannot be written or read back.
	ErrExport = errors.New("export failed")
)

// MissingColumnError reports required columns absent from the upload.
type MissingColumnError struct {
	Column  string   // first missing column
	Columns []string // every missing column, in check order
	Stage   string   // pipeline stage that needed the column
}

func (e *MissingColumnError) Error() string {
	cols := e.Columns
	if len(cols) == 0 {
		cols = []string{e.Column}
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s: missing required column %s", e.Stage, strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("missing required column %s", strings.Join(quoted, ", "))
}

// requireColumns returns a MissingColumnError for the columns t lacks.
func requireColumns(t *Table, stage string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingColumnError{Column: missing[0], Columns: missing, Stage: stage}
}

// KindOf returns the error's category.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var mc *MissingColumnError
	switch {
	case errors.As(err, &mc):
		return KindInvalidInput
	case errors.Is(err, ErrInvalidCSV), errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrExport):
		return KindIO
	default:
		return KindUnknown
	}
}
