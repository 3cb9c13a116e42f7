package core

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export defaults.
const (
	DefaultSheetName = "SC"
	DefaultFileName  = "Transformed_Claim_Data"
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxExt          = ".xlsx"
)

// Number formats for date cells.
const (
	dateNumFmt     = "yyyy-mm-dd"
	dateTimeNumFmt = "yyyy-mm-dd hh:mm:ss"
)

// Export is a serialized workbook ready for download.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportOptions configures WriteXLSX.
type ExportOptions struct {
	SheetName string // default "SC"
}

// ExportFileName returns name with the .xlsx extension, appended when
// missing. Directory parts are stripped and a blank name falls back to
// DefaultFileName.
func ExportFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" || name == "" {
		name = DefaultFileName
	}
	if !strings.EqualFold(path.Ext(name), xlsxExt) {
		name += xlsxExt
	}
	return name
}

// WriteXLSX serializes t into a single-sheet workbook: a header row then
// the data rows in table order, without an index column. Valid dates are
// written as Excel dates, sentinel dates as empty cells, canonical numbers
// as numbers and everything else as text. t is not modified.
func WriteXLSX(t *Table, fileName string, opts ExportOptions) (*Export, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %v", ErrExport, err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateNumFmt)})
	if err != nil {
		return nil, fmt.Errorf("%w: date style: %v", ErrExport, err)
	}
	dateTimeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(dateTimeNumFmt)})
	if err != nil {
		return nil, fmt.Errorf("%w: date-time style: %v", ErrExport, err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: stream writer: %v", ErrExport, err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrExport, err)
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			values[i] = xlsxValue(c, dateStyle, dateTimeStyle)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrExport, r+1, err)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrExport, r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("%w: flush: %v", ErrExport, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrExport, err)
	}

	return &Export{
		FileName:    ExportFileName(fileName),
		ContentType: XLSXContentType,
		Data:        buf.Bytes(),
	}, nil
}

// excelFirstExactDate is the first day whose serial number reads back
// unchanged. Earlier days are shifted by Excel's phantom 1900-02-29 or
// precede the epoch entirely.
var excelFirstExactDate = time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)

func xlsxValue(c Cell, dateStyle, dateTimeStyle int) interface{} {
	if c.Kind == CellDate {
		if !c.Date.Valid {
			return nil
		}
		if c.Date.Time.Before(excelFirstExactDate) {
			return c.String()
		}
		style := dateStyle
		if c.HasTime() {
			style = dateTimeStyle
		}
		return excelize.Cell{StyleID: style, Value: c.Date.Time}
	}
	if f, ok := canonicalNumber(c.Text); ok {
		return f
	}
	return c.Text
}

// canonicalNumber reports whether s is a plain number that survives a
// float round trip unchanged, so the workbook shows the same text.
func canonicalNumber(s string) (float64, bool) {
	if s == "" || len(s) > 15 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatFloat(f, 'f', -1, 64) != s {
		return 0, false
	}
	return f, true
}

// ReadXLSX reads a sheet of a workbook back into a text table. The first
// row is the header; short rows are padded to the header width.
func ReadXLSX(data []byte, sheet string) (*Table, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrExport, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrExport, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrExport, sheet)
	}

	return NewTable(rows[0], rows[1:]), nil
}

func strPtr(s string) *string {
	return &s
}
