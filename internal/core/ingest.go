package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable parses an uploaded CSV export into a text table.
// The first non-empty row is the header. Fully blank rows are skipped and
// short rows are padded. Errors wrap ErrEmptyFile or ErrInvalidCSV.
func ReadTable(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	headerIdx := -1
	for i, rec := range records {
		if !isEmptyRow(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptyFile
	}

	header, err := cleanHeader(records[headerIdx])
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records)-headerIdx-1)
	for i, rec := range records[headerIdx+1:] {
		lineNum := headerIdx + i + 2 // 1-indexed, after header

		if isEmptyRow(rec) {
			continue
		}
		if len(rec) > len(header) {
			if !isEmptyRow(rec[len(header):]) {
				return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
					ErrInvalidCSV, lineNum, len(rec), len(header))
			}
			rec = rec[:len(header)]
		}
		rows = append(rows, rec)
	}

	return NewTable(header, rows), nil
}

// ReadTableFrom reads all of r and parses it with ReadTable.
func ReadTableFrom(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrInvalidCSV, err)
	}
	return ReadTable(data)
}

// cleanHeader trims header artifacts and rejects duplicate names,
// which would make column lookups ambiguous.
func cleanHeader(raw []string) ([]string, error) {
	// Drop trailing empty header cells left by spreadsheet exports.
	end := len(raw)
	for end > 0 && CleanCell(raw[end-1]) == "" {
		end--
	}

	header := make([]string, end)
	seen := make(map[string]bool, end)
	for i, h := range raw[:end] {
		name := CleanCell(h)
		if name == "" {
			return nil, fmt.Errorf("%w: header column %d is blank", ErrInvalidCSV, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate header column %q", ErrInvalidCSV, name)
		}
		seen[name] = true
		header[i] = name
	}
	return header, nil
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("line %d: %v", pe.Line, pe.Err)
		}
		return nil, err
	}
	return records, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
