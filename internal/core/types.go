package core

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Column names of the claims export.
const (
	ColClaimStatus     = "ClaimStatus"
	ColTreatmentStart  = "Treatment Start"
	ColTreatmentFinish = "Treatment Finish"
	ColPaymentDate     = "Payment Date"
	ColBilled          = "Billed"
	ColAccepted        = "Accepted"
	ColExcessTotal     = "Excess Total"
	ColUnpaid          = "Unpaid"

	// Legacy columns removed from every export.
	ColLegacyStatus = "Claim Status"
	ColLegacyAmount = "BAmount"
)

// ApprovedStatus is the ClaimStatus value of rows kept by the filter.
const ApprovedStatus = "R"

// DateColumns are coerced to dates during normalization, in this order.
var DateColumns = []string{ColTreatmentStart, ColTreatmentFinish, ColPaymentDate}

// AmountColumns are summed by Summarize, in this order.
var AmountColumns = []string{ColBilled, ColAccepted, ColExcessTotal, ColUnpaid}

// LegacyColumns are dropped by the column projection.
var LegacyColumns = []string{ColLegacyStatus, ColLegacyAmount}

// CellKind tells how a Cell should be read.
type CellKind int

const (
	CellText CellKind = iota
	CellDate
)

// Cell is a single table value. Cells start as text at ingest; date
// normalization turns date columns into CellDate. A CellDate whose Date is
// not Valid is the not-a-date sentinel.
type Cell struct {
	Kind CellKind
	Text string
	Date pgtype.Timestamp
}

// TextCell returns a text cell.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// DateCell returns a date cell holding t.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Date: pgtype.Timestamp{Time: t, Valid: true}}
}

// NotADate returns the sentinel date cell. Text keeps the original input.
func NotADate(raw string) Cell {
	return Cell{Kind: CellDate, Text: raw}
}

// IsNotADate reports whether the cell is the date sentinel.
func (c Cell) IsNotADate() bool {
	return c.Kind == CellDate && !c.Date.Valid
}

// HasTime reports whether a date cell carries a time of day.
func (c Cell) HasTime() bool {
	if c.Kind != CellDate || !c.Date.Valid {
		return false
	}
	h, m, s := c.Date.Time.Clock()
	return h != 0 || m != 0 || s != 0 || c.Date.Time.Nanosecond() != 0
}

// String renders the cell for previews and comparisons.
// Dates render as 2006-01-02 (or 2006-01-02 15:04:05 with a time part);
// the sentinel renders as an empty string.
func (c Cell) String() string {
	if c.Kind != CellDate {
		return c.Text
	}
	if !c.Date.Valid {
		return ""
	}
	if c.HasTime() {
		return c.Date.Time.Format("2006-01-02 15:04:05")
	}
	return c.Date.Time.Format("2006-01-02")
}

// Row is one claim record. Cells line up with Table.Columns.
type Row []Cell

// Table is an ordered sequence of rows sharing one column set.
// Row order is the upload order.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a text table from a header and string rows.
// Rows shorter than the header are padded with empty cells.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([]Row, 0, len(rows)),
	}
	for _, r := range rows {
		row := make(Row, len(columns))
		for i := range row {
			if i < len(r) {
				row[i] = TextCell(r[i])
			} else {
				row[i] = TextCell("")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column, matching the name exactly.
// Returns -1 if the column is absent.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IndexFold is Index with a case-insensitive fallback. Only identifier
// lookup uses it; required columns must match exactly.
func (t *Table) IndexFold(name string) int {
	if i := t.Index(name); i >= 0 {
		return i
	}
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Clone returns a deep copy so a stage can work without touching its input.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}

// Head returns up to n rows rendered as strings.
func (t *Table) Head(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = t.Rows[i].Strings()
	}
	return out
}

// Strings renders every cell of the row.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// WarningKind classifies a Warning.
type WarningKind string

const (
	WarnInvalidDate WarningKind = "invalid_date"
)

// Warning is a recoverable problem reported to the operator.
// Date normalization emits at most one warning per column.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Column  string      `json:"column"`
	Count   int         `json:"count"`
	Message string      `json:"message"`
}

// Stats counts rows through the pipeline.
type Stats struct {
	InputRows  int `json:"inputRows"`
	Approved   int `json:"approved"`
	Duplicates int `json:"duplicates"`
	OutputRows int `json:"outputRows"`
}
