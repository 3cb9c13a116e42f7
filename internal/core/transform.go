package core

// transform.go holds the claim pipeline:
//
//	FilterApproved -> KeepLast -> NormalizeDates -> DropColumns
//
// Every stage takes a table and returns a new one; inputs are never
// modified. A stage error aborts the pipeline before anything is returned.

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FilterApproved keeps rows whose ClaimStatus is exactly "R", preserving
// order. Padded or lower-case values do not match. A missing ClaimStatus column is
// an error rather than an empty result.
func FilterApproved(t *Table) (*Table, error) {
	if err := requireColumns(t, "filter", ColClaimStatus); err != nil {
		return nil, err
	}
	idx := t.Index(ColClaimStatus)

	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if row[idx].Text == ApprovedStatus {
			out.Rows = append(out.Rows, append(Row(nil), row...))
		}
	}
	return out, nil
}

// DefaultClaimIDColumn is the identifier column used for duplicate detection.
const DefaultClaimIDColumn = "Claim Number"

// ClaimIDAliases are tried, in order, after the configured identifier column.
var ClaimIDAliases = []string{"Claim Number", "Claim No", "ClaimNo", "Claim ID", "ClaimID", "Claim Id"}

// DedupKey picks the identifier column for KeepLast.
type DedupKey struct {
	// Column is the preferred identifier column. Empty means DefaultClaimIDColumn.
	Column string
}

// resolve returns the identifier column index in t, or -1 if the table has
// no identifier column and whole rows must be compared.
func (k DedupKey) resolve(t *Table) int {
	preferred := k.Column
	if preferred == "" {
		preferred = DefaultClaimIDColumn
	}
	if i := t.IndexFold(preferred); i >= 0 {
		return i
	}
	for _, alias := range ClaimIDAliases {
		if i := t.IndexFold(alias); i >= 0 {
			return i
		}
	}
	return -1
}

// KeyColumn returns the identifier column name used for t, or "" when
// whole rows are compared.
func (k DedupKey) KeyColumn(t *Table) string {
	if i := k.resolve(t); i >= 0 {
		return t.Columns[i]
	}
	return ""
}

// KeepLast removes earlier duplicates, keeping the last occurrence of each
// key. Survivors keep their relative input order.
//
// The key is the claim identifier. Rows with a blank identifier, and every
// row when the table has no identifier column, are keyed by a hash of the
// whole row so that only identical rows collapse.
func KeepLast(t *Table, key DedupKey) *Table {
	idCol := key.resolve(t)

	keys := make([]string, len(t.Rows))
	last := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		k := ""
		if idCol >= 0 {
			if id := strings.TrimSpace(row[idCol].String()); id != "" {
				k = "id:" + id
			}
		}
		if k == "" {
			k = "row:" + rowHash(row)
		}
		keys[i] = k
		last[k] = i
	}

	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i, row := range t.Rows {
		if last[keys[i]] == i {
			out.Rows = append(out.Rows, append(Row(nil), row...))
		}
	}
	return out
}

// rowHash hashes the rendered cells of a row. Fields are separated by a
// unit separator so ("a,b","c") and ("a","b,c") differ.
func rowHash(row Row) string {
	digest := xxhash.New()
	for i, c := range row {
		if i > 0 {
			digest.Write([]byte{0x1f})
		}
		digest.WriteString(c.String())
	}
	return hex.EncodeToString(digest.Sum(nil))
}

// NormalizeDates parses every cell of the date columns. Cells that cannot
// be parsed become the not-a-date sentinel, and each column holding at
// least one sentinel yields exactly one warning. Missing date columns are
// skipped. This step never fails.
func NormalizeDates(t *Table) (*Table, []Warning) {
	out := t.Clone()
	var warnings []Warning

	for _, col := range DateColumns {
		idx := out.Index(col)
		if idx < 0 {
			continue
		}

		invalid := 0
		for _, row := range out.Rows {
			c := row[idx]
			if c.Kind == CellDate {
				// Already normalized; keep as is.
				if c.IsNotADate() {
					invalid++
				}
				continue
			}
			if d, ok := ParseDate(c.Text); ok {
				row[idx] = DateCell(d)
			} else {
				row[idx] = NotADate(c.Text)
				invalid++
			}
		}

		if invalid > 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnInvalidDate,
				Column:  out.Columns[idx],
				Count:   invalid,
				Message: fmt.Sprintf("Invalid date values detected in column '%s'. Coerced to not-a-date.", out.Columns[idx]),
			})
		}
	}

	return out, warnings
}

// DropColumns removes the named columns if present. Names match exactly;
// absent names are ignored. Remaining columns keep their relative order.
func DropColumns(t *Table, names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	keep := make([]int, 0, len(t.Columns))
	out := &Table{}
	for i, c := range t.Columns {
		if drop[c] {
			continue
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, c)
	}

	out.Rows = make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		projected := make(Row, len(keep))
		for j, i := range keep {
			projected[j] = row[i]
		}
		out.Rows[r] = projected
	}
	return out
}

// TransformOptions configures Transform.
type TransformOptions struct {
	Key DedupKey
}

// Transformed is the result of a successful Transform.
type Transformed struct {
	Table    *Table
	Warnings []Warning
	Stats    Stats
}

// Transform runs the full pipeline over t.
func Transform(t *Table, opts TransformOptions) (*Transformed, error) {
	filtered, err := FilterApproved(t)
	if err != nil {
		return nil, err
	}

	deduped := KeepLast(filtered, opts.Key)
	dated, warnings := NormalizeDates(deduped)
	projected := DropColumns(dated, LegacyColumns...)

	return &Transformed{
		Table:    projected,
		Warnings: warnings,
		Stats: Stats{
			InputRows:  t.Len(),
			Approved:   filtered.Len(),
			Duplicates: filtered.Len() - deduped.Len(),
			OutputRows: projected.Len(),
		},
	}, nil
}
