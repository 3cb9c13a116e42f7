package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Summary holds the totals shown to the operator after a run.
type Summary struct {
	TotalClaims   int             `json:"totalClaims"`
	TotalBilled   decimal.Decimal `json:"totalBilled"`
	TotalAccepted decimal.Decimal `json:"totalAccepted"`
	TotalExcess   decimal.Decimal `json:"totalExcess"`
	TotalUnpaid   decimal.Decimal `json:"totalUnpaid"`
}

// SummaryLine is one labelled figure of the summary block.
type SummaryLine struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
	Text  string `json:"text"` // comma-grouped Value
}

// Summarize counts the rows of t and sums its amount columns.
// Cells that are blank or not numeric add nothing to a sum. A missing
// amount column is an error; no partial summary is returned.
func Summarize(t *Table) (Summary, error) {
	if err := requireColumns(t, "summarize", AmountColumns...); err != nil {
		return Summary{}, err
	}

	sums := make([]decimal.Decimal, len(AmountColumns))
	for i, col := range AmountColumns {
		idx := t.Index(col)
		sum := decimal.Zero
		for _, row := range t.Rows {
			if d, ok := ParseNumber(row[idx].String()); ok {
				sum = sum.Add(d)
			}
		}
		sums[i] = sum
	}

	return Summary{
		TotalClaims:   t.Len(),
		TotalBilled:   sums[0],
		TotalAccepted: sums[1],
		TotalExcess:   sums[2],
		TotalUnpaid:   sums[3],
	}, nil
}

// Lines returns the five summary figures truncated to integers.
func (s Summary) Lines() []SummaryLine {
	values := []struct {
		label string
		value int64
	}{
		{"Total Claims", int64(s.TotalClaims)},
		{"Total Billed", s.TotalBilled.Truncate(0).IntPart()},
		{"Total Accepted", s.TotalAccepted.Truncate(0).IntPart()},
		{"Total Excess", s.TotalExcess.Truncate(0).IntPart()},
		{"Total Unpaid", s.TotalUnpaid.Truncate(0).IntPart()},
	}

	lines := make([]SummaryLine, len(values))
	for i, v := range values {
		lines[i] = SummaryLine{Label: v.label, Value: v.value, Text: GroupThousands(v.value)}
	}
	return lines
}

// GroupThousands formats n with comma thousand separators: 1234567 -> "1,234,567".
func GroupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
