package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_EscapesCells(t *testing.T) {
	var b strings.Builder
	err := Result(ResultView{
		FileName: "out.xlsx",
		Columns:  []string{"Claim Number", "<b>Note</b>"},
		Preview:  [][]string{{"C1", `<script>alert("x")</script>`}},
		Warnings: []string{"Invalid date values detected in column 'Treatment Start'. Coerced to not-a-date."},
		Summary:  []SummaryItem{{Label: "Total Claims", Value: "1,234"}},
		Rows:     1,
	}).Render(context.Background(), &b)
	require.NoError(t, err)

	out := b.String()
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&lt;b&gt;Note&lt;/b&gt;")
	assert.Contains(t, out, "Total Claims: 1,234")
	assert.Contains(t, out, "Processing data...")
	assert.Contains(t, out, "out.xlsx")
	assert.Equal(t, 1, strings.Count(out, `class="warning"`))
}

func TestPage_WithoutResult(t *testing.T) {
	var b strings.Builder
	err := Page(UploadFormView{DefaultFileName: `a"b`, MaxFileSizeMB: 50}, nil).Render(context.Background(), &b)
	require.NoError(t, err)

	out := b.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<div id="result"></div>`)
	assert.Contains(t, out, `value="a&#34;b"`)
	assert.Contains(t, out, "Maximum size: 50 MB")
	assert.Contains(t, out, HTMXSource)
}

func TestErrorAlert(t *testing.T) {
	var b strings.Builder
	err := ErrorAlert(`Required column "Accepted" missing from CSV`, "Check the export", "VAL004").Render(context.Background(), &b)
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, `role="alert"`)
	assert.Contains(t, out, "&#34;Accepted&#34;")
	assert.Contains(t, out, "(Code: VAL004)")
}
