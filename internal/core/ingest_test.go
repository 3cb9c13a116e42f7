package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// ReadTable Tests
// ============================================================================

func TestReadTable(t *testing.T) {
	data := []byte("Claim Number,ClaimStatus,Billed\nC1,R,100\nC2,P,200\n")

	table, err := ReadTable(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Claim Number", "ClaimStatus", "Billed"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"C1", "R", "100"}, table.Rows[0].Strings())
	assert.Equal(t, []string{"C2", "P", "200"}, table.Rows[1].Strings())
	for _, c := range table.Rows[0] {
		assert.Equal(t, CellText, c.Kind)
	}
}

func TestReadTable_Cleanup(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantColumns []string
		wantRows    [][]string
	}{
		{
			name:        "byte order mark stripped",
			input:       "\xEF\xBB\xBFClaimStatus,Billed\nR,1\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{{"R", "1"}},
		},
		{
			name:        "leading blank lines skipped",
			input:       "\n,,\nClaimStatus,Billed\nR,1\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{{"R", "1"}},
		},
		{
			name:        "blank data rows skipped",
			input:       "ClaimStatus,Billed\nR,1\n,\n\nR,2\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{{"R", "1"}, {"R", "2"}},
		},
		{
			name:        "short rows padded",
			input:       "ClaimStatus,Billed,Unpaid\nR,1\n",
			wantColumns: []string{"ClaimStatus", "Billed", "Unpaid"},
			wantRows:    [][]string{{"R", "1", ""}},
		},
		{
			name:        "trailing empty header cells dropped",
			input:       "ClaimStatus,Billed,,\nR,1,,\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{{"R", "1"}},
		},
		{
			name:        "header whitespace trimmed",
			input:       " ClaimStatus , Billed \nR,1\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{{"R", "1"}},
		},
		{
			name:        "quoted fields with commas",
			input:       "ClaimStatus,Member\nR,\"Doe, Jane\"\n",
			wantColumns: []string{"ClaimStatus", "Member"},
			wantRows:    [][]string{{"R", "Doe, Jane"}},
		},
		{
			name:        "crlf line endings",
			input:       "ClaimStatus,Billed\r\nR,1\r\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{{"R", "1"}},
		},
		{
			name:        "header only",
			input:       "ClaimStatus,Billed\n",
			wantColumns: []string{"ClaimStatus", "Billed"},
			wantRows:    [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadTable([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, table.Columns)

			got := make([][]string, 0, table.Len())
			for _, r := range table.Rows {
				got = append(got, r.Strings())
			}
			assert.Equal(t, tt.wantRows, got)
		})
	}
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantText string
	}{
		{name: "no bytes", input: "", wantErr: ErrEmptyFile},
		{name: "whitespace only", input: " \n\n ", wantErr: ErrEmptyFile},
		{name: "only blank rows", input: ",,\n,,\n", wantErr: ErrEmptyFile},
		{name: "duplicate header", input: "Billed,Billed\n1,2\n", wantErr: ErrInvalidCSV, wantText: "duplicate header"},
		{name: "blank header cell", input: "Billed,,Unpaid\n1,2,3\n", wantErr: ErrInvalidCSV, wantText: "blank"},
		{name: "row wider than header", input: "A,B\n1,2,3\n", wantErr: ErrInvalidCSV, wantText: "line 2 has 3 fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error %v should wrap %v", err, tt.wantErr)
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
			assert.Equal(t, KindIO, KindOf(err))
		})
	}
}

func TestReadTableFrom(t *testing.T) {
	table, err := ReadTableFrom(strings.NewReader("ClaimStatus\nR\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}


// ============================================================================
// sanitizeUTF8 Tests
// ============================================================================

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{
			name:  "valid UTF-8 unchanged",
			input: []byte("hello world"),
			want:  []byte("hello world"),
		},
		{
			name:  "empty input",
			input: []byte{},
			want:  []byte{},
		},
		{
			name:  "valid unicode",
			input: []byte("hello \xe4\xb8\x96\xe7\x95\x8c"), // hello 世界
			want:  []byte("hello \xe4\xb8\x96\xe7\x95\x8c"),
		},
		{
			name:  "emoji preserved",
			input: []byte("hello \xf0\x9f\x91\x8b"), // hello 👋
			want:  []byte("hello \xf0\x9f\x91\x8b"),
		},
		{
			name:  "invalid byte replaced with replacement char",
			input: []byte{0x80}, // Invalid UTF-8 start byte
			want:  []byte("\uFFFD"),
		},
		{
			name:  "truncated multibyte sequence",
			input: []byte{0xc3}, // Start of 2-byte sequence, missing continuation
			want:  []byte("\uFFFD"),
		},
		{
			name:  "mixed valid and invalid",
			input: []byte("hello\x80world"),
			want:  []byte("hello\uFFFDworld"),
		},
		{
			name:  "multiple invalid bytes",
			input: []byte{0x80, 0x81, 0x82},
			want:  []byte("\uFFFD\uFFFD\uFFFD"),
		},
		{
			name:  "invalid continuation byte without lead",
			input: []byte("abc\xbfdef"), // 0xBF is a continuation byte
			want:  []byte("abc\uFFFDdef"),
		},
		{
			name:  "overlong encoding (2 bytes for ASCII)",
			input: []byte{0xc0, 0x80}, // Overlong encoding for NULL
			want:  []byte("\uFFFD\uFFFD"),
		},
		{
			name:  "Windows-1252 characters replaced",
			input: []byte("hello\x93world\x94"), // Smart quotes in Windows-1252
			want:  []byte("hello\uFFFDworld\uFFFD"),
		},
		{
			name:  "Latin-1 high bytes replaced",
			input: []byte("caf\xe9"), // e9 is Latin-1 'e with acute'
			want:  []byte("caf\uFFFD"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeUTF8(tt.input)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("sanitizeUTF8(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeUTF8_PreservesValid ensures valid UTF-8 passes through unchanged
func TestSanitizeUTF8_PreservesValid(t *testing.T) {
	// Various valid UTF-8 strings
	inputs := []string{
		"",
		"ASCII only",
		"Cafe with accent: cafe",
		"Chinese: world",
		"Emoji: party popper",
		"Japanese: hello",
		"Mixed: Hello world party",
		"Numbers: 1234567890",
		"Punctuation: !@#$%^&*()",
		"Newlines: line1\nline2\r\nline3",
		"Tabs: col1\tcol2\tcol3",
	}

	for _, input := range inputs {
		t.Run(input[:min(20, len(input))], func(t *testing.T) {
			inputBytes := []byte(input)
			got := sanitizeUTF8(inputBytes)
			if !bytes.Equal(got, inputBytes) {
				t.Errorf("sanitizeUTF8(%q) modified valid UTF-8", input)
			}
		})
	}
}

// ============================================================================
// isEmptyRow Tests
// ============================================================================

func TestIsEmptyRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{
			name: "empty slice",
			row:  []string{},
			want: true,
		},
		{
			name: "single empty string",
			row:  []string{""},
			want: true,
		},
		{
			name: "multiple empty strings",
			row:  []string{"", "", ""},
			want: true,
		},
		{
			name: "whitespace only cells",
			row:  []string{"   ", "\t", "  \t  "},
			want: true,
		},
		{
			name: "newlines only",
			row:  []string{"\n", "\r\n", "\r"},
			want: true,
		},
		{
			name: "single non-empty cell",
			row:  []string{"data"},
			want: false,
		},
		{
			name: "non-empty with empties",
			row:  []string{"", "data", ""},
			want: false,
		},
		{
			name: "non-empty last cell",
			row:  []string{"", "", "data"},
			want: false,
		},
		{
			name: "non-empty first cell",
			row:  []string{"data", "", ""},
			want: false,
		},
		{
			name: "all non-empty",
			row:  []string{"a", "b", "c"},
			want: false,
		},
		{
			name: "whitespace and data",
			row:  []string{"   ", "data", "\t"},
			want: false,
		},
		{
			name: "single space is not data",
			row:  []string{" "},
			want: true,
		},
		{
			name: "number zero is data",
			row:  []string{"0"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isEmptyRow(tt.row)
			if got != tt.want {
				t.Errorf("isEmptyRow(%v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

// ============================================================================
// stripBOM Tests
// ============================================================================

