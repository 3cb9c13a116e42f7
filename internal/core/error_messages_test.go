package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing column names the column",
			err:         &MissingColumnError{Column: "Accepted", Columns: []string{"Accepted"}, Stage: "summarize"},
			wantCode:    "VAL004",
			wantMessage: `Required column "Accepted" missing from CSV`,
		},
		{
			name:        "several missing columns",
			err:         &MissingColumnError{Column: "Billed", Columns: []string{"Billed", "Unpaid"}},
			wantCode:    "VAL004",
			wantMessage: `Required columns "Billed", "Unpaid" missing from CSV`,
		},
		{
			name:        "wrapped missing column",
			err:         fmt.Errorf("run: %w", &MissingColumnError{Column: "ClaimStatus"}),
			wantCode:    "VAL004",
			wantMessage: `Required column "ClaimStatus" missing from CSV`,
		},
		{
			name:        "file too large maps correctly",
			err:         fmt.Errorf("%w: 200 bytes exceeds 100", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "invalid csv maps correctly",
			err:         fmt.Errorf("%w: line 3 has 4 fields, header has 2", ErrInvalidCSV),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "empty file maps correctly",
			err:         ErrEmptyFile,
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "export failure maps correctly",
			err:         fmt.Errorf("%w: flush: disk full", ErrExport),
			wantCode:    "EXP001",
			wantMessage: "The spreadsheet could not be created",
		},
		{
			name:        "busy limiter maps correctly",
			err:         ErrTooManyUploads,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "cancelled request",
			err:         context.Canceled,
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "timed out request",
			err:         context.DeadlineExceeded,
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CSV: bare quote"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptyFile)

	expected := "The uploaded file is empty (Code: FILE005). Please upload a CSV file with a header row"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  &MissingColumnError{Column: "Unpaid"},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("%w: record on line 2: wrong number of fields", ErrInvalidCSV)
		userErr := NewUserError(techErr)

		if userErr.Error() != "File is not a valid CSV" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
		if !errors.Is(userErr, ErrInvalidCSV) {
			t.Error("sentinel should survive wrapping")
		}
	})
}
