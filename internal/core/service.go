package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ClaimTemplate/internal/config"
	"github.com/JonMunkholm/ClaimTemplate/internal/logging"
)

// DefaultPreviewRows is how many transformed rows a preview shows.
const DefaultPreviewRows = 5

// Service runs claim conversions. It holds no per-run state: every call to
// Process works on its own table. The only shared piece is the limiter
// bounding how many runs execute at once.
type Service struct {
	maxFileSize int64
	sheetName   string
	previewRows int
	key         DedupKey
	limiter     *UploadLimiter
}

// NewService creates a Service from the application config.
func NewService(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	previewRows := cfg.Template.PreviewRows
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	return &Service{
		maxFileSize: cfg.Upload.MaxFileSize,
		sheetName:   cfg.Template.SheetName,
		previewRows: previewRows,
		key:         DedupKey{Column: cfg.Template.ClaimIDColumn},
		limiter:     NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
	}, nil
}

// Request is one uploaded export to convert.
type Request struct {
	Data       []byte // raw CSV bytes
	SourceName string // uploaded file name, for logs only
	FileName   string // target workbook name; ".xlsx" is appended if missing
}

// Result is everything a presentation layer needs to render a run.
type Result struct {
	RunID    string
	Table    *Table
	Preview  [][]string
	Warnings []Warning
	Summary  Summary
	Stats    Stats
	Export   *Export
	Duration time.Duration
}

// Columns returns the output column names.
func (r *Result) Columns() []string {
	if r == nil || r.Table == nil {
		return nil
	}
	return r.Table.Columns
}

// Process converts one upload: ingest, transform, summarize, export.
// Any failure aborts the run and nothing partial is returned.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID, "file", req.SourceName)

	if s.maxFileSize > 0 && int64(len(req.Data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(req.Data), s.maxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	logger.Info("processing started", "bytes", len(req.Data))

	raw, err := ReadTable(req.Data)
	if err != nil {
		logger.Warn("ingest failed", "error", err)
		return nil, err
	}
	logger.Debug("ingested", "rows", raw.Len(), "columns", len(raw.Columns))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transformed, err := Transform(raw, TransformOptions{Key: s.key})
	if err != nil {
		logger.Warn("transform failed", "error", err)
		return nil, err
	}
	for _, w := range transformed.Warnings {
		logger.Warn("date coercion", "column", w.Column, "invalid", w.Count)
	}
	logger.Debug("transformed",
		"approved", transformed.Stats.Approved,
		"duplicates", transformed.Stats.Duplicates,
		"dedup_key", s.key.KeyColumn(raw),
	)

	summary, err := Summarize(transformed.Table)
	if err != nil {
		logger.Warn("summary failed", "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	export, err := WriteXLSX(transformed.Table, req.FileName, ExportOptions{SheetName: s.sheetName})
	if err != nil {
		logger.Error("export failed", "error", err)
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Table:    transformed.Table,
		Preview:  transformed.Table.Head(s.previewRows),
		Warnings: transformed.Warnings,
		Summary:  summary,
		Stats:    transformed.Stats,
		Export:   export,
		Duration: time.Since(start),
	}

	logger.Info("processing complete",
		"rows", result.Stats.OutputRows,
		"warnings", len(result.Warnings),
		"export_bytes", len(export.Data),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// SheetName returns the export sheet name.
func (s *Service) SheetName() string {
	if s.sheetName == "" {
		return DefaultSheetName
	}
	return s.sheetName
}

// LimiterStatus returns the current concurrency state.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until running conversions finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
