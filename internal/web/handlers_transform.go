package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/JonMunkholm/ClaimTemplate/internal/core"
	"github.com/JonMunkholm/ClaimTemplate/internal/web/templates"
)

// formOverhead is the multipart framing allowed on top of the file limit.
const formOverhead = 1 << 20

// multipartMemory is how much of a form ParseMultipartForm keeps in memory.
const multipartMemory = 32 << 20

// upload is a parsed conversion form.
type upload struct {
	data       []byte
	sourceName string
	fileName   string
}

// readUpload reads the "file" part and the optional "filename" field.
// Oversized bodies fail with core.ErrFileTooLarge.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, errNoFile
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidCSV, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", core.ErrInvalidCSV, err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", core.ErrFileTooLarge, maxSize)
	}

	fileName := strings.TrimSpace(r.FormValue("filename"))
	if fileName == "" {
		fileName = s.cfg.Template.DefaultFileName
	}

	return &upload{
		data:       data,
		sourceName: header.Filename,
		fileName:   fileName,
	}, nil
}

// process reads the upload and runs the conversion.
func (s *Server) process(w http.ResponseWriter, r *http.Request) (*core.Result, error) {
	up, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}
	return s.service.Process(r.Context(), core.Request{
		Data:       up.data,
		SourceName: up.sourceName,
		FileName:   up.fileName,
	})
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.Page(s.uploadForm(), nil))
}

// handleTransform converts an upload and renders the preview and summary.
// HTMX requests get the result fragment, plain form posts the whole page.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	res, err := s.process(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	fragment := templates.Result(resultView(res))
	if isHTMX(r) {
		render(w, r, http.StatusOK, fragment)
		return
	}
	render(w, r, http.StatusOK, templates.Page(s.uploadForm(), fragment))
}

// TransformResponse is the JSON body of POST /api/transform.
type TransformResponse struct {
	RunID        string             `json:"run_id"`
	FileName     string             `json:"file_name"`
	Columns      []string           `json:"columns"`
	Preview      [][]string         `json:"preview"`
	Warnings     []core.Warning     `json:"warnings"`
	Summary      core.Summary       `json:"summary"`
	SummaryLines []core.SummaryLine `json:"summary_lines"`
	Stats        core.Stats         `json:"stats"`
	Duration     string             `json:"duration"`
}

// handleAPITransform converts an upload and returns the preview and summary
// as JSON. The workbook itself is served by the export route.
func (s *Server) handleAPITransform(w http.ResponseWriter, r *http.Request) {
	res, err := s.process(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []core.Warning{}
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		RunID:        res.RunID,
		FileName:     res.Export.FileName,
		Columns:      res.Columns(),
		Preview:      res.Preview,
		Warnings:     warnings,
		Summary:      res.Summary,
		SummaryLines: res.Summary.Lines(),
		Stats:        res.Stats,
		Duration:     res.Duration.String(),
	})
}

// handleExport converts an upload and streams the workbook as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.process(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	export := res.Export
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	w.Header().Set("Content-Length", fmt.Sprint(len(export.Data)))
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}

// handleHealth reports liveness and conversion capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"limiter": s.service.LimiterStatus(),
	})
}

// handleUploadQueueStatus returns the current state of the upload limiter.
// Used for monitoring and to check if the system can accept more uploads.
func (s *Server) handleUploadQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// uploadForm returns the form settings from config.
func (s *Server) uploadForm() templates.UploadFormView {
	name := s.cfg.Template.DefaultFileName
	if name == "" {
		name = core.DefaultFileName
	}
	// The form asks for a name without extension.
	if ext := path.Ext(name); strings.EqualFold(ext, ".xlsx") {
		name = strings.TrimSuffix(name, ext)
	}
	return templates.UploadFormView{
		DefaultFileName: name,
		MaxFileSizeMB:   s.cfg.Upload.MaxFileSize >> 20,
	}
}

// resultView flattens a run for the result fragment.
func resultView(res *core.Result) templates.ResultView {
	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.Message
	}

	lines := res.Summary.Lines()
	summary := make([]templates.SummaryItem, len(lines))
	for i, l := range lines {
		summary[i] = templates.SummaryItem{Label: l.Label, Value: l.Text}
	}

	return templates.ResultView{
		FileName: res.Export.FileName,
		Columns:  res.Columns(),
		Preview:  res.Preview,
		Warnings: warnings,
		Summary:  summary,
		Rows:     res.Stats.OutputRows,
	}
}
