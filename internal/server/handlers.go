package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/tacogips/stackzip/internal/app"
	"github.com/tacogips/stackzip/internal/archive"
	"github.com/tacogips/stackzip/internal/progress"
	"github.com/tacogips/stackzip/internal/version"
)

// ProgressQueryParam names the query parameter that attaches a generation
// request to a progress stream.
const ProgressQueryParam = "progress"

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type templatesResponse struct {
	Templates []string `json:"templates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       version.Version,
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templatesResponse{Templates: s.pipeline.Catalog().Names()})
}

func (s *Server) handleGenerateTemplate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, []string{r.PathValue("template")})
}

func (s *Server) handleGenerateCombined(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Invalid request", Message: "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Message: "unable to read body"})
		return
	}

	req, err := DecodeCombinedRequest(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.generate(w, r, req.TemplateNames)
}

// generate runs the pipeline for names and delivers the archive. Failures
// before the first byte is sent become JSON errors; failures after that
// tear down the connection so the client sees a truncated transfer.
func (s *Server) generate(w http.ResponseWriter, r *http.Request, names []string) {
	ctx := r.Context()
	reporter := s.reporterFor(r)

	prepared, err := s.pipeline.Prepare(ctx, names, reporter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.cfg.BufferResponses {
		var buf bytes.Buffer
		if _, err := s.pipeline.Stream(ctx, prepared, &buf, archive.WithoutFlush()); err != nil {
			s.writeError(w, r, err)
			return
		}
		setArchiveHeaders(w, prepared.Filename)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}

	setArchiveHeaders(w, prepared.Filename)
	stats, err := s.pipeline.Stream(ctx, prepared, w)
	if err == nil {
		s.logger.Info("archive sent",
			"request_id", RequestID(ctx),
			"filename", prepared.Filename,
			"entries", stats.Entries,
			"bytes", stats.Bytes,
			"duration", stats.Duration)
		return
	}
	if !stats.Started() {
		w.Header().Del("Content-Disposition")
		s.writeError(w, r, err)
		return
	}
	s.logger.Error("archive stream aborted",
		"request_id", RequestID(ctx),
		"filename", prepared.Filename,
		"entries", stats.Entries,
		"bytes", stats.Bytes,
		"error", err)
	panic(http.ErrAbortHandler)
}

func (s *Server) reporterFor(r *http.Request) *progress.Reporter {
	id := r.URL.Query().Get(ProgressQueryParam)
	if id == "" {
		return nil
	}
	return progress.NewReporter(id, s.hub)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *app.AppError
	if errors.As(err, &appErr) && appErr.Type == app.Canceled && r.Context().Err() != nil {
		s.logger.Info("client went away", "request_id", RequestID(r.Context()), "error", err)
		return
	}
	status, resp := newErrorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "request_id", RequestID(r.Context()), "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func setArchiveHeaders(w http.ResponseWriter, filename string) {
	h := w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", "attachment; filename="+filename)
	h.Set("X-Content-Type-Options", "nosniff")
}
