// Package handler exposes the extraction pipeline over HTTP: one multipart
// upload endpoint that turns a timetable PDF into a calendar (or spreadsheet)
// download.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/campuskit/timetable-api/internal/domain/calendar"
	"github.com/campuskit/timetable-api/internal/domain/events"
	"github.com/campuskit/timetable-api/internal/domain/export"
	extractservice "github.com/campuskit/timetable-api/internal/domain/extract/service"
	"github.com/campuskit/timetable-api/internal/domain/extract/pdfsource"
	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

// Extractor is the slice of the extraction service the handler needs.
type Extractor interface {
	Extract(ctx context.Context, buf []byte) ([]timetable.Entry, error)
}

// TimetableHandler serves POST /api/generate-events and GET /health.
type TimetableHandler struct {
	extractor      Extractor
	generator      *events.Generator
	exporter       *export.Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewTimetableHandler(extractor Extractor, generator *events.Generator, exporter *export.Service, logger *slog.Logger, maxUploadBytes int64) *TimetableHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimetableHandler{
		extractor:      extractor,
		generator:      generator,
		exporter:       exporter,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// GenerateEvents accepts a multipart PDF upload plus optional startDate,
// endDate (ISO dates) and format (ics, json, csv, xlsx) fields, and responds
// with the requested artifact. Client faults map to 400 with a JSON error
// body; anything unexpected is a generic 500.
func (h *TimetableHandler) GenerateEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No PDF file uploaded")
		return
	}
	defer file.Close()

	if !isPDFUpload(header.Filename, header.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	start, ok := parseDateField(w, r.FormValue("startDate"), "startDate")
	if !ok {
		return
	}
	end, ok := parseDateField(w, r.FormValue("endDate"), "endDate")
	if !ok {
		return
	}

	entries, err := h.extractor.Extract(r.Context(), buf)
	if err != nil {
		h.extractionError(w, err)
		return
	}

	evs, err := h.generator.GenerateAll(entries, start, end)
	if err != nil {
		h.generationError(w, err)
		return
	}
	if len(evs) == 0 {
		writeError(w, http.StatusBadRequest, "No events could be generated for the given date range")
		return
	}

	h.respond(w, r.FormValue("format"), entries, evs)
}

// Health reports liveness.
func (h *TimetableHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *TimetableHandler) respond(w http.ResponseWriter, format string, entries []timetable.Entry, evs []timetable.Event) {
	switch format {
	case "", "ics":
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="timetable.ics"`)
		_, _ = io.WriteString(w, calendar.BuildICS(evs))

	case "json":
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": entries,
			"events":  evs,
		})

	case "csv":
		out, err := h.exporter.EntriesCSV(entries)
		if err != nil {
			h.internalError(w, "csv export failed", err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="timetable.csv"`)
		_, _ = w.Write(out)

	case "xlsx":
		out, err := h.exporter.EntriesXLSX(entries)
		if err != nil {
			h.internalError(w, "xlsx export failed", err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="timetable.xlsx"`)
		_, _ = w.Write(out)

	default:
		writeError(w, http.StatusBadRequest, "unsupported format: use ics, json, csv, or xlsx")
	}
}

func (h *TimetableHandler) extractionError(w http.ResponseWriter, err error) {
	if errors.Is(err, pdfsource.ErrUnreadableDocument) || errors.Is(err, extractservice.ErrNoEntriesFound) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.internalError(w, "extraction failed", err)
}

func (h *TimetableHandler) generationError(w http.ResponseWriter, err error) {
	if errors.Is(err, events.ErrInvalidDayName) ||
		errors.Is(err, events.ErrInvalidTimeFormat) ||
		errors.Is(err, events.ErrInvalidDateRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.internalError(w, "event generation failed", err)
}

func (h *TimetableHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func isPDFUpload(filename, contentType string) bool {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return false
	}
	return contentType == "application/pdf"
}

// parseDateField validates an optional ISO date form value, writing a 400
// itself when the value is malformed.
func parseDateField(w http.ResponseWriter, value, name string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" format. Use ISO 8601 (YYYY-MM-DD).")
		return time.Time{}, false
	}
	return t, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
