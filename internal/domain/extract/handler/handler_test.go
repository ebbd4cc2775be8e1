package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/timetable-api/internal/domain/events"
	"github.com/campuskit/timetable-api/internal/domain/export"
	extractservice "github.com/campuskit/timetable-api/internal/domain/extract/service"
	"github.com/campuskit/timetable-api/internal/domain/extract/pdfsource"
	"github.com/campuskit/timetable-api/internal/domain/timetable"
)

type stubExtractor struct {
	entries []timetable.Entry
	err     error
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) ([]timetable.Entry, error) {
	return s.entries, s.err
}

func newHandler(t *testing.T, ex Extractor) *TimetableHandler {
	t.Helper()
	gen, err := events.NewGenerator(events.DefaultEndDate)
	require.NoError(t, err)
	return NewTimetableHandler(ex, gen, export.NewService(nil), nil, 5<<20)
}

type uploadOpts struct {
	filename    string
	contentType string
	fields      map[string]string
	omitFile    bool
}

// newUpload builds a multipart request, setting the file part's Content-Type
// header explicitly since CreateFormFile hardcodes octet-stream.
func newUpload(t *testing.T, opts uploadOpts) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if !opts.omitFile {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, opts.filename))
		h.Set("Content-Type", opts.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake"))
		require.NoError(t, err)
	}
	for k, v := range opts.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/generate-events", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pdfUpload(t *testing.T, fields map[string]string) *http.Request {
	return newUpload(t, uploadOpts{filename: "timetable.pdf", contentType: "application/pdf", fields: fields})
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestTimetableHandler_GenerateEvents(t *testing.T) {
	entries := []timetable.Entry{{
		CourseCode: "MATH2201",
		Day:        timetable.Monday,
		StartTime:  "09:00",
		EndTime:    "10:00",
		Location:   "Room A12",
	}}

	t.Run("returns an ICS attachment by default", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-01-01",
			"endDate":   "2026-01-31",
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "timetable.ics")
		assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
		assert.Contains(t, rec.Body.String(), "SUMMARY:MATH2201")
	})

	t.Run("json format returns entries and events", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-01-01",
			"endDate":   "2026-01-31",
			"format":    "json",
		}))

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Entries []timetable.Entry `json:"entries"`
			Events  []timetable.Event `json:"events"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Entries, 1)
		assert.Equal(t, "MATH2201", body.Entries[0].CourseCode)
		// Mondays in January 2026: 5, 12, 19, 26.
		assert.Len(t, body.Events, 4)
	})

	t.Run("csv format returns a spreadsheet attachment", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-01-01",
			"endDate":   "2026-01-31",
			"format":    "csv",
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "timetable.csv")
		assert.Contains(t, rec.Body.String(), "MATH2201,Monday,09:00,10:00")
	})

	t.Run("xlsx format returns a workbook", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-01-01",
			"endDate":   "2026-01-31",
			"format":    "xlsx",
		}))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "timetable.xlsx")
		assert.NotEmpty(t, rec.Body.Bytes())
	})

	t.Run("unsupported format is a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-01-01",
			"endDate":   "2026-01-31",
			"format":    "pdf",
		}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), "unsupported format")
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, httptest.NewRequest(http.MethodGet, "/api/generate-events", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("missing file part is a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, newUpload(t, uploadOpts{omitFile: true}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No PDF file uploaded", errorBody(t, rec))
	})

	t.Run("rejects non-PDF extensions", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, newUpload(t, uploadOpts{filename: "timetable.docx", contentType: "application/pdf"}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Only PDF files are allowed", errorBody(t, rec))
	})

	t.Run("rejects wrong content type", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, newUpload(t, uploadOpts{filename: "timetable.pdf", contentType: "text/plain"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed endDate is a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{"endDate": "31-01-2026"}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), "Invalid endDate format")
	})

	t.Run("no entries found maps to a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{err: extractservice.ErrNoEntriesFound})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), "could not extract any timetable entries")
	})

	t.Run("unreadable document maps to a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{err: fmt.Errorf("page 1: %w", pdfsource.ErrUnreadableDocument)})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unexpected extractor failure is a 500", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{err: errors.New("disk on fire")})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", errorBody(t, rec))
	})

	t.Run("range with no occurrences is a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		// 2026-01-06 (Tue) through 2026-01-09 (Fri) contains no Monday.
		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-01-06",
			"endDate":   "2026-01-09",
		}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), "No events could be generated")
	})

	t.Run("inverted range is a 400", func(t *testing.T) {
		h := newHandler(t, &stubExtractor{entries: entries})
		rec := httptest.NewRecorder()

		h.GenerateEvents(rec, pdfUpload(t, map[string]string{
			"startDate": "2026-02-01",
			"endDate":   "2026-01-01",
		}))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), "end date must be after start date")
	})
}

func TestTimetableHandler_Health(t *testing.T) {
	h := newHandler(t, &stubExtractor{})
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
