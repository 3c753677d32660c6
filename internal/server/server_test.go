package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/foreclosure-notices/internal/core"
	"github.com/joseph-ayodele/foreclosure-notices/internal/extract"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
	"github.com/joseph-ayodele/foreclosure-notices/internal/ingest"
	"github.com/joseph-ayodele/foreclosure-notices/internal/pdftext"
)

var fixedNow = time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC)

const oneNotice = "LEGAL NOTICES:\n" +
	"1) John Q. Smith,\n(Mortgage Foreclosure) Default has been made. Property: 123 Main St,\n" +
	"Springfield, IL 62701. Amount claimed due is $125,430.00; sale starting promptly at\n" +
	"10:00 AM, on March 3, 2025."

const orphanNotice = "(Mortgage Foreclosure) An orphan notice at 9 Pine St, Mason, MI 48854."

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testProcessor() *core.Processor {
	logger := testLogger()
	ex := pdftext.NewExtractor(pdftext.Config{}, logger)
	return core.NewProcessor(logger,
		core.WithPageExtractor(extract.NewPDFAdapter(ex, logger)),
		core.WithClock(func() time.Time { return fixedNow }),
	)
}

func newTestHTTPServer(t *testing.T) (*HTTPServer, string) {
	t.Helper()
	dir := t.TempDir()
	logger := testLogger()
	ing := ingest.NewFSIngestor(dir, []string{"pdf", "txt"}, logger)
	s, err := NewHTTPServer(testProcessor(), ing, export.NewService(logger), logger, HTTPConfig{})
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s, dir
}

func multipartUpload(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		fw, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func doUpload(s *HTTPServer, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestNewHTTPServerRequiresCollaborators(t *testing.T) {
	_, err := NewHTTPServer(nil, ingest.NewFSIngestor(t.TempDir(), nil, nil), nil, nil, HTTPConfig{})
	assert.Error(t, err)
	_, err = NewHTTPServer(testProcessor(), nil, nil, nil, HTTPConfig{})
	assert.Error(t, err)
}

func TestHealthAndForm(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="file"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadProducesCSVDownload(t *testing.T) {
	s, dir := newTestHTTPServer(t)

	body, ct := multipartUpload(t, "file", "notices.txt", oneNotice)
	rec := doUpload(s, body, ct)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	assert.Equal(t, "/uploads/foreclosure_records_20250301_150405.csv", loc)

	_, err := os.Stat(filepath.Join(dir, "foreclosure_records_20250301_150405.csv"))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, loc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Address,Loan Amount,Auction Date,Today's Date", strings.TrimSpace(lines[0]))
	assert.Equal(t, `John Q. Smith,"123 Main St, Springfield, IL 62701","125,430.00","10:00 AM, on March 3, 2025",2025-03-01`, strings.TrimSpace(lines[1]))
}

func TestUploadRedirectsBackToForm(t *testing.T) {
	s, dir := newTestHTTPServer(t)

	t.Run("missing file", func(t *testing.T) {
		body, ct := multipartUpload(t, "", "", "")
		rec := doUpload(s, body, ct)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("disallowed extension", func(t *testing.T) {
		body, ct := multipartUpload(t, "file", "notices.exe", oneNotice)
		rec := doUpload(s, body, ct)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadUnprocessable(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	t.Run("misaligned", func(t *testing.T) {
		body, ct := multipartUpload(t, "file", "orphan.txt", orphanNotice)
		rec := doUpload(s, body, ct)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "0 names for 1 notice segments")
	})

	t.Run("no notices", func(t *testing.T) {
		body, ct := multipartUpload(t, "file", "ads.txt", "Classified ads only.")
		rec := doUpload(s, body, ct)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "no foreclosure notices")
	})
}

func TestDownloadNotFound(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	for _, name := range []string{"missing.csv", "..%2Fsecret.csv"} {
		rec := httptest.NewRecorder()
		s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, name)
	}
}

func postExtract(s *HTTPServer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestExtractAPI(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	payload, err := json.Marshal(map[string]any{"pages": []any{oneNotice, nil}})
	require.NoError(t, err)

	rec := postExtract(s, string(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc export.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, core.Summary{Total: 1, Full: 1, FullPercentage: 100}, doc.Summary)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, export.DocumentRecord{
		Name:        "John Q. Smith",
		Address:     "123 Main St, Springfield, IL 62701",
		LoanAmount:  "125,430.00",
		AuctionDate: "10:00 AM, on March 3, 2025",
		CapturedOn:  "2025-03-01",
	}, doc.Records[0])
}

func TestExtractAPIErrors(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		check    func(t *testing.T, resp ErrorResponse)
	}{
		{
			name:     "malformed body",
			body:     `{"pages": 5}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing pages",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "misaligned",
			body:     `{"pages": [` + jsonString(orphanNotice) + `]}`,
			wantCode: http.StatusUnprocessableEntity,
			check: func(t *testing.T, resp ErrorResponse) {
				assert.Equal(t, 0, resp.NameCount)
				assert.Equal(t, 1, resp.SegmentCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postExtract(s, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			if tt.check != nil {
				tt.check(t, resp)
			}
		})
	}
}

func TestExtractAPIEmptyDocument(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	rec := postExtract(s, `{"pages": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc export.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.NotNil(t, doc.Records)
	assert.Empty(t, doc.Records)
	assert.Zero(t, doc.Summary.FullPercentage)
}

func TestHTTPServerShutdown(t *testing.T) {
	s, _ := newTestHTTPServer(t)
	s.cfg.Addr = "127.0.0.1:0"

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	require.Eventually(t, func() bool { return s.Echo().ListenerAddr() != nil }, time.Second, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestExtractAPIMisalignedCarriesBothCounts(t *testing.T) {
	s, _ := newTestHTTPServer(t)

	rec := postExtract(s, `{"pages": [`+jsonString(orphanNotice)+`]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["name_count"])
	assert.Equal(t, float64(1), body["segment_count"])
}
