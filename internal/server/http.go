package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/text"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
	"github.com/joseph-ayodele/foreclosure-notices/internal/ingest"
)

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Addr           string
	MaxUploadMB    int
	ProcessTimeout time.Duration
}

// HTTPServer serves the upload form, downloads and the JSON extraction API.
type HTTPServer struct {
	echo     *echo.Echo
	proc     *core.Processor
	ingestor ingest.Ingestor
	exporter *export.Service
	logger   *slog.Logger
	cfg      HTTPConfig
	now      func() time.Time
}

func NewHTTPServer(proc *core.Processor, ing ingest.Ingestor, exp *export.Service, logger *slog.Logger, cfg HTTPConfig) (*HTTPServer, error) {
	if proc == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if ing == nil {
		return nil, fmt.Errorf("ingestor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if exp == nil {
		exp = export.NewService(logger)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = 2 * time.Minute
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			c.SetRequest(req.WithContext(common.WithRequestID(req.Context(), reqID)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("http.request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)
			return nil
		}
	})

	s := &HTTPServer{
		echo:     e,
		proc:     proc,
		ingestor: ing,
		exporter: exp,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	s.registerRoutes()
	return s, nil
}

func (s *HTTPServer) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.GET("/", s.handleForm)
	s.echo.POST("/", s.handleUpload)
	s.echo.GET("/uploads/:filename", s.handleDownload)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/extract", s.handleExtract)
}

// Echo exposes the router, mainly for tests.
func (s *HTTPServer) Echo() *echo.Echo { return s.echo }

// ExtractRequest is the request body for POST /api/v1/extract. A null page
// is one whose text could not be recovered.
type ExtractRequest struct {
	Pages []*string `json:"pages"`
}

// ErrorResponse is the JSON error body of the API.
type ErrorResponse struct {
	Error        string `json:"error"`
	NameCount    int    `json:"name_count"`
	SegmentCount int    `json:"segment_count"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (s *HTTPServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *HTTPServer) handleForm(c echo.Context) error {
	return c.HTML(http.StatusOK, uploadForm)
}

// handleUpload saves the document, runs the pipeline and redirects to the CSV.
// A missing or disallowed file sends the browser back to the form.
func (s *HTTPServer) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		s.logger.Warn("http.upload.missing_file", "error", err)
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if !s.ingestor.Allowed(fh.Filename) {
		s.logger.Warn("http.upload.rejected", "name", fh.Filename)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
	}
	defer func() { _ = src.Close() }()

	ctx := c.Request().Context()
	up, err := s.ingestor.SaveUpload(ctx, fh.Filename, src)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		s.logger.Error("http.upload.save_failed", "name", fh.Filename, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot store upload")
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ProcessTimeout)
	defer cancel()
	res, err := s.proc.ProcessFile(pctx, up.SourcePath)
	if err != nil {
		if me, ok := core.IsMisaligned(err); ok {
			return c.String(http.StatusUnprocessableEntity, me.Error())
		}
		s.logger.Error("http.upload.process_failed", "stored", up.StoredName, "error", err)
		return c.String(http.StatusInternalServerError, "Error processing the PDF file.")
	}
	if res.Summary.Total == 0 {
		return c.String(http.StatusUnprocessableEntity, common.ErrNoNotices.Error())
	}

	data, err := s.exporter.CSV(res.Records)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render csv")
	}
	name := export.FileName(export.FormatCSV, s.now())
	if err := os.WriteFile(filepath.Join(s.ingestor.Dir(), name), data, 0o644); err != nil {
		s.logger.Error("http.upload.write_failed", "file", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot write csv")
	}

	s.logger.Info("http.upload.ok",
		"stored", up.StoredName,
		"run_id", res.RunID,
		"records", res.Summary.Total,
		"export", name,
	)
	return c.Redirect(http.StatusSeeOther, "/uploads/"+url.PathEscape(name))
}

func (s *HTTPServer) handleDownload(c echo.Context) error {
	name := c.Param("filename")
	path, err := s.ingestor.Resolve(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.Attachment(path, name)
}

func (s *HTTPServer) handleExtract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("http.extract.bad_request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Pages == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pages field is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.cfg.ProcessTimeout)
	defer cancel()
	res, err := s.proc.Process(ctx, text.PagesFromStrings(req.Pages))
	if err != nil {
		if me, ok := core.IsMisaligned(err); ok {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:        me.Error(),
				NameCount:    me.NameCount,
				SegmentCount: me.SegmentCount,
			})
		}
		s.logger.Error("http.extract.failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "extraction failed"})
	}
	return c.JSON(http.StatusOK, export.NewDocument(res))
}

// Start blocks serving HTTP until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info("http.server.start", "addr", s.cfg.Addr)
	err := s.echo.Start(s.cfg.Addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("http.server.shutdown")
	return s.echo.Shutdown(ctx)
}
