// Package pdftext turns a PDF or plain-text document into ordered page texts
// using poppler's pdftotext, with optional per-page OCR through pdftoppm and
// tesseract for pages that have no text layer.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/text"
)

const (
	MethodPDFText    = "pdf-text"
	MethodPDFTextOCR = "pdf-text+ocr"
	MethodPlainText  = "plain-text"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for OCR fallback, default 300
	MaxPages      int    // 0 = no limit

	// OCRFallback rasterizes and OCRs pages that pdftotext left empty.
	OCRFallback bool
}

type Result struct {
	Pages      []text.Page
	SourceType string
	Method     string
	Duration   time.Duration
	Warnings   []string
	OCRPages   int
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("pdftext.extract.start", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TEXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("pdftext.extract.unsupported", "path", path, "ext", ext)
		return Result{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	e.logger.Info("pdftext.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", len(res.Pages),
		"ocr_pages", res.OCRPages,
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	res := Result{SourceType: constants.PDF, Method: MethodPDFText}

	// pdftotext -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, e.logger, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			res.Warnings = append(res.Warnings, msg)
		}
		return res, fmt.Errorf("pdftotext %s: %w", filepath.Base(path), err)
	}

	res.Pages = buildPages(splitPages(string(out)))

	if e.cfg.OCRFallback {
		for i := range res.Pages {
			if res.Pages[i].Present {
				continue
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
			txt, err := e.ocrPage(ctx, path, res.Pages[i].Number)
			if err != nil {
				e.logger.Warn("pdftext.ocr.failed", "path", path, "page", res.Pages[i].Number, "error", err)
				res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", res.Pages[i].Number, err))
				continue
			}
			folded := norm.NFKC.String(txt)
			if strings.TrimSpace(folded) == "" {
				continue
			}
			res.Pages[i] = text.NewPage(res.Pages[i].Number, folded)
			res.OCRPages++
		}
		if res.OCRPages > 0 {
			res.Method = MethodPDFTextOCR
		}
	}
	return res, nil
}

func (e *Extractor) extractPlain(path string) (Result, error) {
	res := Result{SourceType: constants.TEXT, Method: MethodPlainText}
	b, err := os.ReadFile(path)
	if err != nil {
		return res, common.WrapError(err, "read text document")
	}
	chunks := splitPages(string(b))
	if e.cfg.MaxPages > 0 && len(chunks) > e.cfg.MaxPages {
		chunks = chunks[:e.cfg.MaxPages]
	}
	res.Pages = buildPages(chunks)
	return res, nil
}

// ocrPage renders one page to PNG and runs tesseract on it.
func (e *Extractor) ocrPage(ctx context.Context, path string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "fn-pp-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("pdftext.tmpdir.cleanup", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	n := fmt.Sprintf("%d", page)
	// pdftoppm -f N -l N -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger,
		"-f", n, "-l", n, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image")
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, matches[0], "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return string(out), nil
}

// splitPages splits on form feed. pdftotext ends every page with one, so the
// empty chunk after the last is dropped.
func splitPages(s string) []string {
	chunks := strings.Split(s, "\f")
	if n := len(chunks); n > 1 && strings.TrimSpace(chunks[n-1]) == "" {
		chunks = chunks[:n-1]
	}
	return chunks
}

func buildPages(chunks []string) []text.Page {
	pages := make([]text.Page, 0, len(chunks))
	for i, c := range chunks {
		folded := norm.NFKC.String(c)
		if strings.TrimSpace(folded) == "" {
			pages = append(pages, text.AbsentPage(i+1))
			continue
		}
		pages = append(pages, text.NewPage(i+1, folded))
	}
	return pages
}
