package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/foreclosure-notices/internal/pdftext"
)

// PDFAdapter exposes a pdftext.Extractor as a PageExtractor.
type PDFAdapter struct {
	extractor *pdftext.Extractor
	logger    *slog.Logger
}

func NewPDFAdapter(e *pdftext.Extractor, l *slog.Logger) *PDFAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &PDFAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *PDFAdapter) ExtractPages(ctx context.Context, path string) (PageResult, error) {
	r, err := a.extractor.Extract(ctx, path)
	if err != nil {
		return PageResult{SourceType: r.SourceType, Warnings: r.Warnings}, err
	}
	if len(r.Warnings) > 0 {
		a.logger.Warn("extract.pages.warnings", "path", path, "count", len(r.Warnings))
	}
	return PageResult{
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
	}, nil
}
