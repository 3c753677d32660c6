package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/foreclosure-notices/internal/core/text"
)

// PageExtractor is the document-text stage: file -> ordered page texts.
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) (PageResult, error)
}

type PageResult struct {
	Pages      []text.Page
	SourceType string // constants.PDF | constants.TEXT
	Method     string // "pdf-text" | "pdf-text+ocr" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}
