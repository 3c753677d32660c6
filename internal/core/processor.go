package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/notice"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/text"
	"github.com/joseph-ayodele/foreclosure-notices/internal/extract"
)

// Processor coordinates assembly, segmentation, name alignment and field
// extraction for one document at a time. It holds no per-run state and is
// safe for concurrent use.
type Processor struct {
	logger              *slog.Logger
	pages               extract.PageExtractor
	fields              *notice.FieldExtractor
	now                 func() time.Time
	literalCompleteness bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithPageExtractor sets the document-text collaborator used by ProcessFile.
func WithPageExtractor(pe extract.PageExtractor) ProcessorOption {
	return func(p *Processor) { p.pages = pe }
}

// WithClock overrides the source of the capture date.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// WithLiteralCompleteness counts the placeholder as a recovered value.
func WithLiteralCompleteness(v bool) ProcessorOption {
	return func(p *Processor) { p.literalCompleteness = v }
}

// WithFieldExtractor replaces the field cascades.
func WithFieldExtractor(fe *notice.FieldExtractor) ProcessorOption {
	return func(p *Processor) { p.fields = fe }
}

func NewProcessor(logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger: logger,
		fields: notice.NewFieldExtractor(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessFile extracts page texts from path, then runs Process on them.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	if p.pages == nil {
		return nil, common.NewAppError("NO_PAGE_EXTRACTOR", "processor has no page extractor", common.ErrInternal)
	}
	pr, err := p.pages.ExtractPages(ctx, path)
	if err != nil {
		p.logger.Error("processor.pdf.failed", "path", path, "error", err)
		RunsTotal.WithLabelValues(string(constants.RunFailed)).Inc()
		return nil, common.WrapError(err, "extract pages")
	}
	p.logger.Debug("processor.pdf.ok",
		"path", path,
		"method", pr.Method,
		"pages", len(pr.Pages),
		"elapsed_ms", pr.Duration.Milliseconds(),
	)

	res, err := p.Process(ctx, pr.Pages)
	if err != nil {
		return nil, err
	}
	res.Source = path
	res.Warnings = append(res.Warnings, pr.Warnings...)
	return res, nil
}

// Process runs the pipeline over one document's pages. It returns a
// *MisalignedExtractionError, and no records, when the name and segment
// counts differ.
func (p *Processor) Process(ctx context.Context, pages []text.Page) (*Result, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	log := p.logger.With("run_id", runID)
	if reqID := common.RequestIDFromContext(ctx); reqID != "" {
		log = log.With("request_id", reqID)
	}

	stream, stats := text.AssembleWithStats(pages)
	PagesTotal.WithLabelValues("used").Add(float64(stats.Seen - stats.Skipped))
	PagesTotal.WithLabelValues("skipped").Add(float64(stats.Skipped))
	log.Debug("pipeline.assemble.ok", "pages", stats.Seen, "skipped", stats.Skipped, "chars", len(stream))

	segments := notice.Segment(stream)
	log.Debug("pipeline.segment.ok", "segments", len(segments))

	names := notice.ExtractNames(stream)
	log.Debug("pipeline.names.ok", "names", len(names))

	if len(names) != len(segments) {
		err := &MisalignedExtractionError{NameCount: len(names), SegmentCount: len(segments)}
		log.Warn("pipeline.align.failed", "names", len(names), "segments", len(segments))
		RunsTotal.WithLabelValues(string(constants.RunMisaligned)).Inc()
		return nil, err
	}

	capturedOn := dateOnly(p.now())
	records := make([]notice.Record, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			RunsTotal.WithLabelValues(string(constants.RunFailed)).Inc()
			return nil, common.WrapError(err, "process records")
		}
		f := p.fields.Extract(seg)
		rec := notice.NewRecord(names[i], f, capturedOn)
		records = append(records, rec)

		status := rec.Status(p.literalCompleteness)
		RecordsTotal.WithLabelValues(string(status)).Inc()
		AddressRuleTotal.WithLabelValues(string(f.AddressRule)).Inc()
		log.Debug("pipeline.record.ok",
			"record", i+1,
			"of", len(segments),
			"address_rule", f.AddressRule,
			"status", status,
		)
	}

	summary := Summarize(records, p.literalCompleteness)
	elapsed := time.Since(start)
	RunDuration.Observe(elapsed.Seconds())

	runStatus := constants.RunOK
	if summary.Total == 0 {
		runStatus = constants.RunEmpty
	}
	RunsTotal.WithLabelValues(string(runStatus)).Inc()

	log.Info("pipeline.summary",
		"total", summary.Total,
		"full", summary.Full,
		"partial", summary.Partial,
		"full_pct", summary.FullPercentage,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &Result{
		RunID:   runID,
		Records: records,
		Summary: summary,
		Pages:   len(pages),
		Elapsed: elapsed,
	}, nil
}

// IsMisaligned reports whether err carries a *MisalignedExtractionError.
func IsMisaligned(err error) (*MisalignedExtractionError, bool) {
	var me *MisalignedExtractionError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
