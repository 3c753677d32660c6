// Command foreclosures extracts mortgage-foreclosure notices from PDF
// newspaper pages, as a one-shot CLI, a web server or an inbox watcher.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/notice"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
	"github.com/joseph-ayodele/foreclosure-notices/internal/extract"
	"github.com/joseph-ayodele/foreclosure-notices/internal/ingest"
	"github.com/joseph-ayodele/foreclosure-notices/internal/pdftext"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	version = "dev"

	// set by PersistentPreRunE
	cfg    *common.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "foreclosures",
	Short: "Extract mortgage-foreclosure notices from newspaper PDFs",
	Long: `foreclosures turns the legal-notice pages of a newspaper into a table of
mortgage-foreclosure records: name, property address, loan amount, auction
date and capture date.

Configuration is read from an optional YAML file and FORECLOSURE_*
environment variables, e.g. FORECLOSURE_SERVER_HTTP_ADDR=:8081.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logger = newLogger(c.Log, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return nil
}

// newLogger builds the process logger. Text output drops the timestamp to
// keep terminal lines short.
func newLogger(lc common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// newProcessor wires the PDF text extractor and the field cascades from config.
func newProcessor(c *common.Config, l *slog.Logger) *core.Processor {
	ex := pdftext.NewExtractor(pdftext.Config{
		Pdftotext:     c.PDF.Pdftotext,
		Pdftoppm:      c.PDF.Pdftoppm,
		Tesseract:     c.PDF.Tesseract,
		TesseractLang: c.PDF.TesseractLang,
		DPI:           c.PDF.DPI,
		MaxPages:      c.PDF.MaxPages,
		OCRFallback:   c.PDF.OCRFallback,
	}, l)

	return core.NewProcessor(l,
		core.WithPageExtractor(extract.NewPDFAdapter(ex, l)),
		core.WithFieldExtractor(notice.NewFieldExtractor(notice.WithGenericLoanOnly(c.Pipeline.GenericLoanOnly))),
		core.WithLiteralCompleteness(c.Pipeline.LiteralCompleteness),
	)
}

// writeExport renders res in format and writes it to outDir as
// <source>_foreclosure_records_<timestamp>.<format>.
func writeExport(exp *export.Service, format string, res *core.Result, outDir, src string, now time.Time) (string, error) {
	data, err := exp.Export(format, res)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := export.FileName(format, now)
	if base := ingest.SecureFilename(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))); base != "" {
		name = base + "_" + name
	}
	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
