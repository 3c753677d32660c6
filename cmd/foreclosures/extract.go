package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
	"github.com/joseph-ayodele/foreclosure-notices/internal/ingest"
)

var (
	extractOut     string
	extractFormat  string
	extractWorkers int
)

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", ".", "directory for the exported files")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", export.FormatCSV, "export format: csv, xlsx or json")
	extractCmd.Flags().IntVarP(&extractWorkers, "workers", "w", 2, "documents processed concurrently")
}

var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>...",
	Short: "Extract foreclosure records from documents",
	Long: `Extract foreclosure records from one or more documents and write one export
per document. Directories are scanned for files with an allowed extension.

Examples:
  # One CSV next to the current directory
  foreclosures extract legal-notices.pdf

  # Every PDF in a folder, as XLSX, four at a time
  foreclosures extract --format xlsx --workers 4 --out exports/ scans/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := extractOptions{
			OutDir:  extractOut,
			Format:  extractFormat,
			Workers: extractWorkers,
		}
		return runExtract(cmd.Context(), cfg, logger, args, opts, cmd.OutOrStdout())
	},
}

type extractOptions struct {
	OutDir  string
	Format  string
	Workers int
	Now     func() time.Time
}

// runExtract processes every document, continuing past failures, and
// returns an error if any document failed.
func runExtract(ctx context.Context, c *common.Config, l *slog.Logger, args []string, opts extractOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch opts.Format {
	case export.FormatCSV, export.FormatXLSX, export.FormatJSON:
	default:
		return common.NewAppError("EXPORT_FORMAT", fmt.Sprintf("unknown export format %q", opts.Format), common.ErrInvalidInput)
	}

	paths, err := expandInputs(ctx, c, l, args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return common.NewAppError("NO_INPUT", "no documents to process", common.ErrInvalidInput)
	}

	proc := newProcessor(c, l)
	exp := export.NewService(l)

	var (
		mu     sync.Mutex
		failed int
	)
	report := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(out, format, a...)
	}

	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			res, err := proc.ProcessFile(ctx, path)
			if err == nil {
				var dst string
				dst, err = writeExport(exp, opts.Format, res, opts.OutDir, path, opts.Now())
				if err == nil {
					s := res.Summary
					report("%s: %d records (%d full, %d partial, %.1f%% full) -> %s\n",
						path, s.Total, s.Full, s.Partial, s.FullPercentage, dst)
					return nil
				}
			}
			l.Error("extract.document.failed", "path", path, "error", err)
			report("%s: FAILED: %v\n", path, err)
			mu.Lock()
			failed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

// expandInputs replaces directory arguments with the allowed documents they contain.
func expandInputs(ctx context.Context, c *common.Config, l *slog.Logger, args []string) ([]string, error) {
	ing := ingest.NewFSIngestor(c.Upload.Dir, c.Upload.AllowedExtensions, l)

	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, common.WrapError(err, "stat input")
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		results, stats, err := ing.ScanDirectory(ctx, arg, true)
		if err != nil {
			return nil, err
		}
		l.Info("extract.scan.ok", "dir", arg, "matched", stats.Matched, "skipped", stats.Skipped, "failed", stats.Failed)
		for _, r := range results {
			if r.Err != "" {
				l.Warn("extract.scan.file_failed", "path", r.SourcePath, "error", r.Err)
				continue
			}
			paths = append(paths, r.SourcePath)
		}
	}
	return paths, nil
}
