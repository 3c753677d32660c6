package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/foreclosure-notices/internal/async"
	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
	"github.com/joseph-ayodele/foreclosure-notices/internal/ingest"
)

var watchDir string

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "inbox directory to watch (default watch.dir)")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process documents as they land in an inbox directory",
	Long: `Watch an inbox directory and export every new document through a pool of
workers. Exports go to watch.out_dir, or the upload directory when unset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dir := watchDir
		if dir == "" {
			dir = cfg.Watch.Dir
		}
		if dir == "" {
			return common.NewAppError("CONFIG_ERROR", "watch directory is required (--dir or watch.dir)", common.ErrInvalidInput)
		}
		return runWatch(ctx, cfg, logger, dir)
	},
}

// exportHandler processes one queued document and writes its export to outDir.
func exportHandler(c *common.Config, l *slog.Logger, outDir string) async.Handler {
	proc := newProcessor(c, l)
	exp := export.NewService(l)
	return func(ctx context.Context, job async.Job) error {
		res, err := proc.ProcessFile(ctx, job.Path)
		if err != nil {
			return err
		}
		if res.Summary.Total == 0 {
			return fmt.Errorf("%s: %w", job.Path, common.ErrNoNotices)
		}
		dst, err := writeExport(exp, c.Watch.Format, res, outDir, job.Path, time.Now())
		if err != nil {
			return err
		}
		l.Info("watch.export.ok", "path", job.Path, "export", dst, "records", res.Summary.Total)
		return nil
	}
}

func runWatch(ctx context.Context, c *common.Config, l *slog.Logger, dir string) error {
	outDir := c.Watch.OutDir
	if outDir == "" {
		outDir = c.Upload.Dir
	}

	q := async.NewProcessorQueue(exportHandler(c, l, outDir), l,
		async.WithWorkers(c.Watch.Workers),
		async.WithQueueSize(c.Watch.QueueSize),
		async.WithProcessTimeout(c.Watch.JobTimeout),
	)

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		AllowedExts: ingest.ExtSet(c.Upload.AllowedExtensions),
		InitialScan: c.Watch.InitialScan,
		SkipHidden:  true,
		Debounce:    c.Watch.Debounce,
		Logger:      l,
	})
	if err != nil {
		return err
	}
	l.Info("watch.start", "dir", dir, "out_dir", outDir, "workers", c.Watch.Workers)

loop:
	for {
		select {
		case p, ok := <-paths:
			if !ok {
				break loop
			}
			job := async.Job{Path: p, SubmittedAt: time.Now(), RunID: uuid.NewString()}
			if err := q.Enqueue(ctx, job); err != nil {
				l.Warn("watch.enqueue.failed", "path", p, "error", err)
				break loop
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.Warn("watch.error", "error", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
	defer cancel()
	return q.Shutdown(sctx)
}
