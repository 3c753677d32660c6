package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
	"github.com/joseph-ayodele/foreclosure-notices/internal/ingest"
	"github.com/joseph-ayodele/foreclosure-notices/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload web server and the gRPC extraction service",
	Long: `Run the HTTP server (upload form, CSV downloads, JSON API, /health and
/metrics) and the gRPC ExtractionService until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, logger)
	},
}

func runServe(ctx context.Context, c *common.Config, l *slog.Logger) error {
	proc := newProcessor(c, l)
	ing := ingest.NewFSIngestor(c.Upload.Dir, c.Upload.AllowedExtensions, l)

	httpSrv, err := server.NewHTTPServer(proc, ing, export.NewService(l), l, server.HTTPConfig{
		Addr:           c.Server.HTTPAddr,
		MaxUploadMB:    c.Server.MaxUploadMB,
		ProcessTimeout: c.PDF.Timeout,
	})
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", c.Server.GRPCAddr)
	if err != nil {
		l.Error("grpc.listen.failed", "addr", c.Server.GRPCAddr, "error", err)
		return err
	}
	grpcSrv, health := server.NewGRPCServer(proc, l)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpSrv.Start)
	g.Go(func() error {
		l.Info("grpc.server.start", "addr", lis.Addr().String())
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("server.shutdown.start", "timeout", c.Server.ShutdownTimeout)
		health.Shutdown()

		sctx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		err := httpSrv.Shutdown(sctx)
		select {
		case <-stopped:
		case <-sctx.Done():
			grpcSrv.Stop()
		}
		l.Info("server.shutdown.done")
		return err
	})
	return g.Wait()
}
