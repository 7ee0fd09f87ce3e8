// Command aemserver runs the model compute server: a line-delimited JSON
// command socket for desktop clients, plus an optional HTTP listener for
// metrics and health checks.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"aemcore/internal/artifact"
	"aemcore/internal/compute"
	"aemcore/internal/journal"
	"aemcore/internal/journal/postgres"
	"aemcore/internal/server"
)

// Environment variables:
//
//	AEMCORE_LISTEN_ADDR           command socket address (default 127.0.0.1:5910)
//	AEMCORE_METRICS_ADDR          HTTP /metrics + /healthz address (empty disables)
//	AEMCORE_QUEUE_DEPTH           async compute queue depth (default 32)
//	AEMCORE_JOURNAL_DRIVER        memory|postgres (default memory)
//	AEMCORE_JOURNAL_POSTGRES_DSN  DSN when driver=postgres
//	AEMCORE_ARTIFACT_DRIVER       fs|s3|memory (default fs; see internal/artifact)
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jrnl, err := openJournal(ctx)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	artifacts, err := artifact.Open(ctx)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	metrics, err := compute.NewPrometheusMetricsRecorder(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	service := compute.NewService(compute.Config{
		Journal:   jrnl,
		Artifacts: artifacts,
		Metrics:   metrics,
		Logger:    logger,
	})
	runner := compute.NewRunner(service, queueDepth())
	runner.Start()

	srv := server.New(service, runner, logger)
	addr := os.Getenv("AEMCORE_LISTEN_ADDR")
	if addr == "" {
		addr = "127.0.0.1:5910"
	}
	bound, err := srv.Listen(addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logger.Info("command server listening",
		zap.String("addr", bound.String()),
		zap.String("journal", os.Getenv("AEMCORE_JOURNAL_DRIVER")),
		zap.String("artifacts", string(artifacts.Driver())))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	var metricsSrv *http.Server
	if maddr := os.Getenv("AEMCORE_METRICS_ADDR"); maddr != "" {
		metricsSrv = &http.Server{Addr: maddr, Handler: server.MetricsHandler(nil), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", zap.String("addr", maddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("socket shutdown incomplete", zap.Error(err))
	}
	if err := runner.Stop(shutdownCtx); err != nil {
		logger.Warn("runner shutdown incomplete", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown incomplete", zap.Error(err))
		}
	}
	if closer, ok := jrnl.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	return nil
}

func openJournal(ctx context.Context) (journal.Journal, error) {
	switch driver := os.Getenv("AEMCORE_JOURNAL_DRIVER"); driver {
	case "", "memory":
		return journal.NewMemory(), nil
	case "postgres":
		return postgres.NewStore(ctx, os.Getenv("AEMCORE_JOURNAL_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown journal driver %s", driver)
	}
}

func queueDepth() int {
	raw := os.Getenv("AEMCORE_QUEUE_DEPTH")
	if raw == "" {
		return 32
	}
	depth, err := strconv.Atoi(raw)
	if err != nil || depth <= 0 {
		return 32
	}
	return depth
}
