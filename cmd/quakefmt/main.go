// Command quakefmt consumes earthquake reports from Kafka, formats each one
// for list display, and publishes the display rows to a sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-report-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/quake-report-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-report-service/internal/config"
	"github.com/couchcryptid/quake-report-service/internal/observability"
	"github.com/couchcryptid/quake-report-service/internal/pipeline"
	"github.com/couchcryptid/quake-report-service/internal/resources"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := resources.Load(cfg.ResourcesFile)
	if err != nil {
		logger.Error("failed to load resources", "error", err, "path", cfg.ResourcesFile)
		os.Exit(1)
	}
	logger.Info("display configured",
		"timezone", cfg.DisplayTimeZone.String(),
		"resources_file", cfg.ResourcesFile,
		"near_the", catalog.NearThe(),
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(catalog, cfg.DisplayTimeZone, logger, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, catalog, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start formatting pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
