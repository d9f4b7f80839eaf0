// Command labeler classifies every radar file in DATA_DIR as rainy, dry or
// unknown and writes the report to the configured sinks.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/hdf5"
	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/radar-rain-labeler/internal/adapter/kafka"
	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/npy"
	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/report"
	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/sqlite"
	"github.com/couchcryptid/radar-rain-labeler/internal/config"
	"github.com/couchcryptid/radar-rain-labeler/internal/observability"
	"github.com/couchcryptid/radar-rain-labeler/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	mask, err := npy.LoadClutterMask(cfg.ClutterMaskPath, cfg.GridRows, cfg.GridCols)
	if err != nil {
		logger.Error("failed to load clutter mask", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	labeler := pipeline.New(
		pipeline.NewDirSource(cfg.DataDir, cfg.RadarFileExt),
		hdf5.NewDecoder(),
		mask,
		logger,
		metrics,
		cfg.Workers,
	)

	sinks := []pipeline.ReportSink{report.NewCSVSink(cfg.ReportPath)}
	readiness := httpadapter.Readiness{labeler}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewLabelWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka label sink enabled", "topic", cfg.KafkaLabelTopic)
	}

	if cfg.LabelStoreEnabled() {
		store, err := sqlite.Open(ctx, cfg.LabelDBPath)
		if err != nil {
			logger.Error("failed to open label store", "path", cfg.LabelDBPath, "error", err)
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("label store close error", "error", err)
			}
		}()
		sinks = append(sinks, store)
		readiness = append(readiness, store)
		logger.Info("sqlite label sink enabled", "path", cfg.LabelDBPath)
	}

	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, readiness, labeler, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	r, err := labeler.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("labeling interrupted, no report written", "reason", ctx.Err())
		} else {
			logger.Error("labeling failed", "error", err)
		}
		return 1
	}

	// Delivery survives a late signal, bounded by the shutdown timeout.
	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := pipeline.Deliver(deliverCtx, r, logger, metrics, sinks...); err != nil {
		logger.Error("report delivery failed", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}
