// Command fetch downloads the daily KNMI radar archives for the configured
// period into DATA_DIR and unpacks them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/radar-rain-labeler/internal/adapter/knmi"
	"github.com/couchcryptid/radar-rain-labeler/internal/archive"
	"github.com/couchcryptid/radar-rain-labeler/internal/config"
	"github.com/couchcryptid/radar-rain-labeler/internal/observability"
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
	if cfg.KDPToken == "" {
		logger.Error("KDP_TOKEN is required to use the KNMI Open Data API")
		return 1
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", "path", cfg.DataDir, "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := knmi.NewClient(cfg, observability.NewMetrics(), logger)

	files, err := client.ListFiles(ctx, knmi.ListParams{
		MaxKeys: cfg.FetchMaxKeys,
		OrderBy: "created",
		Begin:   cfg.FetchBegin,
		End:     cfg.FetchEnd,
	})
	if err != nil {
		logger.Error("failed to list dataset files", "dataset", cfg.KNMIDataset, "error", err)
		return 1
	}
	logger.Info("dataset files listed", "dataset", cfg.KNMIDataset, "files", len(files),
		"begin", cfg.FetchBegin, "end", cfg.FetchEnd)

	var errs []error
	downloaded, failed := 0, 0
	for _, f := range files {
		ok, err := client.Download(ctx, f.Filename, cfg.DataDir)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("fetch interrupted", "reason", ctx.Err())
				return 1
			}
			logger.Error("download failed", "filename", f.Filename, "error", err)
			errs = append(errs, err)
			failed++
			continue
		}
		if ok {
			downloaded++
		}
	}

	res, err := archive.ExtractAll(cfg.DataDir, logger)
	if err != nil {
		errs = append(errs, fmt.Errorf("extract archives: %w", err))
	}

	logger.Info("fetch finished",
		"downloaded", downloaded,
		"skipped", len(files)-downloaded-failed,
		"failed", failed,
		"extracted", len(res.Extracted),
		"already_extracted", len(res.Skipped),
	)
	if err := errors.Join(errs...); err != nil {
		logger.Error("fetch completed with errors", "error", err)
		return 1
	}
	return 0
}
