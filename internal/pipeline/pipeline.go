package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	"github.com/couchcryptid/radar-rain-labeler/internal/observability"
	"golang.org/x/sync/errgroup"
)

// FileSource lists the radar files of one batch.
type FileSource interface {
	List(ctx context.Context) ([]string, error)
}

// Decoder reads the raw image of a radar file.
type Decoder interface {
	Decode(path string) (domain.RawImage, error)
}

// ReportSink receives a completed report.
type ReportSink interface {
	Name() string
	WriteReport(ctx context.Context, report domain.Report) error
}

// Labeler orchestrates the list-classify-report batch.
type Labeler struct {
	source  FileSource
	decoder Decoder
	mask    *domain.ClutterMask
	logger  *slog.Logger
	metrics *observability.Metrics
	workers int
	ready   atomic.Bool

	mu     sync.Mutex
	latest domain.Report
}

// New creates a Labeler. workers below 1 runs files sequentially.
func New(source FileSource, decoder Decoder, mask *domain.ClutterMask, logger *slog.Logger, metrics *observability.Metrics, workers int) *Labeler {
	if workers < 1 {
		workers = 1
	}
	return &Labeler{
		source:  source,
		decoder: decoder,
		mask:    mask,
		logger:  logger,
		metrics: metrics,
		workers: workers,
	}
}

// CheckReadiness returns nil once a batch has completed.
func (l *Labeler) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("labeler has not completed a batch yet")
	}
	return nil
}

// Run labels every file the source lists and returns the sorted report.
// A cancelled run returns the context error and no report.
func (l *Labeler) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	l.metrics.BatchRunning.Set(1)
	defer l.metrics.BatchRunning.Set(0)

	paths, err := l.source.List(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("list radar files: %w", err)
	}
	l.metrics.FilesDiscovered.Add(float64(len(paths)))
	l.logger.Info("labeling started", "files", len(paths), "workers", l.workers)

	labels := make([]domain.Label, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			labels[i] = l.LabelFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		l.logger.Info("labeling cancelled", "reason", err)
		return domain.Report{}, err
	}

	report := domain.NewReport(labels)
	rainy, dry, unknown := report.Counts()
	l.logger.Info("labeling finished",
		"run_id", report.RunID,
		"files", len(report.Labels),
		"rainy", rainy,
		"dry", dry,
		"unknown", unknown,
		"duration", time.Since(start),
	)
	l.metrics.BatchDuration.Observe(time.Since(start).Seconds())

	l.mu.Lock()
	l.latest = report
	l.mu.Unlock()
	l.ready.Store(true)
	return report, nil
}

// Latest returns the most recent completed report.
func (l *Labeler) Latest() (domain.Report, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest, l.ready.Load()
}

// Deliver writes report to every sink. All sinks are attempted; their
// failures are joined.
func Deliver(ctx context.Context, report domain.Report, logger *slog.Logger, metrics *observability.Metrics, sinks ...ReportSink) error {
	var errs []error
	for _, sink := range sinks {
		if err := sink.WriteReport(ctx, report); err != nil {
			logger.Error("write report failed", "sink", sink.Name(), "error", err)
			metrics.SinkWrites.WithLabelValues(sink.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("%s sink: %w", sink.Name(), err))
			continue
		}
		logger.Info("report written", "sink", sink.Name(), "labels", len(report.Labels))
		metrics.SinkWrites.WithLabelValues(sink.Name(), "success").Inc()
	}
	return errors.Join(errs...)
}

// labelName is the report key of a radar file.
func labelName(path string) string {
	return filepath.Base(path)
}
