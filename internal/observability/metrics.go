package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "radar_labeler"

// Metrics holds the Prometheus counters, histograms, and gauges for the labeler and fetcher.
type Metrics struct {
	FilesDiscovered prometheus.Counter
	FilesProcessed  prometheus.Counter
	DecodeErrors    prometheus.Counter
	Labels          *prometheus.CounterVec // labels: outcome={rainy,dry,unknown}
	BatchRunning    prometheus.Gauge

	ClassifyDuration prometheus.Histogram
	BatchDuration    prometheus.Histogram

	SinkWrites *prometheus.CounterVec // labels: sink, outcome={success,error}

	// KNMI fetch metrics.
	FetchDownloads   *prometheus.CounterVec   // labels: outcome={downloaded,skipped,error}
	FetchAPIErrors   prometheus.Counter
	FetchAPIDuration *prometheus.HistogramVec // labels: endpoint={list,url,download}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.FilesDiscovered,
		m.FilesProcessed,
		m.DecodeErrors,
		m.Labels,
		m.BatchRunning,
		m.ClassifyDuration,
		m.BatchDuration,
		m.SinkWrites,
		m.FetchDownloads,
		m.FetchAPIErrors,
		m.FetchAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		FilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_discovered_total",
			Help:      help("Radar files found in the data directory."),
		}),
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      help("Radar files that received a label, known or unknown."),
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      help("Radar files that could not be decoded."),
		}),
		Labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labels_total",
			Help:      help("Labels produced by outcome."),
		}, []string{"outcome"}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_running",
			Help:      help("1 while a labeling batch is in progress, 0 otherwise."),
		}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classify_duration_seconds",
			Help:      help("Time to decode, normalize and classify one radar file."),
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      help("Duration of a complete labeling batch."),
			Buckets:   []float64{1, 5, 10, 30, 60, 300, 900, 3600},
		}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      help("Report deliveries by sink and outcome."),
		}, []string{"sink", "outcome"}),
		FetchDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_downloads_total",
			Help:      help("Archive downloads by outcome."),
		}, []string{"outcome"}),
		FetchAPIErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_api_errors_total",
			Help:      help("Failed KNMI API requests, including retried attempts."),
		}),
		FetchAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_api_duration_seconds",
			Help:      help("KNMI API request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
	}
}
