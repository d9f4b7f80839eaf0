package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all labeler and fetcher settings, populated from environment variables.
type Config struct {
	DataDir         string
	ReportPath      string
	ClutterMaskPath string
	GridRows        int
	GridCols        int
	RadarFileExt    string
	Workers         int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional label sinks. Empty brokers / path disables the sink.
	KafkaBrokers    []string
	KafkaLabelTopic string
	LabelDBPath     string

	// KNMI Open Data API settings used by the fetch command.
	KDPToken           string
	KNMIBaseURL        string
	KNMIDataset        string
	KNMIDatasetVersion string
	FetchBegin         time.Time
	FetchEnd           time.Time
	FetchMaxKeys       int
	FetchTimeout       time.Duration
	FetchRequestDelay  time.Duration
	FetchMaxRetries    int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	gridRows, err := parsePositiveInt("GRID_ROWS", 765)
	if err != nil {
		return nil, err
	}
	gridCols, err := parsePositiveInt("GRID_COLS", 700)
	if err != nil {
		return nil, err
	}
	workers, err := parsePositiveInt("LABELER_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	if workers > 64 {
		return nil, errors.New("invalid LABELER_WORKERS: must be 1-64")
	}

	fetchBegin, err := parseTime("FETCH_BEGIN", "2024-01-01T00:00:00Z")
	if err != nil {
		return nil, err
	}
	fetchEnd, err := parseTime("FETCH_END", "2024-02-01T00:00:00Z")
	if err != nil {
		return nil, err
	}
	fetchMaxKeys, err := parsePositiveInt("FETCH_MAX_KEYS", 31)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	fetchDelay, err := parseDuration("FETCH_REQUEST_DELAY", "500ms")
	if err != nil {
		return nil, err
	}
	fetchRetries, err := parseNonNegativeInt("FETCH_MAX_RETRIES", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		ReportPath:      sharedcfg.EnvOrDefault("REPORT_PATH", "rainy_labels.csv"),
		ClutterMaskPath: sharedcfg.EnvOrDefault("CLUTTER_MASK_PATH", "cluttermask.npy"),
		GridRows:        gridRows,
		GridCols:        gridCols,
		RadarFileExt:    sharedcfg.EnvOrDefault("RADAR_FILE_EXT", ".h5"),
		Workers:         workers,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:    sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaLabelTopic: sharedcfg.EnvOrDefault("KAFKA_LABEL_TOPIC", "radar-labels"),
		LabelDBPath:     os.Getenv("LABEL_DB_PATH"),

		KDPToken:           os.Getenv("KDP_TOKEN"),
		KNMIBaseURL:        sharedcfg.EnvOrDefault("KNMI_BASE_URL", "https://api.dataplatform.knmi.nl/open-data/v1"),
		KNMIDataset:        sharedcfg.EnvOrDefault("KNMI_DATASET", "nl_rdr_data_rtcor_5m_tar"),
		KNMIDatasetVersion: sharedcfg.EnvOrDefault("KNMI_DATASET_VERSION", "1.0"),
		FetchBegin:         fetchBegin,
		FetchEnd:           fetchEnd,
		FetchMaxKeys:       fetchMaxKeys,
		FetchTimeout:       fetchTimeout,
		FetchRequestDelay:  fetchDelay,
		FetchMaxRetries:    fetchRetries,
	}

	if !strings.HasPrefix(cfg.RadarFileExt, ".") {
		return nil, errors.New("invalid RADAR_FILE_EXT: must start with a dot")
	}
	if !cfg.FetchBegin.Before(cfg.FetchEnd) {
		return nil, errors.New("invalid FETCH_BEGIN: must be before FETCH_END")
	}

	return cfg, nil
}

// KafkaEnabled reports whether labels are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// LabelStoreEnabled reports whether labels are persisted to SQLite.
func (c *Config) LabelStoreEnabled() bool {
	return c.LabelDBPath != ""
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", key)
	}
	return n, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := parseDuration(key, fallback)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseTime(key, fallback string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, sharedcfg.EnvOrDefault(key, fallback))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: must be RFC3339", key)
	}
	return t, nil
}
