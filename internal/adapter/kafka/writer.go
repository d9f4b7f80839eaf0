package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/radar-rain-labeler/internal/config"
	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// LabelWriter publishes one message per label to a Kafka topic.
// It implements pipeline.ReportSink.
type LabelWriter struct {
	writer messageWriter
	logger *slog.Logger
}

// NewLabelWriter creates a Kafka producer for the configured label topic.
func NewLabelWriter(cfg *config.Config, logger *slog.Logger) *LabelWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaLabelTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &LabelWriter{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *LabelWriter) Name() string { return "kafka" }

// WriteReport serializes every label and publishes them in a single
// WriteMessages call.
func (w *LabelWriter) WriteReport(ctx context.Context, report domain.Report) error {
	if len(report.Labels) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(report.Labels))
	for i := range report.Labels {
		msg, err := serializeToMessage(report, report.Labels[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish labels: %w", err)
	}
	w.logger.Debug("labels published", "count", len(msgs), "run_id", report.RunID)
	return nil
}

func (w *LabelWriter) Close() error {
	return w.writer.Close()
}

// labelMessage is the JSON value of a label message. Rainy is null for
// unknown labels.
type labelMessage struct {
	Filename        string    `json:"filename"`
	Rainy           *bool     `json:"rainy"`
	ShowerIntensity float64   `json:"shower_intensity"`
	ClutterPixels   int       `json:"clutter_pixels"`
	Error           string    `json:"error,omitempty"`
	RunID           string    `json:"run_id"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// serializeToMessage marshals a label into a Kafka message keyed by filename.
func serializeToMessage(report domain.Report, label domain.Label) (kafkago.Message, error) {
	value := labelMessage{
		Filename:        label.Filename,
		Rainy:           label.Rainy,
		ShowerIntensity: label.Classification.ShowerIntensity,
		ClutterPixels:   label.Classification.ClutterPixels,
		RunID:           report.RunID,
		ProcessedAt:     report.GeneratedAt,
	}
	if label.Err != nil {
		value.Error = label.Err.Error()
	}

	data, err := json.Marshal(value)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize label %s: %w", label.Filename, err)
	}
	return kafkago.Message{
		Key:   []byte(label.Filename),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "rainy", Value: []byte(headerOutcome(label))},
			{Key: "run_id", Value: []byte(report.RunID)},
			{Key: "processed_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}

func headerOutcome(label domain.Label) string {
	switch label.Outcome() {
	case "rainy":
		return "true"
	case "dry":
		return "false"
	default:
		return "unknown"
	}
}
