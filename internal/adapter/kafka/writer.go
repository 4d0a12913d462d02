package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-index-etl/internal/config"
	"github.com/couchcryptid/climate-index-etl/internal/domain"
)

// sourceName tags every message with the report it was derived from.
const sourceName = "cpc-soi"

// Writer publishes the long series to a Kafka topic, one message per month.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. Messages
// are keyed by date and hashed to partitions, so a rerun lands each month on
// the same partition as before.
func NewWriter(cfg *config.Config, runID string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, runID: runID, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load serializes and publishes all records in a single WriteMessages call.
func (w *Writer) Load(ctx context.Context, records []domain.LongRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i], w.runID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish records: %w", err)
	}
	w.logger.Info("kafka records published", "topic", w.writer.Topic, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// recordMessage is the JSON payload of a published record.
type recordMessage struct {
	Date       string   `json:"date"`
	SOIAnomaly *float64 `json:"soi_anomaly"`
}

// serializeToMessage marshals a LongRecord into a Kafka message.
func serializeToMessage(rec domain.LongRecord, runID string) (kafkago.Message, error) {
	date := domain.FormatDate(rec.Date)
	data, err := json.Marshal(recordMessage{Date: date, SOIAnomaly: rec.Anomaly})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %s: %w", date, err)
	}
	return kafkago.Message{
		Key:   []byte(date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(sourceName)},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
