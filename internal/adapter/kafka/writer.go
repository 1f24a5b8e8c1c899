package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/threat-level-monitor/internal/config"
	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes threat readings to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one reading. Messages are keyed by the level name so a
// compacted topic retains the latest reading per level.
func (w *Writer) Publish(ctx context.Context, r domain.ThreatReading) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish threat reading: %w", err)
	}
	w.logger.Debug("threat reading published", "topic", w.writer.Topic, "level", r.Level)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ThreatReading into a Kafka message.
func serializeToMessage(r domain.ThreatReading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize threat reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.Level),
		Value: data,
		Time:  r.FetchedAt,
		Headers: []kafkago.Header{
			{Key: "ordinal", Value: []byte(strconv.Itoa(r.Ordinal))},
			{Key: "source", Value: []byte(r.Source)},
			{Key: "fetched_at", Value: []byte(r.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
