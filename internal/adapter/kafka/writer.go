package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/cwa-proxy-service/internal/config"
	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const sourceCWARSS = "cwa-rss"

// Writer produces matched warnings to a Kafka topic.
// It implements proxy.WarningPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured warnings topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaWarningsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishWarnings serializes and publishes the warnings in a single
// WriteMessages call. Items sharing a key land on the same partition.
func (w *Writer) PublishWarnings(ctx context.Context, items []domain.WarningItem) error {
	if len(items) == 0 {
		return nil
	}
	publishedAt := domain.Now()
	msgs := make([]kafkago.Message, len(items))
	for i := range items {
		msg, err := serializeToMessage(items[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write warnings to %s: %w", w.writer.Topic, err)
	}
	w.logger.DebugContext(ctx, "warnings published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a WarningItem into a Kafka message keyed by its
// link, or its title when the feed item has no link.
func serializeToMessage(item domain.WarningItem, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize warning: %w", err)
	}
	key := item.Link
	if key == "" {
		key = item.Title
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(sourceCWARSS)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
