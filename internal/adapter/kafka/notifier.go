// Package kafka publishes dataset update notifications.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/domain"
)

// Notifier produces dataset update messages to a Kafka topic. It implements
// pipeline.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured notification topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaNotifyTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// Notify serializes and publishes one dataset update.
func (n *Notifier) Notify(ctx context.Context, update domain.DatasetUpdate) error {
	msg, err := serializeToMessage(update)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, msg)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a DatasetUpdate into a Kafka message.
func serializeToMessage(update domain.DatasetUpdate) (kafkago.Message, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dataset update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(update.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "instrument", Value: []byte(update.Instrument)},
			{Key: "updated_at", Value: []byte(update.UpdatedAt.Format(time.RFC3339))},
		},
	}, nil
}
