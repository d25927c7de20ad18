package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// kafkaNotifier publishes notification messages to a Kafka topic, keyed by
// event name. A downstream consumer renders and delivers them.
type kafkaNotifier struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaNotifier creates a notifier publishing to the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string, logger zerolog.Logger) Notifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &kafkaNotifier{
		writer: writer,
		logger: logger.With().Str("notifier", "kafka").Str("topic", topic).Logger(),
	}
}

func (n *kafkaNotifier) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Event),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug().
		Str("event", string(msg.Event)).
		Int("recipients", len(msg.Recipients)).
		Msg("notification published")

	return nil
}

func (n *kafkaNotifier) Close() error {
	return n.writer.Close()
}
