package events

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
)

// KafkaConfig configures the Kafka event publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NewKafkaEventPublisher creates an EventPublisher backed by Kafka.
func NewKafkaEventPublisher(config KafkaConfig, logger *slog.Logger) (EventPublisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   config.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return newWatermillPublisher(publisher, config.Topic, logger), nil
}
