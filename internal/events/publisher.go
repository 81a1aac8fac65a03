package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher is the outbound side of the workflow's event hooks.
// Publishing is best-effort from the caller's point of view: services log
// and continue when it fails, the workflow transition itself has already
// committed.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// watermillPublisher adapts any watermill publisher to EventPublisher.
type watermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func newWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) EventPublisher {
	return &watermillPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

func (p *watermillPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topic)

	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// NewGoChannelEventPublisher returns an in-process publisher for local
// development, where no broker is available.
func NewGoChannelEventPublisher(topic string, logger *slog.Logger) EventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewSlogLogger(logger),
	)

	return newWatermillPublisher(pubsub, topic, logger)
}
