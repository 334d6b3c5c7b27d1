package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"pdfchat/internal/model"
)

// EventPublisher sends session lifecycle events to a durable queue for
// downstream consumers. A channel is opened per publish; amqp channels are
// not safe for concurrent use.
type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event model.SessionEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Timestamp:    event.At,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish %s event failed: %w", event.Type, err)
	}
	return nil
}

func encodeEvent(event model.SessionEvent) ([]byte, error) {
	if event.Type == "" || event.SessionID == "" {
		return nil, fmt.Errorf("event type and session id are required")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload failed: %w", err)
	}
	return payload, nil
}
