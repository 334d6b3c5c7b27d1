package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultDialTimeout = 10 * time.Second

// New dials the broker and makes sure the events queue exists. The dial
// timeout follows the context deadline when one is set.
func New(ctx context.Context, url, queueName string) (*amqp.Connection, error) {
	timeout, err := dialTimeout(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, queueName); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func dialTimeout(ctx context.Context, now time.Time) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout, nil
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0, context.DeadlineExceeded
	}
	return remaining, nil
}

func declareQueue(ch *amqp.Channel, queueName string) error {
	_, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s failed: %w", queueName, err)
	}
	return nil
}
