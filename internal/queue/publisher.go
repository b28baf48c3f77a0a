package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultCommentQueue is the queue comment events are routed to.
const DefaultCommentQueue = "event_comments"

// Publisher sends events to a durable queue on the default exchange.  It
// dials per publish; comment traffic is low and this keeps no connection
// state to repair.
type Publisher struct {
	url   string
	queue string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultCommentQueue
	}
	return &Publisher{url: url, queue: queue}
}

// PublishCommentPosted publishes ev as a persistent JSON message.
func (p *Publisher) PublishCommentPosted(ctx context.Context, ev CommentPostedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal comment event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch, p.queue); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.CommentID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// declare ensures the durable queue exists.  It is idempotent.
func declare(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	return nil
}
