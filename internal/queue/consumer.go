package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/repository"
)

// NotificationWriter stores notifications.  Implemented by the MySQL and
// in-memory stores.
type NotificationWriter interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// Consumer reads CommentPostedEvents and writes organizer notifications.
type Consumer struct {
	url   string
	queue string
	store NotificationWriter
	now   func() time.Time
}

// NewConsumer returns a Consumer for the broker at url.
func NewConsumer(url, queue string, store NotificationWriter) *Consumer {
	if queue == "" {
		queue = DefaultCommentQueue
	}
	return &Consumer{url: url, queue: queue, store: store, now: time.Now}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff when the connection drops.  It
// returns ctx.Err() on shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.Printf("comment-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("comment-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("comment-consumer: set QoS failed: %v", err)
	}
	if err := declare(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(ctx, d.Body); err != nil {
				log.Printf("comment-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one delivery body and stores the organizer's
// notification.  Comments by the organizer and events without one are
// acknowledged without a notification.  Redeliveries map to the same
// notification id and are treated as done.
func (c *Consumer) HandleMessage(ctx context.Context, body []byte) error {
	var ev CommentPostedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.CommentID == "" {
		return errors.New("comment event without comment_id")
	}
	if ev.OrganizerID == "" || ev.OrganizerID == ev.AuthorID {
		return nil
	}

	n := CommentNotification(ev, c.now())
	if err := c.store.InsertNotification(ctx, &n); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}
	return nil
}

// excerptLen is the maximum number of runes of the comment quoted in a
// notification body.
const excerptLen = 80

// CommentNotification builds the organizer notification for ev.  The
// event's PostedAt is used as the creation time when it parses; fallback
// is used otherwise.
func CommentNotification(ev CommentPostedEvent, fallback time.Time) model.Notification {
	created := fallback
	if t, err := time.Parse(time.RFC3339Nano, ev.PostedAt); err == nil {
		created = t
	}
	author := ev.AuthorName
	if author == "" {
		author = "Someone"
	}
	return model.Notification{
		ID:        model.NotificationID(model.NotificationComment, ev.CommentID),
		ProfileID: ev.OrganizerID,
		Kind:      model.NotificationComment,
		EventID:   ev.EventID,
		Title:     fmt.Sprintf("%s commented on %s", author, ev.EventTitle),
		Body:      Excerpt(ev.Excerpt),
		CreatedAt: created,
	}
}

// Excerpt trims s to excerptLen runes, appending an ellipsis when cut.
func Excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:excerptLen])) + "…"
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
