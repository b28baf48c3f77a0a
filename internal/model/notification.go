package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds.
const (
	NotificationComment  = "event.comment"
	NotificationReminder = "event.reminder"
)

// Notification is a message addressed to one profile, stored in the
// `notifications` table.  Notifications are produced asynchronously
// (comment consumer, reminder sweep) and read from the dashboard.
type Notification struct {
	ID        string    `json:"id"`         // notifications.id (uuid)
	ProfileID string    `json:"profile_id"` // notifications.profile_id
	Kind      string    `json:"kind"`       // notifications.kind
	EventID   uint64    `json:"event_id"`   // notifications.event_id
	Title     string    `json:"title"`      // notifications.title
	Body      string    `json:"body"`       // notifications.body
	Read      bool      `json:"read"`       // notifications.is_read
	CreatedAt time.Time `json:"created_at"` // notifications.created_at
}

// NotificationID derives a stable id for the notification of the given
// kind about key (a comment id, an event id and day, ...).  Producers that
// may run more than once for the same fact use it so the store rejects the
// repeat as a duplicate.
func NotificationID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("event-feed:"+kind+":"+key)).String()
}
