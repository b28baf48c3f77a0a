// Package queue carries comment notifications over RabbitMQ: the service
// publishes a CommentPostedEvent after a comment is stored and a
// background consumer turns it into a notification for the organizer.
package queue

// CommentPostedEvent is published when a comment is stored.  It holds
// enough information for the consumer to write the organizer's
// notification without querying events or profiles again.
type CommentPostedEvent struct {
	CommentID   string `json:"comment_id"`
	EventID     uint64 `json:"event_id"`
	EventTitle  string `json:"event_title"`
	OrganizerID string `json:"organizer_id"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	Excerpt     string `json:"excerpt"`
	PostedAt    string `json:"posted_at"` // RFC 3339
}
