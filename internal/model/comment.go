package model

import "time"

// CommentRecord is an append-only row of the `comments` table.
type CommentRecord struct {
	ID        string    // comments.id (uuid)
	EventID   uint64    // comments.event_id
	AuthorID  string    // comments.user_id
	Content   string    // comments.content
	CreatedAt time.Time // comments.created_at
}
