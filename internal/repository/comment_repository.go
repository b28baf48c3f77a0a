package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-feed/internal/model"
)

// CommentRepo manages the append-only comments table.
type CommentRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewCommentRepo constructs a CommentRepo with the given DB handle.
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db, now: time.Now}
}

// FetchComments returns the comments of one event in storage order.
func (r *CommentRepo) FetchComments(ctx context.Context, eventID uint64) ([]model.CommentRecord, error) {
	const q = `SELECT id, event_id, user_id, content, created_at
		FROM comments WHERE event_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}
	defer rows.Close()

	out := []model.CommentRecord{}
	for rows.Next() {
		var c model.CommentRecord
		if err := rows.Scan(&c.ID, &c.EventID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertComment appends a comment and returns the stored record.  A
// missing event yields ErrEventNotFound through the foreign key.
func (r *CommentRepo) InsertComment(ctx context.Context, eventID uint64, authorID, body string) (model.CommentRecord, error) {
	c := model.CommentRecord{
		ID:        uuid.NewString(),
		EventID:   eventID,
		AuthorID:  authorID,
		Content:   body,
		CreatedAt: r.now().Truncate(time.Microsecond),
	}
	const q = `INSERT INTO comments (id, event_id, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.EventID, c.AuthorID, c.Content, c.CreatedAt); err != nil {
		if isMySQLError(err, errNoReferencedRow) {
			return model.CommentRecord{}, ErrEventNotFound
		}
		return model.CommentRecord{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}
