package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/event-feed/internal/model"
)

// NotificationRepo manages per-profile notifications.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo with the given DB handle.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// listLimit caps how many notifications a single listing returns.
const listLimit = 100

// InsertNotification stores n.  An existing id yields ErrDuplicate.
func (r *NotificationRepo) InsertNotification(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (id, profile_id, kind, event_id, title, body, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, n.ID, n.ProfileID, n.Kind, n.EventID, n.Title, n.Body, n.Read, n.CreatedAt)
	if err != nil {
		if isMySQLError(err, errDupEntry) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications of a profile.
func (r *NotificationRepo) ListNotifications(ctx context.Context, profileID string, unreadOnly bool) ([]model.Notification, error) {
	q := `SELECT id, profile_id, kind, event_id, title, body, is_read, created_at
		FROM notifications WHERE profile_id = ?`
	if unreadOnly {
		q += ` AND is_read = FALSE`
	}
	q += ` ORDER BY created_at DESC, id ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, profileID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Kind, &n.EventID, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags one notification of profileID as read.
// Marking an already read notification succeeds; the DSN enables
// clientFoundRows so matched rows are counted, not changed rows.
func (r *NotificationRepo) MarkNotificationRead(ctx context.Context, profileID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
