package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/event-feed/internal/model"
)

// TagRepo manages tags and the events_tags join table.
type TagRepo struct {
	db *sql.DB
}

// NewTagRepo constructs a TagRepo with the given DB handle.
func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db}
}

// FetchEventsTags returns join rows for one event, or for every event when
// eventID is nil.  Rows keep insertion order.
func (r *TagRepo) FetchEventsTags(ctx context.Context, eventID *uint64) ([]model.EventTag, error) {
	q := `SELECT event_id, tag_id FROM events_tags`
	var args []any
	if eventID != nil {
		q += ` WHERE event_id = ?`
		args = append(args, *eventID)
	}
	q += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch events_tags: %w", err)
	}
	defer rows.Close()

	out := []model.EventTag{}
	for rows.Next() {
		var et model.EventTag
		if err := rows.Scan(&et.EventID, &et.TagID); err != nil {
			return nil, fmt.Errorf("scan events_tags: %w", err)
		}
		out = append(out, et)
	}
	return out, rows.Err()
}

// FetchTags returns the tags with the given ids.  Unknown ids are simply
// absent from the result.
func (r *TagRepo) FetchTags(ctx context.Context, ids []uint64) ([]model.Tag, error) {
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT id, name FROM tags WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	defer rows.Close()

	out := make([]model.Tag, 0, len(ids))
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AttachTags links eventID to the named tags, creating tags that do not
// exist yet.  Blank names are skipped.  The whole operation runs in one
// transaction.
func (r *TagRepo) AttachTags(ctx context.Context, eventID uint64, names []string) ([]model.Tag, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("attach tags: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]model.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t := model.Tag{Name: name}
		err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ? LIMIT 1`, name).Scan(&t.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
			if err != nil {
				return nil, fmt.Errorf("insert tag %q: %w", name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("insert tag %q: %w", name, err)
			}
			t.ID = uint64(id)
		case err != nil:
			return nil, fmt.Errorf("lookup tag %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO events_tags (event_id, tag_id) VALUES (?, ?)`, eventID, t.ID); err != nil {
			if isMySQLError(err, errNoReferencedRow) {
				return nil, ErrEventNotFound
			}
			return nil, fmt.Errorf("link tag %q: %w", name, err)
		}
		out = append(out, t)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("attach tags: %w", err)
	}
	return out, nil
}
