package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-feed/internal/model"
)

// ProfileRepo reads profiles written by the auth service.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo constructs a ProfileRepo with the given DB handle.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, COALESCE(full_name, ''), COALESCE(avatar_url, ''), COALESCE(email, ''), is_verified`

// FetchProfile retrieves one profile or ErrProfileNotFound.
func (r *ProfileRepo) FetchProfile(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id).
		Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.Email, &p.IsVerified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return p, nil
}

// FetchProfiles returns the profiles among ids that exist.
func (r *ProfileRepo) FetchProfiles(ctx context.Context, ids []string) ([]model.Profile, error) {
	if len(ids) == 0 {
		return []model.Profile{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	defer rows.Close()

	out := make([]model.Profile, 0, len(ids))
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.Email, &p.IsVerified); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
