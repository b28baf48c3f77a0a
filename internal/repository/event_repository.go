package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-feed/internal/model"
)

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, title, content, image_url, capacity, attendee_count,
	start_date, end_date, start_time, end_time, location, address,
	latitude, longitude, category, region, org_user_id, parking, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (model.EventRecord, error) {
	var (
		e                                        model.EventRecord
		image, startTime, endTime, addr, org, pk sql.NullString
		lat, lng                                 sql.NullFloat64
	)
	err := s.Scan(
		&e.ID, &e.Title, &e.Content, &image, &e.Capacity, &e.AttendeeCount,
		&e.StartDate, &e.EndDate, &startTime, &endTime, &e.Location, &addr,
		&lat, &lng, &e.Category, &e.Region, &org, &pk, &e.CreatedAt,
	)
	if err != nil {
		return model.EventRecord{}, err
	}
	e.ImageURL = nullString(image)
	e.StartTime = nullString(startTime)
	e.EndTime = nullString(endTime)
	e.Address = nullString(addr)
	e.OrganizerID = nullString(org)
	e.Parking = nullString(pk)
	if lat.Valid && lng.Valid {
		e.Coordinates = &model.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	return e, nil
}

// FetchEvent retrieves one event.  It returns ErrEventNotFound if there
// is no matching row.
func (r *EventRepo) FetchEvent(ctx context.Context, id uint64) (model.EventRecord, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	e, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EventRecord{}, ErrEventNotFound
		}
		return model.EventRecord{}, fmt.Errorf("fetch event %d: %w", id, err)
	}
	return e, nil
}

// FetchEvents returns every event ordered by start date.  An empty table
// yields an empty slice and nil error.
func (r *EventRepo) FetchEvents(ctx context.Context) ([]model.EventRecord, error) {
	q := `SELECT ` + eventColumns + ` FROM events ORDER BY start_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer rows.Close()

	out := []model.EventRecord{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	return out, nil
}

// InsertEvent stores e and assigns the generated ID and created_at back
// to it.
func (r *EventRepo) InsertEvent(ctx context.Context, e *model.EventRecord) error {
	const q = `INSERT INTO events (title, content, image_url, capacity, attendee_count,
		start_date, end_date, start_time, end_time, location, address,
		latitude, longitude, category, region, org_user_id, parking)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var lat, lng sql.NullFloat64
	if e.Coordinates != nil {
		lat = sql.NullFloat64{Float64: e.Coordinates.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: e.Coordinates.Lng, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q,
		e.Title, e.Content, e.ImageURL, e.Capacity, e.AttendeeCount,
		e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.Location, e.Address,
		lat, lng, e.Category, e.Region, e.OrganizerID, e.Parking,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	e.ID = uint64(id)
	// created_at is filled by the column default
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM events WHERE id = ?`, e.ID).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
