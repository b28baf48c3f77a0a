package model

import "time"

// EventRecord is an event row as stored in the `events` table.  It is
// the source of truth for every derived feed entry and is owned by the
// store; the feed layer only reads it.
//
// Fields:
//
//	ID            – primary key identifier.
//	Title         – event title.
//	Content       – free-text description (may be empty).
//	ImageURL      – banner image reference (nil when unset).
//	Capacity      – maximum number of attendees, at least 1.
//	AttendeeCount – current attendees, between 0 and Capacity.
//	StartDate     – first calendar day (midnight in the store location).
//	EndDate       – last calendar day, never before StartDate.
//	StartTime     – optional wall-clock start ("HH:MM" or "HH:MM:SS").
//	EndTime       – optional wall-clock end.
//	Location      – human readable venue.
//	Address       – street address (nil when unset).
//	Coordinates   – map position (nil when unset).
//	Category      – feed category used by the filter bar.
//	Region        – feed region used by the filter bar.
//	OrganizerID   – profile id of the organizer (weak reference).
//	Parking       – parking notes (nil when unset).
//	CreatedAt     – creation timestamp.
type EventRecord struct {
	ID            uint64       // events.id
	Title         string       // events.title
	Content       string       // events.content
	ImageURL      *string      // events.image_url (nullable)
	Capacity      int          // events.capacity
	AttendeeCount int          // events.attendee_count
	StartDate     time.Time    // events.start_date
	EndDate       time.Time    // events.end_date
	StartTime     *string      // events.start_time (nullable)
	EndTime       *string      // events.end_time (nullable)
	Location      string       // events.location
	Address       *string      // events.address (nullable)
	Coordinates   *Coordinates // events.latitude / events.longitude (nullable)
	Category      string       // events.category
	Region        string       // events.region
	OrganizerID   *string      // events.org_user_id (nullable)
	Parking       *string      // events.parking (nullable)
	CreatedAt     time.Time    // events.created_at
}

// Coordinates is a latitude/longitude pair used by the location map.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventTag is a row of the `events_tags` join table.
type EventTag struct {
	EventID uint64 // events_tags.event_id
	TagID   uint64 // events_tags.tag_id
}
