package feed

import (
	"time"

	"github.com/iliyamo/event-feed/internal/model"
)

// Organizer is the resolved organizer identity shown on an event.
type Organizer struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
}

// EventView is the display record of an event.  It is rebuilt from the
// raw rows on every request and never modified afterwards; filters and
// sorts produce new slices.
type EventView struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Capacity    int               `json:"capacity"`
	Attendees   int               `json:"attendees"`
	SpotsLeft   int               `json:"spots_left"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	StartTime   *string           `json:"start_time,omitempty"`
	EndTime     *string           `json:"end_time,omitempty"`
	StartsAt    time.Time         `json:"starts_at"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Location    string            `json:"location"`
	Address     string            `json:"address"`
	Coordinates model.Coordinates `json:"coordinates"`
	Category    string            `json:"category"`
	Region      string            `json:"region"`
	Parking     string            `json:"parking"`
	Organizer   Organizer         `json:"organizer"`
	Tags        []string          `json:"tags"`
	Status      Status            `json:"status"`
	StatusLabel string            `json:"status_label"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Normalizer converts raw event rows into EventViews using a fixed set of
// placeholders.
type Normalizer struct {
	defaults Defaults
}

// NewNormalizer returns a Normalizer using d, completed with the standard
// placeholders.
func NewNormalizer(d Defaults) Normalizer {
	return Normalizer{defaults: d.Complete()}
}

// Defaults reports the placeholders in use.
func (n Normalizer) Defaults() Defaults {
	return n.defaults.Complete()
}

// Normalize builds the view of raw.  tags are the rows returned by the tag
// lookup, in join order; organizer is nil when the profile lookup missed.
// It never fails: every missing value is replaced by a placeholder.
func (n Normalizer) Normalize(now time.Time, raw model.EventRecord, tags []model.Tag, organizer *model.Profile) EventView {
	d := n.Defaults()

	attendees := raw.AttendeeCount
	if attendees < 0 {
		attendees = 0
	}
	spots := raw.Capacity - attendees
	if spots < 0 {
		spots = 0
	}

	status := ResolveStatus(now, raw.StartDate, raw.EndDate, raw.StartTime, raw.EndTime)

	v := EventView{
		ID:          raw.ID,
		Title:       raw.Title,
		Content:     raw.Content,
		Description: orDefault(raw.Content, d.Description),
		Image:       derefOr(raw.ImageURL, d.Image),
		Capacity:    raw.Capacity,
		Attendees:   attendees,
		SpotsLeft:   spots,
		StartDate:   raw.StartDate,
		EndDate:     raw.EndDate,
		StartTime:   cloneString(raw.StartTime),
		EndTime:     cloneString(raw.EndTime),
		StartsAt:    startInstant(raw),
		Date:        FormatDateRange(raw.StartDate, raw.EndDate),
		Time:        FormatTimeRange(raw.StartTime, raw.EndTime),
		Location:    raw.Location,
		Address:     derefOr(raw.Address, raw.Location),
		Coordinates: d.Coordinates,
		Category:    raw.Category,
		Region:      raw.Region,
		Parking:     derefOr(raw.Parking, d.Parking),
		Organizer:   resolveOrganizer(organizer, d),
		Tags:        tagNames(tags),
		Status:      status,
		StatusLabel: status.Label(),
		CreatedAt:   raw.CreatedAt,
	}
	if raw.Coordinates != nil {
		v.Coordinates = *raw.Coordinates
	}
	if raw.OrganizerID != nil && v.Organizer.ID == "" {
		v.Organizer.ID = *raw.OrganizerID
	}
	return v
}

// Normalize is Normalizer.Normalize with the standard placeholders.
func Normalize(now time.Time, raw model.EventRecord, tags []model.Tag, organizer *model.Profile) EventView {
	return NewNormalizer(StandardDefaults()).Normalize(now, raw, tags, organizer)
}

func resolveOrganizer(p *model.Profile, d Defaults) Organizer {
	if p == nil {
		return Organizer{
			Name:  d.OrganizerName,
			Image: d.Avatar,
			Email: d.OrganizerEmail,
		}
	}
	return Organizer{
		ID:         p.ID,
		Name:       orDefault(p.FullName, d.OrganizerName),
		Image:      orDefault(p.AvatarURL, d.Avatar),
		Email:      orDefault(p.Email, d.OrganizerEmail),
		IsVerified: p.IsVerified,
	}
}

// startInstant is the sort key of an event: its start date, with the
// start time applied when it is readable.
func startInstant(raw model.EventRecord) time.Time {
	if raw.StartDate.IsZero() {
		return time.Time{}
	}
	h, m, s, ok := ParseClock(raw.StartTime)
	if !ok {
		return combine(raw.StartDate, 0, 0, 0)
	}
	return combine(raw.StartDate, h, m, s)
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func derefOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return orDefault(*p, def)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
