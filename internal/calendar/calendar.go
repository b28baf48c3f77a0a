// Package calendar exports events as iCalendar files so attendees can add
// them to their own calendars.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/iliyamo/event-feed/internal/feed"
)

// Options describe the exporting service.
type Options struct {
	ProductID string // PRODID of the calendar
	Domain    string // right-hand side of event UIDs
	BaseURL   string // public site root; events link to BaseURL/events/<id>
}

// DefaultOptions are used for zero fields of Options.
var DefaultOptions = Options{
	ProductID: "-//event-feed//EN",
	Domain:    "event-feed.local",
}

// Export renders v as a single-event VCALENDAR.  An event with a
// readable, forward time window becomes a timed entry in UTC; any other
// event becomes an all-day entry spanning its dates.  stamp is the
// DTSTAMP of the entry.
func Export(v feed.EventView, opts Options, stamp time.Time) string {
	if opts.ProductID == "" {
		opts.ProductID = DefaultOptions.ProductID
	}
	if opts.Domain == "" {
		opts.Domain = DefaultOptions.Domain
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)

	ev := cal.AddEvent(UID(v.ID, opts.Domain))
	ev.SetDtStampTime(stamp.UTC())
	if !v.CreatedAt.IsZero() {
		ev.SetCreatedTime(v.CreatedAt.UTC())
	}
	ev.SetSummary(v.Title)
	ev.SetDescription(description(v))
	ev.SetLocation(location(v))
	ev.SetProperty(ical.ComponentPropertyGeo, fmt.Sprintf("%.6f;%.6f", v.Coordinates.Lat, v.Coordinates.Lng))
	if v.Category != "" {
		ev.SetProperty(ical.ComponentPropertyCategories, v.Category)
	}
	if v.Organizer.Email != "" {
		ev.SetOrganizer("mailto:"+v.Organizer.Email, ical.WithCN(v.Organizer.Name))
	}
	if opts.BaseURL != "" {
		ev.SetURL(fmt.Sprintf("%s/events/%d", strings.TrimRight(opts.BaseURL, "/"), v.ID))
	}

	start, end, ok := feed.EventWindow(v.StartDate, v.EndDate, v.StartTime, v.EndTime)
	switch {
	case ok && end.After(start):
		ev.SetStartAt(start.UTC())
		ev.SetEndAt(end.UTC())
	case !v.StartDate.IsZero():
		last := v.EndDate
		if last.Before(v.StartDate) {
			last = v.StartDate
		}
		ev.SetAllDayStartAt(v.StartDate)
		// DTEND of an all-day entry is exclusive
		ev.SetAllDayEndAt(last.AddDate(0, 0, 1))
	}
	return cal.Serialize()
}

// UID is the stable iCalendar id of an event, so re-imports update the
// existing entry.
func UID(id uint64, domain string) string {
	return fmt.Sprintf("event-%d@%s", id, domain)
}

// Filename is the suggested download name of an export.
func Filename(v feed.EventView) string {
	return fmt.Sprintf("event-%d.ics", v.ID)
}

func description(v feed.EventView) string {
	var b strings.Builder
	b.WriteString(v.Description)
	if v.Parking != "" {
		b.WriteString("\n\nParking: ")
		b.WriteString(v.Parking)
	}
	return b.String()
}

func location(v feed.EventView) string {
	if v.Address != "" && v.Address != v.Location {
		return v.Location + ", " + v.Address
	}
	return v.Location
}
