package feed

import (
	"fmt"
	"time"
)

// Status is the lifecycle phase of an event relative to a clock reading.
type Status int

const (
	StatusUpcoming Status = iota
	StatusOngoing
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusUpcoming:
		return "UPCOMING"
	case StatusOngoing:
		return "ONGOING"
	case StatusEnded:
		return "ENDED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Label is the badge text shown on event cards.
func (s Status) Label() string {
	switch s {
	case StatusOngoing:
		return "On Going"
	case StatusEnded:
		return "Ended"
	default:
		return "Starting Soon"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventWindow returns the start and end instants of an event.  ok is false
// when either time is missing or unreadable, or a date is zero; in that
// case the event has no resolvable window.
func EventWindow(startDate, endDate time.Time, startTime, endTime *string) (start, end time.Time, ok bool) {
	if startDate.IsZero() || endDate.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	sh, sm, ss, ok1 := ParseClock(startTime)
	eh, em, es, ok2 := ParseClock(endTime)
	if !ok1 || !ok2 {
		return time.Time{}, time.Time{}, false
	}
	return combine(startDate, sh, sm, ss), combine(endDate, eh, em, es), true
}

// ResolveStatus computes the lifecycle phase of an event at now.
//
// An event without both times is always StatusUpcoming, even once its
// dates have passed.  An inverted window (end before start) is ENDED once
// now is past the end and UPCOMING otherwise.
func ResolveStatus(now time.Time, startDate, endDate time.Time, startTime, endTime *string) Status {
	start, end, ok := EventWindow(startDate, endDate, startTime, endTime)
	if !ok {
		return StatusUpcoming
	}
	if end.Before(start) {
		if now.After(end) {
			return StatusEnded
		}
		return StatusUpcoming
	}
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusEnded
	default:
		return StatusOngoing
	}
}
