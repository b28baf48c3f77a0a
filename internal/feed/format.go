package feed

import (
	"strconv"
	"strings"
	"time"
)

// TBD is rendered for dates and times that are not known yet.
const TBD = "TBD"

// JustNow is the date label of a comment that has not been refetched.
const JustNow = "Just now"

const (
	dateLayout        = "01/02/06"
	clockLayout       = "03:04 PM"
	commentDateLayout = "Jan 2, 2006"
	rangeSeparator    = " - "
)

// FormatDateRange renders "MM/DD/YY - MM/DD/YY".  Layouts are fixed so
// the output does not depend on the host locale.
func FormatDateRange(start, end time.Time) string {
	return formatDate(start) + rangeSeparator + formatDate(end)
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return TBD
	}
	return d.Format(dateLayout)
}

// FormatTimeRange renders "03:04 PM - 05:00 PM", or TBD when either side
// is missing or unreadable.
func FormatTimeRange(start, end *string) string {
	sh, sm, ss, ok1 := ParseClock(start)
	eh, em, es, ok2 := ParseClock(end)
	if !ok1 || !ok2 {
		return TBD
	}
	ref := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	from := ref.Add(clockOffset(sh, sm, ss))
	to := ref.Add(clockOffset(eh, em, es))
	return from.Format(clockLayout) + rangeSeparator + to.Format(clockLayout)
}

// FormatCommentDate renders the date shown next to a stored comment.
func FormatCommentDate(t time.Time) string {
	return t.Format(commentDateLayout)
}

// ParseClock reads a wall-clock time in "HH:MM" or "HH:MM:SS" form.  A nil
// or malformed value reports ok=false.
func ParseClock(s *string) (hour, minute, second int, ok bool) {
	if s == nil {
		return 0, 0, 0, false
	}
	parts := strings.Split(strings.TrimSpace(*s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	vals := [3]int{}
	for i, p := range parts {
		if i == 2 {
			// TIME(n) columns carry fractional seconds
			p, _, _ = strings.Cut(p, ".")
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, 0, false
		}
		vals[i] = n
	}
	if vals[0] > 23 || vals[1] > 59 || vals[2] > 59 {
		return 0, 0, 0, false
	}
	return vals[0], vals[1], vals[2], true
}

func clockOffset(h, m, s int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// combine places a wall-clock time on a calendar date, in the date's own
// location.
func combine(date time.Time, h, m, s int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, date.Location())
}
