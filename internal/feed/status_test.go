package feed

import (
	"testing"
	"time"
)

func TestResolveStatusOngoingMultiDay(t *testing.T) {
	got := ResolveStatus(at(2025, 1, 10, 11, 0), day(2025, 1, 10), day(2025, 1, 10), strPtr("10:00"), strPtr("12:00"))
	if got != StatusOngoing {
		t.Fatalf("status = %s, want ONGOING", got)
	}
}

func TestResolveStatusBoundaries(t *testing.T) {
	start, end := day(2025, 3, 1), day(2025, 3, 2)
	st, et := strPtr("09:30:00"), strPtr("18:00:00")

	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"long before", at(2024, 12, 31, 23, 59), StatusUpcoming},
		{"one second before", time.Date(2025, 3, 1, 9, 29, 59, 0, time.UTC), StatusUpcoming},
		{"exactly at start", at(2025, 3, 1, 9, 30), StatusOngoing},
		{"overnight", at(2025, 3, 1, 23, 0), StatusOngoing},
		{"exactly at end", at(2025, 3, 2, 18, 0), StatusOngoing},
		{"one second after", time.Date(2025, 3, 2, 18, 0, 1, 0, time.UTC), StatusEnded},
		{"long after", at(2026, 1, 1, 0, 0), StatusEnded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveStatus(tc.now, start, end, st, et); got != tc.want {
				t.Fatalf("status = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResolveStatusPartitionsTimeline(t *testing.T) {
	startDate, endDate := day(2025, 6, 1), day(2025, 6, 3)
	st, et := strPtr("08:00"), strPtr("20:15")
	eventStart, eventEnd, ok := EventWindow(startDate, endDate, st, et)
	if !ok {
		t.Fatalf("window not resolvable")
	}

	for now := eventStart.Add(-48 * time.Hour); now.Before(eventEnd.Add(48 * time.Hour)); now = now.Add(17 * time.Minute) {
		got := ResolveStatus(now, startDate, endDate, st, et)
		var want Status
		switch {
		case now.Before(eventStart):
			want = StatusUpcoming
		case now.After(eventEnd):
			want = StatusEnded
		default:
			want = StatusOngoing
		}
		if got != want {
			t.Fatalf("now=%s: status = %s, want %s", now, got, want)
		}
	}
}

func TestResolveStatusMissingTimeIsAlwaysUpcoming(t *testing.T) {
	start, end := day(2020, 1, 1), day(2020, 1, 2)
	nows := []time.Time{at(2019, 1, 1, 0, 0), at(2020, 1, 1, 12, 0), at(2030, 1, 1, 0, 0)}
	times := [][2]*string{
		{nil, nil},
		{strPtr("10:00"), nil},
		{nil, strPtr("12:00")},
		{strPtr("not a time"), strPtr("12:00")},
		{strPtr("25:00"), strPtr("12:00")},
	}
	for _, now := range nows {
		for _, tt := range times {
			if got := ResolveStatus(now, start, end, tt[0], tt[1]); got != StatusUpcoming {
				t.Fatalf("now=%s times=%v: status = %s, want UPCOMING", now, tt, got)
			}
		}
	}
}

func TestResolveStatusZeroDates(t *testing.T) {
	got := ResolveStatus(at(2025, 1, 1, 0, 0), time.Time{}, time.Time{}, strPtr("10:00"), strPtr("11:00"))
	if got != StatusUpcoming {
		t.Fatalf("status = %s, want UPCOMING", got)
	}
}

func TestResolveStatusInvertedWindow(t *testing.T) {
	// end (10:00) is before start (14:00) on the same day
	d := day(2025, 5, 5)
	st, et := strPtr("14:00"), strPtr("10:00")

	cases := []struct {
		now  time.Time
		want Status
	}{
		{at(2025, 5, 5, 9, 0), StatusUpcoming},
		{at(2025, 5, 5, 10, 0), StatusUpcoming},
		{at(2025, 5, 5, 12, 0), StatusEnded},
		{at(2025, 5, 5, 15, 0), StatusEnded},
	}
	for _, tc := range cases {
		if got := ResolveStatus(tc.now, d, d, st, et); got != tc.want {
			t.Fatalf("now=%s: status = %s, want %s", tc.now, got, tc.want)
		}
	}
}

func TestResolveStatusUsesDateLocation(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	d := time.Date(2025, 1, 10, 0, 0, 0, 0, manila)
	// 10:00-12:00 in Manila is 02:00-04:00 UTC
	now := at(2025, 1, 10, 3, 0)
	if got := ResolveStatus(now, d, d, strPtr("10:00"), strPtr("12:00")); got != StatusOngoing {
		t.Fatalf("status = %s, want ONGOING", got)
	}
}

func TestStatusLabels(t *testing.T) {
	want := map[Status]string{
		StatusUpcoming: "Starting Soon",
		StatusOngoing:  "On Going",
		StatusEnded:    "Ended",
	}
	for s, label := range want {
		if s.Label() != label {
			t.Errorf("%s label = %q, want %q", s, s.Label(), label)
		}
	}
	text, _ := StatusEnded.MarshalText()
	if string(text) != "ENDED" {
		t.Errorf("MarshalText = %q", text)
	}
}
