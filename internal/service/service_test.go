package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/iliyamo/event-feed/internal/auth"
	"github.com/iliyamo/event-feed/internal/feed"
	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/queue"
	"github.com/iliyamo/event-feed/internal/repository"
	"github.com/iliyamo/event-feed/internal/repository/memory"
)

var testNow = time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC)

type fakePublisher struct {
	events []queue.CommentPostedEvent
	err    error
}

func (p *fakePublisher) PublishCommentPosted(_ context.Context, ev queue.CommentPostedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newTestService(t *testing.T) (*Service, *memory.Store, *fakePublisher) {
	t.Helper()
	store := memory.New()
	store.Now = func() time.Time { return testNow }
	pub := &fakePublisher{}
	svc := New(Deps{
		Events:        store,
		Tags:          store,
		Profiles:      store,
		Comments:      store,
		Notifications: store,
		Publisher:     pub,
		Now:           func() time.Time { return testNow },
	})
	return svc, store, pub
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store.PutProfile(model.Profile{ID: "org", FullName: "Org Inc", Email: "org@example.com", IsVerified: true})
	store.PutProfile(model.Profile{ID: "ana", FullName: "Ana"})
	store.PutEvent(model.EventRecord{
		ID: 1, Title: "Jazz Night", Content: "Live jazz", Capacity: 100, AttendeeCount: 20,
		StartDate: day(2025, 1, 10), EndDate: day(2025, 1, 12),
		StartTime: strPtr("09:00"), EndTime: strPtr("17:00"),
		Location: "Manila", Category: "Culture", Region: "Philippines", OrganizerID: strPtr("org"),
	})
	store.PutEvent(model.EventRecord{
		ID: 2, Title: "Startup Expo", Capacity: 50, AttendeeCount: 5,
		StartDate: day(2025, 1, 12), EndDate: day(2025, 1, 12),
		StartTime: strPtr("09:00"), EndTime: strPtr("18:00"),
		Location: "Singapore", Category: "Startup", Region: "Asia", OrganizerID: strPtr("ghost"),
	})
	store.PutEvent(model.EventRecord{
		ID: 3, Title: "Design Meetup", Capacity: 30, AttendeeCount: 29,
		StartDate: day(2025, 2, 1), EndDate: day(2025, 2, 1),
		Location: "Berlin", Category: "Design", Region: "Europe",
	})
	if _, err := store.AttachTags(ctx, 1, []string{"Music", "Outdoor", "Music"}); err != nil {
		t.Fatal(err)
	}
}

func TestGetEventResolvesLookups(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)

	v, err := svc.GetEvent(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if v.Status != feed.StatusOngoing || v.Date != "01/10/25 - 01/12/25" {
		t.Errorf("status/date = %s %q", v.Status, v.Date)
	}
	if !slices.Equal(v.Tags, []string{"Music", "Outdoor", "Music"}) {
		t.Errorf("tags = %v", v.Tags)
	}
	if v.Organizer.Name != "Org Inc" || !v.Organizer.IsVerified {
		t.Errorf("organizer = %+v", v.Organizer)
	}
	if v.SpotsLeft != 80 {
		t.Errorf("spots = %d", v.SpotsLeft)
	}
}

func TestGetEventOrganizerMissFallsBack(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)

	v, err := svc.GetEvent(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	want := feed.Organizer{ID: "ghost", Name: "Event Organizer", Image: "/placeholder.svg", Email: "eventorganizer@gmail.com"}
	if v.Organizer != want {
		t.Errorf("organizer = %+v, want %+v", v.Organizer, want)
	}
	if len(v.Tags) != 0 || v.Tags == nil {
		t.Errorf("tags = %#v, want empty", v.Tags)
	}
}

func TestGetEventNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.GetEvent(context.Background(), 404); !errors.Is(err, repository.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestFeedFiltersSortsPaginates(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)
	ctx := context.Background()

	page, err := svc.Feed(ctx, FeedRequest{Order: feed.SortPopularity, PageSize: 2})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if page.Total != 3 || page.Page != 1 || page.PageSize != 2 || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Items[0].ID != 3 || page.Items[1].ID != 1 {
		t.Errorf("popularity order = %d, %d", page.Items[0].ID, page.Items[1].ID)
	}

	page, err = svc.Feed(ctx, FeedRequest{Filters: feed.Filters{Region: "Asia", Text: "expo"}, Order: feed.SortDate})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].ID != 2 || page.PageSize != feed.DefaultPageSize {
		t.Errorf("filtered = %+v", page)
	}
}

type failingEvents struct {
	EventStore
}

func (failingEvents) FetchEvents(context.Context) ([]model.EventRecord, error) {
	return nil, errors.New("connection refused")
}

func TestFeedPropagatesStoreFailure(t *testing.T) {
	_, store, _ := newTestService(t)
	svc := New(Deps{Events: failingEvents{store}, Tags: store, Profiles: store, Comments: store, Notifications: store})
	if _, err := svc.Feed(context.Background(), FeedRequest{}); err == nil || err.Error() != "connection refused" {
		t.Fatalf("err = %v", err)
	}
}

func TestPostCommentRequiresUser(t *testing.T) {
	svc, store, pub := newTestService(t)
	seed(t, store)
	ctx := context.Background()

	if _, err := svc.PostComment(ctx, 1, "hello"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if recs, _ := store.FetchComments(ctx, 1); len(recs) != 0 {
		t.Fatalf("comment stored without a user: %+v", recs)
	}
	if len(pub.events) != 0 {
		t.Fatalf("published without a user: %+v", pub.events)
	}
}

func TestPostCommentValidation(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)
	ctx := auth.WithUser(context.Background(), "ana")

	_, err := svc.PostComment(ctx, 1, "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "content" {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.PostComment(ctx, 99, "hi"); !errors.Is(err, repository.ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestPostCommentThenThread(t *testing.T) {
	svc, store, pub := newTestService(t)
	seed(t, store)
	ctx := auth.WithUser(context.Background(), "ana")
	store.PutComment(model.CommentRecord{ID: "old", EventID: 1, AuthorID: "nobody", Content: "first", CreatedAt: testNow.Add(-time.Hour)})

	view, err := svc.PostComment(ctx, 1, "  see you there  ")
	if err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if !view.Pending || view.Date != feed.JustNow || view.Name != "Ana" || view.Text != "see you there" {
		t.Fatalf("optimistic view = %+v", view)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published = %+v", pub.events)
	}
	ev := pub.events[0]
	if ev.OrganizerID != "org" || ev.AuthorName != "Ana" || ev.CommentID != view.ID || ev.EventTitle != "Jazz Night" {
		t.Errorf("event = %+v", ev)
	}

	thread, err := svc.Thread(ctx, 1, []feed.CommentView{view})
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if len(thread) != 2 || thread[0].ID != view.ID || thread[0].Pending || thread[1].Name != "Anonymous" {
		t.Fatalf("thread = %+v", thread)
	}
}

func TestPostCommentPublishFailureIsNotFatal(t *testing.T) {
	svc, store, pub := newTestService(t)
	seed(t, store)
	pub.err = errors.New("broker down")

	if _, err := svc.PostComment(auth.WithUser(context.Background(), "ana"), 1, "hi"); err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if recs, _ := store.FetchComments(context.Background(), 1); len(recs) != 1 {
		t.Fatalf("comments = %+v", recs)
	}
}

func TestThreadKeepsUnseenPending(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)
	pending := feed.CommentView{ID: "local", Text: "in flight", CreatedAt: testNow, Pending: true}

	thread, err := svc.Thread(context.Background(), 1, []feed.CommentView{pending})
	if err != nil {
		t.Fatal(err)
	}
	if len(thread) != 1 || thread[0].ID != "local" || !thread[0].Pending {
		t.Fatalf("thread = %+v", thread)
	}
	if _, err := svc.Thread(context.Background(), 77, nil); !errors.Is(err, repository.ErrEventNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateEvent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	in := CreateEventInput{
		Title: " Food Fair ", Content: "Street food", Capacity: 200,
		StartDate: "2025-03-01", EndDate: "2025-03-02", StartTime: "10:00", EndTime: "20:00",
		Location: "Quezon City", Category: "Culture", Region: "Philippines",
		Tags: []string{"Food", "Outdoor"},
	}
	if _, err := svc.CreateEvent(ctx, in); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if all, _ := store.FetchEvents(ctx); len(all) != 0 {
		t.Fatalf("event stored without a user")
	}

	store.PutProfile(model.Profile{ID: "ana", FullName: "Ana"})
	v, err := svc.CreateEvent(auth.WithUser(ctx, "ana"), in)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if v.ID == 0 || v.Title != "Food Fair" || v.Organizer.Name != "Ana" || v.Status != feed.StatusUpcoming {
		t.Errorf("view = %+v", v)
	}
	if !slices.Equal(v.Tags, []string{"Food", "Outdoor"}) {
		t.Errorf("tags = %v", v.Tags)
	}
	if v.Time != "10:00 AM - 08:00 PM" || v.Parking != "Parking details to be announced" {
		t.Errorf("time/parking = %q %q", v.Time, v.Parking)
	}
}

func TestCreateEventValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := auth.WithUser(context.Background(), "ana")
	lat := 95.0

	cases := []struct {
		name   string
		in     CreateEventInput
		fields []string
	}{
		{"empty", CreateEventInput{}, []string{"title", "content", "capacity", "location", "start_date", "end_date"}},
		{"end before start", CreateEventInput{Title: "t", Content: "c", Capacity: 1, Location: "l", StartDate: "2025-03-02", EndDate: "2025-03-01"}, []string{"end_date"}},
		{"same day end time not after start", CreateEventInput{Title: "t", Content: "c", Capacity: 1, Location: "l", StartDate: "2025-03-01", EndDate: "2025-03-01", StartTime: "10:00", EndTime: "10:00"}, []string{"end_time"}},
		{"bad formats", CreateEventInput{Title: "t", Content: "c", Capacity: 1, Location: "l", StartDate: "03/01/2025", EndDate: "2025-03-01", StartTime: "25:00"}, []string{"start_date", "start_time"}},
		{"half coordinates", CreateEventInput{Title: "t", Content: "c", Capacity: 1, Location: "l", StartDate: "2025-03-01", EndDate: "2025-03-01", Latitude: &lat}, []string{"coordinates"}},
	}
	for _, tc := range cases {
		_, err := svc.CreateEvent(ctx, tc.in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: err = %v, want ValidationError", tc.name, err)
			continue
		}
		var got []string
		for _, f := range verr.Fields {
			got = append(got, f.Field)
		}
		if !slices.Equal(got, tc.fields) {
			t.Errorf("%s: fields = %v, want %v", tc.name, got, tc.fields)
		}
	}
}

func TestCreateEventMultiDayAllowsEarlierEndClock(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.PutProfile(model.Profile{ID: "ana"})
	in := CreateEventInput{
		Title: "Camp", Content: "Two days", Capacity: 10, Location: "Baguio",
		StartDate: "2025-03-01", EndDate: "2025-03-02", StartTime: "18:00", EndTime: "09:00",
	}
	if _, err := svc.CreateEvent(auth.WithUser(context.Background(), "ana"), in); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
}

func TestSweepRemindersOncePerStart(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)
	ctx := context.Background()
	// starts 2025-01-12 09:00, 21h after testNow; organizer "ghost" has no profile
	sent, err := svc.SweepReminders(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("SweepReminders: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	again, err := svc.SweepReminders(ctx, 24*time.Hour)
	if err != nil || again != 0 {
		t.Fatalf("second sweep = %d, %v", again, err)
	}

	list, err := svc.Notifications(auth.WithUser(ctx, "ghost"), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].EventID != 2 || list[0].Kind != model.NotificationReminder {
		t.Fatalf("notifications = %+v", list)
	}
	if list[0].Title != "Starting soon: Startup Expo" || list[0].Body != "01/12/25 - 01/12/25, 09:00 AM - 06:00 PM at Singapore" {
		t.Errorf("reminder = %q / %q", list[0].Title, list[0].Body)
	}
}

func TestSweepRemindersSkipsOutsideWindow(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store)
	sent, err := svc.SweepReminders(context.Background(), time.Hour)
	if err != nil || sent != 0 {
		t.Fatalf("sent = %d, %v", sent, err)
	}
}

func TestNotificationsReadFlow(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	n := model.Notification{ID: "n1", ProfileID: "ana", Kind: model.NotificationComment, CreatedAt: testNow}
	if err := store.InsertNotification(ctx, &n); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Notifications(ctx, false); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
	user := auth.WithUser(ctx, "ana")
	if err := svc.MarkNotificationRead(auth.WithUser(ctx, "eve"), "n1"); !errors.Is(err, repository.ErrNotificationNotFound) {
		t.Fatalf("foreign mark = %v", err)
	}
	if err := svc.MarkNotificationRead(user, "n1"); err != nil {
		t.Fatal(err)
	}
	unread, _ := svc.Notifications(user, true)
	if len(unread) != 0 {
		t.Fatalf("unread = %+v", unread)
	}
}
