// Package memory is an in-process implementation of every store the
// service needs.  It backs APP_STORE=memory and the tests of the layers
// above the repositories.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/repository"
)

// Store keeps all rows in maps guarded by one mutex.  Records are copied
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	// Now stamps comments and events.  Defaults to time.Now.
	Now func() time.Time

	events        map[uint64]model.EventRecord
	nextEventID   uint64
	tags          []model.Tag
	eventsTags    []model.EventTag
	profiles      map[string]model.Profile
	comments      []model.CommentRecord
	notifications []model.Notification
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		Now:      time.Now,
		events:   map[uint64]model.EventRecord{},
		profiles: map[string]model.Profile{},
	}
}

// PutProfile inserts or replaces a profile.
func (s *Store) PutProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

// PutEvent inserts or replaces an event with a caller-chosen id.
func (s *Store) PutEvent(e model.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = cloneEvent(e)
	if e.ID > s.nextEventID {
		s.nextEventID = e.ID
	}
}

// PutComment appends a comment as is.
func (s *Store) PutComment(c model.CommentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, c)
}

// FetchEvent implements the event store.
func (s *Store) FetchEvent(_ context.Context, id uint64) (model.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return model.EventRecord{}, repository.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

// FetchEvents returns all events ordered by start date, then id.
func (s *Store) FetchEvents(_ context.Context) ([]model.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.EventRecord, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, cloneEvent(e))
	}
	slices.SortFunc(out, func(a, b model.EventRecord) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return cmpUint(a.ID, b.ID)
	})
	return out, nil
}

// InsertEvent assigns the next id and created_at.
func (s *Store) InsertEvent(_ context.Context, e *model.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	e.ID = s.nextEventID
	e.CreatedAt = s.Now()
	s.events[e.ID] = cloneEvent(*e)
	return nil
}

// FetchEventsTags returns join rows in insertion order.
func (s *Store) FetchEventsTags(_ context.Context, eventID *uint64) ([]model.EventTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.EventTag{}
	for _, et := range s.eventsTags {
		if eventID == nil || et.EventID == *eventID {
			out = append(out, et)
		}
	}
	return out, nil
}

// FetchTags returns the known tags among ids, ordered by id.
func (s *Store) FetchTags(_ context.Context, ids []uint64) ([]model.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Tag{}
	for _, t := range s.tags {
		if slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// AttachTags links eventID to the named tags, creating missing ones.
func (s *Store) AttachTags(_ context.Context, eventID uint64, names []string) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return nil, repository.ErrEventNotFound
	}
	out := make([]model.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		i := slices.IndexFunc(s.tags, func(t model.Tag) bool { return t.Name == name })
		if i < 0 {
			s.tags = append(s.tags, model.Tag{ID: uint64(len(s.tags) + 1), Name: name})
			i = len(s.tags) - 1
		}
		s.eventsTags = append(s.eventsTags, model.EventTag{EventID: eventID, TagID: s.tags[i].ID})
		out = append(out, s.tags[i])
	}
	return out, nil
}

// FetchProfile implements the profile store.
func (s *Store) FetchProfile(_ context.Context, id string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

// FetchProfiles returns the existing profiles among ids.
func (s *Store) FetchProfiles(_ context.Context, ids []string) ([]model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Profile{}
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// FetchComments returns the comments of one event in insertion order.
func (s *Store) FetchComments(_ context.Context, eventID uint64) ([]model.CommentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.CommentRecord{}
	for _, c := range s.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

// InsertComment appends a comment to an existing event.
func (s *Store) InsertComment(_ context.Context, eventID uint64, authorID, body string) (model.CommentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return model.CommentRecord{}, repository.ErrEventNotFound
	}
	c := model.CommentRecord{
		ID:        uuid.NewString(),
		EventID:   eventID,
		AuthorID:  authorID,
		Content:   body,
		CreatedAt: s.Now(),
	}
	s.comments = append(s.comments, c)
	return c, nil
}

// InsertNotification stores n unless its id is taken.
func (s *Store) InsertNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.ContainsFunc(s.notifications, func(x model.Notification) bool { return x.ID == n.ID }) {
		return repository.ErrDuplicate
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

// ListNotifications returns a profile's notifications newest first.
func (s *Store) ListNotifications(_ context.Context, profileID string, unreadOnly bool) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Notification{}
	for _, n := range s.notifications {
		if n.ProfileID == profileID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// MarkNotificationRead flags one of profileID's notifications as read.
func (s *Store) MarkNotificationRead(_ context.Context, profileID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].ProfileID == profileID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

// Ping satisfies the readiness probe.
func (s *Store) Ping(context.Context) error { return nil }

func cloneEvent(e model.EventRecord) model.EventRecord {
	e.ImageURL = cloneString(e.ImageURL)
	e.StartTime = cloneString(e.StartTime)
	e.EndTime = cloneString(e.EndTime)
	e.Address = cloneString(e.Address)
	e.OrganizerID = cloneString(e.OrganizerID)
	e.Parking = cloneString(e.Parking)
	if e.Coordinates != nil {
		c := *e.Coordinates
		e.Coordinates = &c
	}
	return e
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
