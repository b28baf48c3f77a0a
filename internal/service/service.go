// Package service composes the stores with the feed core.  It samples the
// clock, gathers raw records and their lookups, and hands them to the
// pure functions in package feed.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-feed/internal/auth"
	"github.com/iliyamo/event-feed/internal/feed"
	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/queue"
)

// EventStore reads and writes event rows.
type EventStore interface {
	FetchEvent(ctx context.Context, id uint64) (model.EventRecord, error)
	FetchEvents(ctx context.Context) ([]model.EventRecord, error)
	InsertEvent(ctx context.Context, e *model.EventRecord) error
}

// TagStore reads tags and their links to events.  A nil eventID asks for
// the links of every event.
type TagStore interface {
	FetchEventsTags(ctx context.Context, eventID *uint64) ([]model.EventTag, error)
	FetchTags(ctx context.Context, ids []uint64) ([]model.Tag, error)
	AttachTags(ctx context.Context, eventID uint64, names []string) ([]model.Tag, error)
}

// ProfileStore looks up profiles owned by the auth service.
type ProfileStore interface {
	FetchProfile(ctx context.Context, id string) (model.Profile, error)
	FetchProfiles(ctx context.Context, ids []string) ([]model.Profile, error)
}

// CommentStore reads and appends comments.
type CommentStore interface {
	FetchComments(ctx context.Context, eventID uint64) ([]model.CommentRecord, error)
	InsertComment(ctx context.Context, eventID uint64, authorID, body string) (model.CommentRecord, error)
}

// NotificationStore stores per-profile notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, profileID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, profileID, id string) error
}

// Publisher announces stored comments to the notification pipeline.
type Publisher interface {
	PublishCommentPosted(ctx context.Context, ev queue.CommentPostedEvent) error
}

// Deps are the collaborators of a Service.  Publisher may be nil, in
// which case comments produce no notifications.
type Deps struct {
	Events        EventStore
	Tags          TagStore
	Profiles      ProfileStore
	Comments      CommentStore
	Notifications NotificationStore
	Identity      auth.Identity
	Publisher     Publisher

	Defaults feed.Defaults
	Location *time.Location   // calendar zone of event dates; UTC when nil
	Now      func() time.Time // time.Now when nil
}

// Service implements the event feed use cases.
type Service struct {
	events        EventStore
	tags          TagStore
	profiles      ProfileStore
	comments      CommentStore
	notifications NotificationStore
	identity      auth.Identity
	publisher     Publisher

	normalizer feed.Normalizer
	composer   feed.Composer
	loc        *time.Location
	now        func() time.Time
}

// New wires a Service from d.
func New(d Deps) *Service {
	s := &Service{
		events:        d.Events,
		tags:          d.Tags,
		profiles:      d.Profiles,
		comments:      d.Comments,
		notifications: d.Notifications,
		identity:      d.Identity,
		publisher:     d.Publisher,
		normalizer:    feed.NewNormalizer(d.Defaults),
		composer:      feed.NewComposer(d.Defaults),
		loc:           d.Location,
		now:           d.Now,
	}
	if s.identity == nil {
		s.identity = auth.ContextIdentity{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now reads the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Defaults returns the placeholders in use.
func (s *Service) Defaults() feed.Defaults { return s.normalizer.Defaults() }
