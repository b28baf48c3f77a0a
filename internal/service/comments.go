package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/event-feed/internal/feed"
	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/queue"
	"github.com/iliyamo/event-feed/internal/repository"
)

// maxCommentLen bounds a comment body in runes.
const maxCommentLen = 2000

// Thread returns the comments of an event newest first.  pending are
// entries the caller already shows optimistically; those not yet in the
// store are kept, the rest are replaced by their stored versions.
func (s *Service) Thread(ctx context.Context, eventID uint64, pending []feed.CommentView) ([]feed.CommentView, error) {
	if _, err := s.events.FetchEvent(ctx, eventID); err != nil {
		return nil, err
	}
	recs, err := s.comments.FetchComments(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event %d comments: %w", eventID, err)
	}
	authors, err := s.profiles.FetchProfiles(ctx, authorIDs(recs))
	if err != nil {
		return nil, fmt.Errorf("event %d comment authors: %w", eventID, err)
	}
	fresh := s.composer.Compose(recs, authors)
	if len(pending) == 0 {
		return fresh, nil
	}
	return feed.Reconcile(pending, fresh), nil
}

// PostComment stores a comment by the current user and returns the
// optimistic entry to show at the top of the thread.  Nothing is written
// when there is no current user.  The organizer notification is published
// best effort; a publish failure is logged and the comment still counts as
// posted.
func (s *Service) PostComment(ctx context.Context, eventID uint64, body string) (feed.CommentView, error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return feed.CommentView{}, err
	}
	body = strings.TrimSpace(body)
	switch {
	case body == "":
		return feed.CommentView{}, invalid([]FieldError{{"content", "required"}})
	case utf8.RuneCountInString(body) > maxCommentLen:
		return feed.CommentView{}, invalid([]FieldError{{"content", fmt.Sprintf("max length %d", maxCommentLen)}})
	}

	event, err := s.events.FetchEvent(ctx, eventID)
	if err != nil {
		return feed.CommentView{}, err
	}
	rec, err := s.comments.InsertComment(ctx, eventID, userID, body)
	if err != nil {
		return feed.CommentView{}, err
	}

	var author *model.Profile
	p, err := s.profiles.FetchProfile(ctx, userID)
	switch {
	case err == nil:
		author = &p
	case !errors.Is(err, repository.ErrProfileNotFound):
		log.Printf("comments: author lookup for %s failed: %v", userID, err)
	}
	view := s.composer.AppendOptimistic(nil, rec, author)[0]

	if s.publisher != nil && event.OrganizerID != nil {
		ev := queue.CommentPostedEvent{
			CommentID:   rec.ID,
			EventID:     eventID,
			EventTitle:  event.Title,
			OrganizerID: *event.OrganizerID,
			AuthorID:    userID,
			AuthorName:  view.Name,
			Excerpt:     body,
			PostedAt:    rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := s.publisher.PublishCommentPosted(ctx, ev); err != nil {
			log.Printf("comments: publish comment %s failed: %v", rec.ID, err)
		}
	}
	return view, nil
}

func authorIDs(recs []model.CommentRecord) []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range recs {
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			ids = append(ids, r.AuthorID)
		}
	}
	return ids
}
