package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/event-feed/internal/feed"
	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/repository"
)

// Notifications lists the current user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, unreadOnly bool) ([]model.Notification, error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.notifications.ListNotifications(ctx, userID, unreadOnly)
}

// MarkNotificationRead flags one of the current user's notifications.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return s.notifications.MarkNotificationRead(ctx, userID, id)
}

// SweepReminders notifies organizers whose events are upcoming and start
// within window of now.  Each event start yields one reminder however many
// sweeps see it; it returns how many reminders were written.
func (s *Service) SweepReminders(ctx context.Context, window time.Duration) (int, error) {
	views, err := s.AllEvents(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	sent := 0
	for _, v := range views {
		if v.Organizer.ID == "" || v.Status != feed.StatusUpcoming {
			continue
		}
		if !v.StartsAt.After(now) || v.StartsAt.Sub(now) > window {
			continue
		}
		n := reminder(v, now)
		err := s.notifications.InsertNotification(ctx, &n)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, repository.ErrDuplicate):
		default:
			return sent, fmt.Errorf("reminder for event %d: %w", v.ID, err)
		}
	}
	return sent, nil
}

func reminder(v feed.EventView, now time.Time) model.Notification {
	key := fmt.Sprintf("%d@%s", v.ID, v.StartsAt.UTC().Format(time.RFC3339))
	return model.Notification{
		ID:        model.NotificationID(model.NotificationReminder, key),
		ProfileID: v.Organizer.ID,
		Kind:      model.NotificationReminder,
		EventID:   v.ID,
		Title:     "Starting soon: " + v.Title,
		Body:      fmt.Sprintf("%s, %s at %s", v.Date, v.Time, v.Location),
		CreatedAt: now,
	}
}
