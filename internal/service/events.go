package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-feed/internal/feed"
	"github.com/iliyamo/event-feed/internal/model"
	"github.com/iliyamo/event-feed/internal/repository"
)

// GetEvent returns the view of one event.  A missing organizer profile is
// not an error; the view carries the placeholder organizer.
func (s *Service) GetEvent(ctx context.Context, id uint64) (feed.EventView, error) {
	raw, err := s.events.FetchEvent(ctx, id)
	if err != nil {
		return feed.EventView{}, err
	}
	links, err := s.tags.FetchEventsTags(ctx, &id)
	if err != nil {
		return feed.EventView{}, fmt.Errorf("event %d tags: %w", id, err)
	}
	tags, err := s.resolveTags(ctx, links)
	if err != nil {
		return feed.EventView{}, err
	}

	var organizer *model.Profile
	if raw.OrganizerID != nil {
		p, err := s.profiles.FetchProfile(ctx, *raw.OrganizerID)
		switch {
		case err == nil:
			organizer = &p
		case !errors.Is(err, repository.ErrProfileNotFound):
			return feed.EventView{}, fmt.Errorf("event %d organizer: %w", id, err)
		}
	}
	return s.normalizer.Normalize(s.now(), raw, tags[id], organizer), nil
}

// FeedRequest selects a page of the feed.
type FeedRequest struct {
	Filters  feed.Filters
	Order    feed.SortOrder
	Page     int
	PageSize int
}

// FeedPage is one page of filtered, sorted event views.
type FeedPage struct {
	Items    []feed.EventView
	Total    int
	Page     int
	PageSize int
}

// Feed normalizes every event against a single clock reading, then
// filters, sorts and paginates.
func (s *Service) Feed(ctx context.Context, req FeedRequest) (FeedPage, error) {
	views, err := s.AllEvents(ctx)
	if err != nil {
		return FeedPage{}, err
	}
	items, total := feed.Paginate(feed.Query(views, req.Filters, req.Order), req.Page, req.PageSize)
	page, size := feed.PageBounds(req.Page, req.PageSize)
	return FeedPage{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// AllEvents returns the views of every event in store order.
func (s *Service) AllEvents(ctx context.Context) ([]feed.EventView, error) {
	raws, err := s.events.FetchEvents(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.tags.FetchEventsTags(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("feed tags: %w", err)
	}
	tags, err := s.resolveTags(ctx, links)
	if err != nil {
		return nil, err
	}
	organizers, err := s.lookupProfiles(ctx, organizerIDs(raws))
	if err != nil {
		return nil, fmt.Errorf("feed organizers: %w", err)
	}

	now := s.now()
	views := make([]feed.EventView, 0, len(raws))
	for _, raw := range raws {
		var organizer *model.Profile
		if raw.OrganizerID != nil {
			if p, ok := organizers[*raw.OrganizerID]; ok {
				organizer = &p
			}
		}
		views = append(views, s.normalizer.Normalize(now, raw, tags[raw.ID], organizer))
	}
	return views, nil
}

// resolveTags groups the tags of each event in link order.  Duplicate
// links yield duplicate tags; links to unknown tags are dropped.
func (s *Service) resolveTags(ctx context.Context, links []model.EventTag) (map[uint64][]model.Tag, error) {
	out := map[uint64][]model.Tag{}
	if len(links) == 0 {
		return out, nil
	}
	seen := map[uint64]bool{}
	ids := make([]uint64, 0, len(links))
	for _, l := range links {
		if !seen[l.TagID] {
			seen[l.TagID] = true
			ids = append(ids, l.TagID)
		}
	}
	tags, err := s.tags.FetchTags(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	byID := make(map[uint64]model.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	for _, l := range links {
		if t, ok := byID[l.TagID]; ok {
			out[l.EventID] = append(out[l.EventID], t)
		}
	}
	return out, nil
}

func (s *Service) lookupProfiles(ctx context.Context, ids []string) (map[string]model.Profile, error) {
	out := map[string]model.Profile{}
	if len(ids) == 0 {
		return out, nil
	}
	profiles, err := s.profiles.FetchProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func organizerIDs(raws []model.EventRecord) []string {
	seen := map[string]bool{}
	var ids []string
	for _, r := range raws {
		if r.OrganizerID != nil && !seen[*r.OrganizerID] {
			seen[*r.OrganizerID] = true
			ids = append(ids, *r.OrganizerID)
		}
	}
	return ids
}

// CreateEventInput is the body of an event creation request.  Dates are
// calendar days ("2006-01-02") in the service location; times are
// optional wall-clock values ("15:04" or "15:04:05").
type CreateEventInput struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURL  string   `json:"image_url"`
	Capacity  int      `json:"capacity"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Location  string   `json:"location"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Category  string   `json:"category"`
	Region    string   `json:"region"`
	Parking   string   `json:"parking"`
	Tags      []string `json:"tags"`
}

const (
	maxTitleLen = 255
	maxTags     = 10
)

// CreateEvent validates in, stores the event with the current user as
// organizer and returns its view.  The identity check happens before any
// write.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (feed.EventView, error) {
	userID, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return feed.EventView{}, err
	}
	rec, err := s.buildEvent(in)
	if err != nil {
		return feed.EventView{}, err
	}
	rec.OrganizerID = &userID

	if err := s.events.InsertEvent(ctx, &rec); err != nil {
		return feed.EventView{}, err
	}
	if len(in.Tags) > 0 {
		if _, err := s.tags.AttachTags(ctx, rec.ID, in.Tags); err != nil {
			return feed.EventView{}, fmt.Errorf("event %d tags: %w", rec.ID, err)
		}
	}
	return s.GetEvent(ctx, rec.ID)
}

// buildEvent applies the creation rules: title, content and location are
// required, capacity is at least 1, both dates are required with the end
// not before the start, and when both times are given the end instant is
// after the start instant.
func (s *Service) buildEvent(in CreateEventInput) (model.EventRecord, error) {
	var errs []FieldError
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		errs = append(errs, FieldError{"title", "required"})
	case len(title) > maxTitleLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("max length %d", maxTitleLen)})
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		errs = append(errs, FieldError{"content", "required"})
	}
	if in.Capacity < 1 {
		errs = append(errs, FieldError{"capacity", "must be at least 1"})
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		errs = append(errs, FieldError{"location", "required"})
	}

	start, startOK := s.parseDay(in.StartDate, "start_date", &errs)
	end, endOK := s.parseDay(in.EndDate, "end_date", &errs)
	if startOK && endOK && end.Before(start) {
		errs = append(errs, FieldError{"end_date", "must not be before start_date"})
	}

	startTime := optionalClock(in.StartTime, "start_time", &errs)
	endTime := optionalClock(in.EndTime, "end_time", &errs)
	if startOK && endOK && startTime != nil && endTime != nil {
		if a, b, ok := feed.EventWindow(start, end, startTime, endTime); ok && !b.After(a) {
			errs = append(errs, FieldError{"end_time", "must be after start time"})
		}
	}

	var coords *model.Coordinates
	switch {
	case in.Latitude == nil && in.Longitude == nil:
	case in.Latitude == nil || in.Longitude == nil:
		errs = append(errs, FieldError{"coordinates", "latitude and longitude go together"})
	case *in.Latitude < -90 || *in.Latitude > 90:
		errs = append(errs, FieldError{"latitude", "out of range"})
	case *in.Longitude < -180 || *in.Longitude > 180:
		errs = append(errs, FieldError{"longitude", "out of range"})
	default:
		coords = &model.Coordinates{Lat: *in.Latitude, Lng: *in.Longitude}
	}

	if len(in.Tags) > maxTags {
		errs = append(errs, FieldError{"tags", fmt.Sprintf("max %d items", maxTags)})
	}

	if err := invalid(errs); err != nil {
		return model.EventRecord{}, err
	}
	return model.EventRecord{
		Title:       title,
		Content:     content,
		ImageURL:    optional(in.ImageURL),
		Capacity:    in.Capacity,
		StartDate:   start,
		EndDate:     end,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    location,
		Address:     optional(in.Address),
		Coordinates: coords,
		Category:    strings.TrimSpace(in.Category),
		Region:      strings.TrimSpace(in.Region),
		Parking:     optional(in.Parking),
	}, nil
}

func (s *Service) parseDay(v, field string, errs *[]FieldError) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		*errs = append(*errs, FieldError{field, "required"})
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		*errs = append(*errs, FieldError{field, "must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

func optionalClock(v, field string, errs *[]FieldError) *string {
	p := optional(v)
	if p == nil {
		return nil
	}
	if _, _, _, ok := feed.ParseClock(p); !ok {
		*errs = append(*errs, FieldError{field, "must be HH:MM or HH:MM:SS"})
		return nil
	}
	return p
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
