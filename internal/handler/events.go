package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/calendar"
	"github.com/iliyamo/event-feed/internal/config"
	"github.com/iliyamo/event-feed/internal/feed"
	"github.com/iliyamo/event-feed/internal/middleware"
	"github.com/iliyamo/event-feed/internal/service"
)

// Purger drops cached responses of the given scopes.
type Purger interface {
	Purge(ctx context.Context, scopes ...string) error
}

// EventHandler serves the feed, event details and event creation.
type EventHandler struct {
	Svc          *service.Service
	Settings     config.FeedSettings
	CalendarOpts calendar.Options
	Cache        Purger // optional
}

// List handles GET /v1/events.
//
//	q          free-text search over title, content and location
//	category   exact category, "all" or empty for any
//	region     exact region, "all" or empty for any
//	sort       date (default) | popularity | attendees
//	page       1-based page number
//	page_size  default 20, max 100
func (h *EventHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))

	req := service.FeedRequest{
		Filters: feed.Filters{
			Category: c.QueryParam("category"),
			Region:   c.QueryParam("region"),
			Text:     c.QueryParam("q"),
		},
		Order:    feed.ParseSortOrder(c.QueryParam("sort")),
		Page:     page,
		PageSize: ps,
	}
	res, err := h.Svc.Feed(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      res.Items,
		"total":     res.Total,
		"page":      res.Page,
		"page_size": res.PageSize,
		"sort":      req.Order.String(),
	})
}

// Options handles GET /v1/events/options: the filter choices offered by
// the feed.
func (h *EventHandler) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"all":        feed.AllFilter,
		"categories": h.Settings.Categories,
		"regions":    h.Settings.Regions,
		"sort":       feed.SortKeys,
	})
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := eventID(c)
	if !ok {
		return invalidID(c)
	}
	v, err := h.Svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create handles POST /v1/events.  The authenticated user becomes the
// organizer.
func (h *EventHandler) Create(c echo.Context) error {
	var in service.CreateEventInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body"})
	}
	v, err := h.Svc.CreateEvent(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	purge(c, h.Cache, middleware.ScopeFeed)
	return c.JSON(http.StatusCreated, v)
}

// Calendar handles GET /v1/events/:id/calendar.ics.
func (h *EventHandler) Calendar(c echo.Context) error {
	id, ok := eventID(c)
	if !ok {
		return invalidID(c)
	}
	v, err := h.Svc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	body := calendar.Export(v, h.CalendarOpts, h.Svc.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+calendar.Filename(v)+`"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// purge drops stale cached responses after a write.  Failures only leave
// entries to expire on their TTL, so they are logged.
func purge(c echo.Context, p Purger, scopes ...string) {
	if p == nil {
		return
	}
	if err := p.Purge(c.Request().Context(), scopes...); err != nil {
		log.Printf("handler: purge %s: %v", strings.Join(scopes, ","), err)
	}
}
