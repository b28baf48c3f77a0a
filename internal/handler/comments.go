package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/middleware"
	"github.com/iliyamo/event-feed/internal/service"
)

// CommentHandler serves event comment threads.
type CommentHandler struct {
	Svc   *service.Service
	Cache Purger // optional
}

// List handles GET /v1/events/:id/comments, newest first.
func (h *CommentHandler) List(c echo.Context) error {
	id, ok := eventID(c)
	if !ok {
		return invalidID(c)
	}
	thread, err := h.Svc.Thread(c.Request().Context(), id, nil)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": thread, "total": len(thread)})
}

type postCommentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /v1/events/:id/comments.  The response is the
// optimistic entry ("Just now", pending) the client shows until it
// refetches the thread.
func (h *CommentHandler) Create(c echo.Context) error {
	id, ok := eventID(c)
	if !ok {
		return invalidID(c)
	}
	var req postCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body"})
	}
	view, err := h.Svc.PostComment(c.Request().Context(), id, req.Content)
	if err != nil {
		return writeError(c, err)
	}
	purge(c, h.Cache, middleware.EventScope(strconv.FormatUint(id, 10)))
	return c.JSON(http.StatusCreated, view)
}
