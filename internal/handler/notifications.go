package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/service"
)

// NotificationHandler serves the current user's notifications.
type NotificationHandler struct {
	Svc *service.Service
}

// List handles GET /v1/notifications?unread=true.
func (h *NotificationHandler) List(c echo.Context) error {
	unread, _ := strconv.ParseBool(c.QueryParam("unread"))
	list, err := h.Svc.Notifications(c.Request().Context(), unread)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": list, "total": len(list)})
}

// MarkRead handles POST /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.Svc.MarkNotificationRead(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
