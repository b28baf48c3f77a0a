// Package handler exposes the HTTP handlers of the event feed API.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/auth"
	"github.com/iliyamo/event-feed/internal/repository"
	"github.com/iliyamo/event-feed/internal/service"
)

// writeError maps service and repository errors to JSON responses.
// Unknown errors are collaborator failures and become 500s.
func writeError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_error", "fields": verr.Fields})
	case errors.Is(err, auth.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event_not_found"})
	case errors.Is(err, repository.ErrNotificationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "notification_not_found"})
	}
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error":   "database_error",
		"message": err.Error(),
	})
}

// eventID parses the :id path parameter.
func eventID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_id"})
}
