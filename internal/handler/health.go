package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a liveness endpoint used by load balancers.  It returns a
// plain text "ok" with status 200 while the process is up.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Check probes one dependency.
type Check func(ctx context.Context) error

// Ready returns a readiness endpoint that runs every check with a short
// timeout.  Any failing check makes the response a 503 naming it.
func Ready(checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "failed": failed})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
