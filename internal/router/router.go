// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/handler"
	"github.com/iliyamo/event-feed/internal/middleware"
)

// RegisterRoutes registers the probes.  /healthz reports liveness and
// /readyz runs the given readiness handler.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready)
}

// RegisterPublic registers the read endpoints that need no token.  Feed,
// detail and thread responses go through the response cache; the .ics
// export and the options are cheap and uncached.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, cm *handler.CommentHandler, cache *middleware.ResponseCache) {
	g := e.Group("/v1/events")
	g.GET("", ev.List, cache.Middleware(middleware.FeedScope))
	g.GET("/options", ev.Options)
	g.GET("/:id", ev.Get, cache.Middleware(middleware.EventParamScope))
	g.GET("/:id/calendar.ics", ev.Calendar)
	g.GET("/:id/comments", cm.List, cache.Middleware(middleware.EventParamScope))
}

// RegisterAuthenticated registers the endpoints that act on behalf of a
// signed in user.  Every route requires a valid access token with the
// authenticated role; writes are additionally rate limited per user.
func RegisterAuthenticated(e *echo.Echo, ev *handler.EventHandler, cm *handler.CommentHandler, nt *handler.NotificationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAuthenticated),
	)
	g.POST("/events", ev.Create, limit)
	g.POST("/events/:id/comments", cm.Create, limit)

	g.GET("/notifications", nt.List)
	g.POST("/notifications/:id/read", nt.MarkRead)
}
