package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-feed/internal/auth"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the auth service.  On success the token's subject and role are
// stored under "user_id" and "role" in the Echo context, and the subject
// is attached to the request context for the service layer
// (auth.ContextIdentity).  Requests without a valid token get a 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			claims, err := auth.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user_id", claims.Subject)
			c.Set("role", claims.Role)
			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithUser(req.Context(), claims.Subject)))
			return next(c)
		}
	}
}
