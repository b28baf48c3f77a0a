package middleware

import "github.com/labstack/echo/v4"

// currentUserID returns the subject stored by JWTAuth, or "anon" on
// routes without authentication.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
