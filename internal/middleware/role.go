package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleAuthenticated is the role the auth service puts in tokens of signed
// in users; anonymous client keys carry a different role.
const RoleAuthenticated = "authenticated"

// RequireRole rejects requests whose token role, stored by JWTAuth under
// "role", is not one of roles.  Tokens without a role claim are accepted
// when "" is listed.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
