package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware that enforces that the authenticated
// caller has one of the listed roles.  The permitted roles are an
// explicit set; callers pass each role as its own argument
// (e.g. RequireRole(model.RoleAdmin, model.RoleSuperadmin)).  Checking
// membership in a map avoids the classic bug where a chained
// string-literal "or" always evaluates truthy and silently admits every
// caller.  It assumes JWTAuth has already stored the role in the
// context; a missing or non-string role is rejected like a mismatch.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
