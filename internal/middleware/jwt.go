package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/utils"
)

// Context keys under which JWTAuth stores the decoded identity.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject and role into the request
// context.  The provided secret must match the one used when issuing
// tokens; every service behind the gateway validates with the same
// secret.  Handlers read the identity via c.Get(ContextUserID) and
// c.Get(ContextRole).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Signature, algorithm, expiry and required-claim checks all
			// happen inside ValidateAccessToken; the middleware only maps
			// the outcome onto HTTP.
			subjectID, role, err := utils.ValidateAccessToken(secret, raw)
			if err != nil || !model.ValidRole(role) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextUserID, subjectID)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}
