package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/middleware"
)

// getUserID extracts the authenticated user's id from echo.Context.
// The JWT middleware stores it as uint64; other types are tolerated for
// robustness against handler reuse outside the middleware chain.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get(middleware.ContextUserID)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the authenticated user's role from echo.Context.
func getRole(c echo.Context) string {
	if s, ok := c.Get(middleware.ContextRole).(string); ok {
		return s
	}
	return ""
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
