package router // package router defines how HTTP routes are registered for each service

import (
	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/handler"
	"github.com/amitkrsingh19/parking-services/internal/middleware"
	"github.com/amitkrsingh19/parking-services/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health
// check, used by the gateway and by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUserRoutes wires the identity service.  Registration and
// login live under /v1/auth without middleware; profile and
// administration endpoints require a valid access token.
func RegisterUserRoutes(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/register-admin", a.RegisterAdmin)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.GET("/profile", p.Get)
	auth.PUT("/profile", p.Update)
	auth.DELETE("/profile", p.Delete)

	// Identity administration is reserved for the superadmin.
	admin := e.Group("/v1/users")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleSuperadmin))
	admin.GET("/:id", p.AdminGet)
	admin.DELETE("/:id", p.AdminDelete)
}

// RegisterParkingRoutes wires the inventory service.  Browsing
// stations and available slots only needs a valid token; mutations are
// restricted to admin-type roles.
func RegisterParkingRoutes(e *echo.Echo, st *handler.StationHandler, sl *handler.SlotHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/stations", st.List)
	auth.GET("/stations/:id", st.Get)
	auth.GET("/stations/:id/slots", sl.ListAvailable)
	auth.GET("/slots/:id", sl.Get)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSuperadmin))
	admin.POST("/stations", st.Create)
	admin.DELETE("/stations/:id", st.Delete)
	admin.POST("/slots", sl.Create)
	admin.DELETE("/slots/:id", sl.Delete)
	admin.GET("/stations/:id/slots/all", sl.ListByStation)
}

// RegisterBookingRoutes wires the booking service.  User endpoints
// accept any authenticated role; the station views require an
// admin-type role.  The optional rate limiter is applied to the whole
// /v1 surface when non-nil.
func RegisterBookingRoutes(e *echo.Echo, b *handler.BookingHandler, ab *handler.AdminBookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		auth.Use(limiter)
	}
	auth.POST("/bookings", b.Book)
	auth.DELETE("/bookings/:id", b.Cancel)
	auth.GET("/bookings", b.History)
	auth.GET("/dashboard", b.Dashboard)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	if limiter != nil {
		admin.Use(limiter)
	}
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleSuperadmin))
	admin.GET("/bookings", ab.StationBookings)
	admin.GET("/dashboard", ab.Dashboard)
}
