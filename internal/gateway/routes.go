package gateway

import (
	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/config"
	"github.com/amitkrsingh19/parking-services/internal/handler"
	"github.com/amitkrsingh19/parking-services/internal/middleware"
)

// RegisterRoutes maps the public API surface onto the three upstream
// services.  Registration and login pass through without a token;
// everything else is authenticated here once, so the upstreams can
// trust the forwarded Authorization header.  An optional rate limiter
// runs in front of the authenticated surface.
func RegisterRoutes(e *echo.Echo, p *Proxy, cfg config.GatewayConfig, limiter echo.MiddlewareFunc) {
	user := Upstream{Name: "user", BaseURL: cfg.UserURL}
	parking := Upstream{Name: "parking", BaseURL: cfg.ParkingURL}
	booking := Upstream{Name: "booking", BaseURL: cfg.BookingURL}

	e.GET("/healthz", handler.Health)

	// Public: account creation and login.
	e.Any("/v1/auth/*", p.Forward(user))

	mw := []echo.MiddlewareFunc{middleware.JWTAuth(cfg.JWTSecret)}
	if limiter != nil {
		mw = append(mw, limiter)
	}

	// Identity service.
	e.Any("/v1/me", p.Forward(user), mw...)
	e.Any("/v1/profile", p.Forward(user), mw...)
	e.Any("/v1/users/*", p.Forward(user), mw...)

	// Inventory service.
	e.Any("/v1/stations", p.Forward(parking), mw...)
	e.Any("/v1/stations/*", p.Forward(parking), mw...)
	e.Any("/v1/slots", p.Forward(parking), mw...)
	e.Any("/v1/slots/*", p.Forward(parking), mw...)

	// Booking service.
	e.Any("/v1/bookings", p.Forward(booking), mw...)
	e.Any("/v1/bookings/*", p.Forward(booking), mw...)
	e.Any("/v1/dashboard", p.Forward(booking), mw...)
	e.Any("/v1/admin/*", p.Forward(booking), mw...)
}
