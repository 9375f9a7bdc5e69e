package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/booking"
	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/repository"
)

// AdminBookingHandler exposes the station-side booking views for
// admins: the booking list and the station dashboard.  A plain admin
// always operates on its own station; a superadmin may name any
// station with ?station_id=.
type AdminBookingHandler struct {
	Engine   *booking.Engine
	Bookings *repository.BookingRepo
	Stations *repository.StationRepo
}

func NewAdminBookingHandler(e *booking.Engine, b *repository.BookingRepo, s *repository.StationRepo) *AdminBookingHandler {
	if e == nil || b == nil || s == nil {
		panic("nil dependency passed to NewAdminBookingHandler")
	}
	return &AdminBookingHandler{Engine: e, Bookings: b, Stations: s}
}

// resolveStation decides which station the caller is asking about and
// writes the error response itself when the lookup fails.  An admin
// gets its own station; a superadmin may override with a station_id
// query parameter.
func (h *AdminBookingHandler) resolveStation(ctx context.Context, c echo.Context) (model.Station, bool) {
	callerID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.Station{}, false
	}
	if getRole(c) == model.RoleSuperadmin {
		if raw := c.QueryParam("station_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid station_id"})
				return model.Station{}, false
			}
			st, err := h.Stations.GetByID(ctx, id)
			if err != nil {
				if err == sql.ErrNoRows {
					_ = c.JSON(http.StatusNotFound, echo.Map{"error": "station not found"})
				} else {
					_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
				}
				return model.Station{}, false
			}
			return st, true
		}
	}
	st, err := h.Stations.GetByOwner(ctx, callerID)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "admin owns no station"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.Station{}, false
	}
	return st, true
}

// StationBookings lists every booking placed against the station,
// newest first.
func (h *AdminBookingHandler) StationBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, ok := h.resolveStation(ctx, c)
	if !ok {
		return nil
	}
	items, err := h.Bookings.ListByStation(ctx, st.ID)
	if err != nil {
		log.Printf("admin: list station bookings failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bookings failed"})
	}
	resp := make([]bookingResp, 0, len(items))
	for _, b := range items {
		resp = append(resp, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"station_id": st.ID, "items": resp})
}

// Dashboard returns the station summary: slot counts, booking buckets
// and realized revenue.
func (h *AdminBookingHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, ok := h.resolveStation(ctx, c)
	if !ok {
		return nil
	}
	d, err := h.Engine.AdminDashboard(ctx, st.ID)
	if err != nil {
		log.Printf("admin: dashboard failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dashboard failed"})
	}
	return c.JSON(http.StatusOK, d)
}
