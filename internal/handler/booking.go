package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amitkrsingh19/parking-services/internal/booking"
	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/queue"
	publisher "github.com/amitkrsingh19/parking-services/internal/service"
)

// BookingHandler exposes the user-facing booking endpoints.  All
// booking rules live in the engine; the handler only binds input, maps
// sentinel errors to HTTP statuses and publishes events.
type BookingHandler struct {
	Engine        *booking.Engine
	PublishEvents bool
}

func NewBookingHandler(e *booking.Engine, publishEvents bool) *BookingHandler {
	if e == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: e, PublishEvents: publishEvents}
}

type bookReq struct {
	StationID     uint64 `json:"station_id"`
	SlotID        uint64 `json:"slot_id"`
	DurationHours int    `json:"duration_hours"`
}

type bookingResp struct {
	ID              uint64 `json:"id"`
	UserID          uint64 `json:"user_id"`
	StationID       uint64 `json:"station_id"`
	SlotID          uint64 `json:"slot_id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	AmountPaidCents uint32 `json:"amount_paid_cents"`
	Status          string `json:"status"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:              b.ID,
		UserID:          b.UserID,
		StationID:       b.StationID,
		SlotID:          b.SlotID,
		StartTime:       b.StartTime.UTC().Format(time.RFC3339),
		EndTime:         b.EndTime.UTC().Format(time.RFC3339),
		AmountPaidCents: b.AmountPaidCents,
		Status:          b.Status,
	}
}

// Book reserves a slot for the caller starting now for a whole number
// of hours.
func (h *BookingHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StationID == 0 || req.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id/slot_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Book(ctx, userID, req.StationID, req.SlotID, req.DurationHours)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidDuration):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking duration"})
		case errors.Is(err, booking.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found or unavailable"})
		case errors.Is(err, booking.ErrBookingConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked for this time range"})
		}
		log.Printf("booking: book failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	h.publish(queue.BookingCreatedQueue, b)
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// Cancel moves one of the caller's bookings to the Cancelled state and
// frees its slot.  The cancelled record is returned as a receipt.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Cancel(ctx, bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrNotBookingOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "booking belongs to another user"})
		}
		log.Printf("booking: cancel failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel booking failed"})
	}

	h.publish(queue.BookingCancelledQueue, b)
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// History returns all of the caller's bookings, newest first.
func (h *BookingHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Engine.History(ctx, userID)
	if err != nil {
		log.Printf("booking: history failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load history failed"})
	}
	resp := make([]bookingResp, 0, len(items))
	for _, b := range items {
		resp = append(resp, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": resp})
}

// Dashboard returns the caller's booking summary.
func (h *BookingHandler) Dashboard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Engine.Dashboard(ctx, userID)
	if err != nil {
		log.Printf("booking: dashboard failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dashboard failed"})
	}
	resp := echo.Map{
		"past_bookings":     d.PastBookings,
		"upcoming_bookings": d.UpcomingBookings,
		"total_bookings":    d.TotalBookings,
	}
	if d.LastBooking != nil {
		resp["last_booking"] = toBookingResp(*d.LastBooking)
	}
	return c.JSON(http.StatusOK, resp)
}

// publish sends a booking event to the broker.  Publishing is
// fire-and-forget: a broker outage must not fail the booking request,
// so errors are only logged (inside the publisher).
func (h *BookingHandler) publish(queueName string, b model.Booking) {
	if !h.PublishEvents {
		return
	}
	ev := queue.BookingEvent{
		BookingID:       b.ID,
		UserID:          b.UserID,
		StationID:       b.StationID,
		SlotID:          b.SlotID,
		StartTime:       b.StartTime.UTC().Format(time.RFC3339),
		EndTime:         b.EndTime.UTC().Format(time.RFC3339),
		AmountPaidCents: b.AmountPaidCents,
		Status:          b.Status,
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = publisher.PublishBookingEvent(ctx, queueName, ev)
	}()
}
