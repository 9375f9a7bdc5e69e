// Package booking implements the slot-booking state machine: conflict
// detection, availability toggling and the user/admin dashboards.  The
// engine owns no storage; it is constructed with store handles injected
// by the process entry point so the same logic runs against MySQL in
// production and against in-memory fakes in tests.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/repository"
)

// maxDurationHours caps a single booking at 30 days.  The bound also
// keeps the computed amount inside the 32-bit cents column for any
// realistic hourly price.
const maxDurationHours = 24 * 30

// ErrInvalidDuration is returned when the requested duration is not a
// positive number of hours, exceeds maxDurationHours, or yields an
// amount that does not fit the cents column.
var ErrInvalidDuration = errors.New("invalid booking duration")

// ErrSlotNotFound is returned when the requested slot does not exist,
// is not available, or was taken by a concurrent booker between the
// lookup and the reserve step.
var ErrSlotNotFound = errors.New("slot not found or unavailable")

// ErrBookingConflict is returned when an active booking on the slot
// overlaps the requested time window.
var ErrBookingConflict = errors.New("slot already booked for this time range")

// ErrBookingNotFound is returned when no active booking exists for the
// given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNotBookingOwner is returned when a caller tries to cancel a
// booking that belongs to someone else.
var ErrNotBookingOwner = errors.New("booking belongs to another user")

// SlotStore is the slice of slot persistence the engine depends on.
// Reserve must be a compare-and-set: it only succeeds when the slot is
// still available at update time, so of two concurrent bookers exactly
// one wins.  *repository.SlotRepo implements it.
type SlotStore interface {
	GetAvailable(ctx context.Context, stationID, slotID uint64) (model.Slot, error)
	Reserve(ctx context.Context, slotID uint64) (bool, error)
	Release(ctx context.Context, slotID uint64) (bool, error)
	CountByStation(ctx context.Context, stationID uint64) (total, available uint64, err error)
}

// BookingStore is the booking persistence the engine depends on.
// *repository.BookingRepo implements it.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	HasOverlap(ctx context.Context, slotID uint64, start, end time.Time) (bool, error)
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	Cancel(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	CountsForUser(ctx context.Context, userID uint64, now time.Time) (past, upcoming, total uint64, err error)
	MostRecentByUser(ctx context.Context, userID uint64) (*model.Booking, error)
	StationStats(ctx context.Context, stationID uint64, now time.Time) (repository.StationBookingStats, error)
}

// Engine validates booking requests against slot availability and
// existing reservations, creates and cancels bookings, and computes
// dashboards.
type Engine struct {
	slots    SlotStore
	bookings BookingStore
	now      func() time.Time
}

// NewEngine constructs an Engine.  Both stores must be non-nil.
func NewEngine(slots SlotStore, bookings BookingStore) *Engine {
	if slots == nil || bookings == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{slots: slots, bookings: bookings, now: func() time.Time { return time.Now().UTC() }}
}

// Book reserves a slot for the given user for durationHours starting
// now.  The availability flag is a fast-path gate; the overlap query on
// active bookings is the authoritative double-booking guard, and the
// compare-and-set on the flag closes the race between two concurrent
// requests that both pass the query.  If the booking insert fails after
// the slot was flipped, the flip is compensated before the error is
// surfaced so the slot is never left unavailable without a booking.
func (e *Engine) Book(ctx context.Context, userID, stationID, slotID uint64, durationHours int) (model.Booking, error) {
	if durationHours <= 0 || durationHours > maxDurationHours {
		return model.Booking{}, ErrInvalidDuration
	}
	start := e.now()
	end := start.Add(time.Duration(durationHours) * time.Hour)

	slot, err := e.slots.GetAvailable(ctx, stationID, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, ErrSlotNotFound
		}
		return model.Booking{}, fmt.Errorf("load slot: %w", err)
	}

	amount := uint64(slot.PricePerHourCents) * uint64(durationHours)
	if amount > math.MaxUint32 {
		// The amount must fit the 32-bit cents column.
		return model.Booking{}, ErrInvalidDuration
	}

	overlap, err := e.bookings.HasOverlap(ctx, slot.ID, start, end)
	if err != nil {
		return model.Booking{}, fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return model.Booking{}, ErrBookingConflict
	}

	won, err := e.slots.Reserve(ctx, slot.ID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("reserve slot: %w", err)
	}
	if !won {
		// A concurrent booker flipped the flag first.
		return model.Booking{}, ErrSlotNotFound
	}

	b := model.Booking{
		UserID:          userID,
		StationID:       slot.StationID,
		SlotID:          slot.ID,
		StartTime:       start,
		EndTime:         end,
		AmountPaidCents: uint32(amount),
		Status:          model.BookingStatusBooked,
	}
	if err := e.bookings.Create(ctx, &b); err != nil {
		// Compensate: the slot must not stay unavailable without a
		// corresponding booking.
		if _, relErr := e.slots.Release(ctx, slot.ID); relErr != nil {
			return model.Booking{}, fmt.Errorf("create booking: %w (slot %d left unavailable: %v)", err, slot.ID, relErr)
		}
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return b, nil
}

// Cancel moves a booking of the calling user to the terminal Cancelled
// state and frees its slot.  Cancellation is idempotent: a booking that
// is already Cancelled still gets its slot released and its record
// returned as a receipt, so a caller whose first attempt failed between
// the status flip and the release can retry until the slot is free.
// A slot that was deleted independently does not fail the cancellation:
// the booking only holds a weak reference.
func (e *Engine) Cancel(ctx context.Context, bookingID, callerID uint64) (model.Booking, error) {
	b, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	if b.UserID != callerID {
		return model.Booking{}, ErrNotBookingOwner
	}
	if b.Status != model.BookingStatusCancelled {
		if err := e.bookings.Cancel(ctx, bookingID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, fmt.Errorf("cancel booking: %w", err)
		}
		// sql.ErrNoRows means a concurrent cancel terminalized the
		// booking first; the release below still runs.
	}
	if _, err := e.slots.Release(ctx, b.SlotID); err != nil {
		return model.Booking{}, fmt.Errorf("release slot: %w", err)
	}
	b.Status = model.BookingStatusCancelled
	return b, nil
}

// History returns all bookings of a user, newest start time first.
func (e *Engine) History(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return e.bookings.ListByUser(ctx, userID)
}

// Dashboard summarizes a user's bookings.  Past means the booking
// ended before now; everything else counts as upcoming.
type Dashboard struct {
	PastBookings     uint64         `json:"past_bookings"`
	UpcomingBookings uint64         `json:"upcoming_bookings"`
	TotalBookings    uint64         `json:"total_bookings"`
	LastBooking      *model.Booking `json:"-"`
}

// Dashboard computes the booking summary for a user.
func (e *Engine) Dashboard(ctx context.Context, userID uint64) (Dashboard, error) {
	now := e.now()
	past, upcoming, total, err := e.bookings.CountsForUser(ctx, userID, now)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count bookings: %w", err)
	}
	last, err := e.bookings.MostRecentByUser(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load last booking: %w", err)
	}
	return Dashboard{
		PastBookings:     past,
		UpcomingBookings: upcoming,
		TotalBookings:    total,
		LastBooking:      last,
	}, nil
}

// AdminDashboard summarizes a station for its owning admin: slot
// counts, bookings by time bucket and the revenue realized from
// completed stays.
type AdminDashboard struct {
	StationID        uint64 `json:"station_id"`
	TotalSlots       uint64 `json:"total_slots"`
	AvailableSlots   uint64 `json:"available_slots"`
	PastBookings     uint64 `json:"past_bookings"`
	UpcomingBookings uint64 `json:"upcoming_bookings"`
	ActiveBookings   uint64 `json:"active_bookings"`
	RevenueCents     uint64 `json:"revenue_cents"`
}

// AdminDashboard computes the station summary.
func (e *Engine) AdminDashboard(ctx context.Context, stationID uint64) (AdminDashboard, error) {
	total, available, err := e.slots.CountByStation(ctx, stationID)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("count slots: %w", err)
	}
	stats, err := e.bookings.StationStats(ctx, stationID, e.now())
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("station stats: %w", err)
	}
	return AdminDashboard{
		StationID:        stationID,
		TotalSlots:       total,
		AvailableSlots:   available,
		PastBookings:     stats.Past,
		UpcomingBookings: stats.Upcoming,
		ActiveBookings:   stats.Active,
		RevenueCents:     stats.RevenueCents,
	}, nil
}
