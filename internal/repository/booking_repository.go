package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/amitkrsingh19/parking-services/internal/model"
)

// BookingRepo persists bookings.  All timestamp columns are stored in
// UTC.  Bookings are never hard-deleted: cancellation moves the status
// to the terminal Cancelled value so user history stays complete.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id,user_id,station_id,slot_id,start_time,end_time,amount_paid_cents,status,created_at"

// Create inserts a new booking and queries the row back to populate
// the generated ID and created_at timestamp.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bookings (user_id, station_id, slot_id, start_time, end_time, amount_paid_cents, status) VALUES (?,?,?,?,?,?,?)",
		b.UserID, b.StationID, b.SlotID, b.StartTime.UTC(), b.EndTime.UTC(), b.AmountPaidCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM bookings WHERE id=?", b.ID).Scan(&b.CreatedAt)
}

// HasOverlap reports whether any active booking on the slot overlaps
// the half-open window [start, end).  The standard interval test is
// used: existing.start < end AND existing.end > start, so a booking
// ending exactly when another starts does not conflict.  Cancelled
// bookings never block a slot.
func (r *BookingRepo) HasOverlap(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM bookings WHERE slot_id=? AND status=? AND start_time < ? AND end_time > ?)",
		slotID, model.BookingStatusBooked, end.UTC(), start.UTC()).Scan(&exists)
	return exists, err
}

// GetByID fetches a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.UserID, &b.StationID, &b.SlotID, &b.StartTime, &b.EndTime, &b.AmountPaidCents, &b.Status, &b.CreatedAt)
	return b, err
}

// Cancel marks an active booking as cancelled.  sql.ErrNoRows is
// returned when the booking does not exist or is already in the
// terminal state.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status=?",
		model.BookingStatusCancelled, id, model.BookingStatusBooked)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByUser returns all bookings of a user, newest start time first.
// Re-querying yields a fresh snapshot; nothing is streamed.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY start_time DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// ListByStation returns all bookings placed against a station, newest
// start time first.
func (r *BookingRepo) ListByStation(ctx context.Context, stationID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE station_id=? ORDER BY start_time DESC",
		stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]model.Booking, error) {
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.StationID, &b.SlotID, &b.StartTime, &b.EndTime, &b.AmountPaidCents, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CountsForUser returns the past (ended before now), upcoming (ending
// at or after now) and total booking counts for a user.
func (r *BookingRepo) CountsForUser(ctx context.Context, userID uint64, now time.Time) (past, upcoming, total uint64, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT
                   COALESCE(SUM(end_time <  ?), 0),
                   COALESCE(SUM(end_time >= ?), 0),
                   COUNT(*)
                 FROM bookings WHERE user_id=?`,
		now.UTC(), now.UTC(), userID).Scan(&past, &upcoming, &total)
	return past, upcoming, total, err
}

// MostRecentByUser returns the booking with the latest start time for
// the user, or nil when the user has no bookings.
func (r *BookingRepo) MostRecentByUser(ctx context.Context, userID uint64) (*model.Booking, error) {
	var b model.Booking
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY start_time DESC LIMIT 1",
		userID).Scan(&b.ID, &b.UserID, &b.StationID, &b.SlotID, &b.StartTime, &b.EndTime, &b.AmountPaidCents, &b.Status, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// StationBookingStats aggregates the booking side of the admin
// dashboard for one station.  Revenue covers completed stays only:
// active bookings with end_time < now and status Booked.
type StationBookingStats struct {
	Past         uint64 // bookings that ended before now
	Upcoming     uint64 // bookings starting at or after now
	Active       uint64 // bookings currently in progress
	RevenueCents uint64 // sum of amount_paid_cents over past bookings
}

// StationStats computes the booking counts by time bucket and the
// realized revenue for a station in a single query.
func (r *BookingRepo) StationStats(ctx context.Context, stationID uint64, now time.Time) (StationBookingStats, error) {
	var st StationBookingStats
	nowUTC := now.UTC()
	err := r.DB.QueryRowContext(ctx,
		`SELECT
                   COALESCE(SUM(end_time < ?), 0),
                   COALESCE(SUM(start_time >= ?), 0),
                   COALESCE(SUM(start_time <= ? AND end_time >= ?), 0),
                   COALESCE(SUM(CASE WHEN end_time < ? AND status = ? THEN amount_paid_cents ELSE 0 END), 0)
                 FROM bookings WHERE station_id=?`,
		nowUTC, nowUTC, nowUTC, nowUTC, nowUTC, model.BookingStatusBooked, stationID,
	).Scan(&st.Past, &st.Upcoming, &st.Active, &st.RevenueCents)
	return st, err
}
