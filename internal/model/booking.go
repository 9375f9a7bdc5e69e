package model

import "time"

// Booking statuses.  A booking is created as Booked and may only move
// to the terminal Cancelled state.
const (
	BookingStatusBooked    = "Booked"
	BookingStatusCancelled = "Cancelled"
)

// Booking records a user's reservation of a slot for a time window as
// stored in the `bookings` table.  The slot reference is weak: a
// cancellation must look the slot up and tolerate its absence.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who booked.
//  StationID       – station the slot belongs to (denormalized for
//                    admin queries).
//  SlotID          – slot being reserved.
//  StartTime       – beginning of the reserved window (UTC).
//  EndTime         – end of the reserved window (UTC, exclusive).
//  AmountPaidCents – price_per_hour_cents * duration, in cents.
//  Status          – BookingStatusBooked or BookingStatusCancelled.
//  CreatedAt       – timestamp of creation.
type Booking struct {
	ID              uint64    // bookings.id
	UserID          uint64    // bookings.user_id
	StationID       uint64    // bookings.station_id
	SlotID          uint64    // bookings.slot_id
	StartTime       time.Time // bookings.start_time
	EndTime         time.Time // bookings.end_time
	AmountPaidCents uint32    // bookings.amount_paid_cents
	Status          string    // bookings.status
	CreatedAt       time.Time // bookings.created_at
}
