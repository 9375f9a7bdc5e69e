// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used on the broker.  Both queues are declared durable so
// events survive a broker restart.
const (
	BookingCreatedQueue   = "booking.created"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent is published when a booking is created or cancelled.
// It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
// Timestamps are RFC3339 strings in UTC; money is integer cents.
type BookingEvent struct {
	BookingID       uint64 `json:"booking_id"`
	UserID          uint64 `json:"user_id"`
	StationID       uint64 `json:"station_id"`
	SlotID          uint64 `json:"slot_id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	AmountPaidCents uint32 `json:"amount_paid_cents"`
	Status          string `json:"status"`
	OccurredAt      string `json:"occurred_at"`
}
