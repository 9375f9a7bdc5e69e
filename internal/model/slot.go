package model

import "time"

// Slot types accepted by the inventory service.
const (
	SlotTypeCar  = "car"
	SlotTypeBike = "bike"
	SlotTypeEV   = "ev"
)

// ValidSlotType reports whether the given string is a known slot type.
func ValidSlotType(t string) bool {
	switch t {
	case SlotTypeCar, SlotTypeBike, SlotTypeEV:
		return true
	}
	return false
}

// Slot represents a single parking space as stored in the `slots`
// table.  SlotNumber is unique within its station.  IsAvailable is a
// fast-path gate flipped by the booking engine; the authoritative
// double-booking guard is the overlap query on bookings.
//
// Fields:
//  ID                – primary key identifier.
//  StationID         – owning station.
//  SlotNumber        – position within the station (unique per station).
//  SlotType          – one of SlotTypeCar, SlotTypeBike, SlotTypeEV.
//  PricePerHourCents – hourly price in integer cents.
//  IsAvailable       – whether the slot can currently be booked.
//  AdminID           – admin who created the slot.
//  CreatedAt         – timestamp of creation.
type Slot struct {
	ID                uint64    // slots.id
	StationID         uint64    // slots.station_id
	SlotNumber        uint32    // slots.slot_number
	SlotType          string    // slots.slot_type
	PricePerHourCents uint32    // slots.price_per_hour_cents
	IsAvailable       bool      // slots.is_available
	AdminID           uint64    // slots.admin_id
	CreatedAt         time.Time // slots.created_at
}
