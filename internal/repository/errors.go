// Package repository defines sentinel errors shared across the
// repositories.  ErrConflict is the common class for uniqueness
// violations; the specific sentinels wrap it so handlers can match
// either the exact condition or the whole class with errors.Is and
// translate it into an HTTP 409.
package repository

import (
	"errors"
	"fmt"
)

// ErrConflict signals that an insert cannot proceed because of
// conflicting existing records.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when the email is already registered.
var ErrEmailExists = fmt.Errorf("%w: email already exists", ErrConflict)

// ErrStationExists is returned when a station with the same name and
// location is already registered.
var ErrStationExists = fmt.Errorf("%w: station already exists at this location", ErrConflict)

// ErrOwnerHasStation is returned when the registering admin already
// owns a station.
var ErrOwnerHasStation = fmt.Errorf("%w: admin already owns a station", ErrConflict)

// ErrSlotNumberTaken is returned when the slot number is already used
// within the same station.
var ErrSlotNumberTaken = fmt.Errorf("%w: slot number already taken in this station", ErrConflict)
