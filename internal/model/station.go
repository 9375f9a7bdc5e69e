package model

import "time"

// Station represents a physical parking site as stored in the
// `stations` table.  Every station is owned by exactly one admin; the
// repository rejects a second station for the same owner and duplicate
// name+location pairs at creation time.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – station name (unique together with Location).
//  Location  – human readable address or area.
//  Capacity  – declared number of parking spaces.
//  OwnerID   – admin who registered the station.
//  CreatedAt – timestamp of creation.
type Station struct {
	ID        uint64    // stations.id
	Name      string    // stations.name
	Location  string    // stations.location
	Capacity  uint32    // stations.capacity
	OwnerID   uint64    // stations.owner_id
	CreatedAt time.Time // stations.created_at
}
