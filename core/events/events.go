package events

import "time"

// AllocationEvent is published after an allocation attempt, applied or not.
type AllocationEvent struct {
	VehicleID   string
	WarehouseID string
	Volume      float64
	NewLoad     float64
	Utilization float64
	Applied     bool
	Err         error
	Time        time.Time
}

// ReleaseEvent is published after a vehicle release attempt.
type ReleaseEvent struct {
	VehicleID   string
	WarehouseID string
	Volume      float64
	NewLoad     float64
	// Forced marks the unconditional load zeroing at the end of a
	// warehouse-wide release.
	Forced bool
	Err    error
	Time   time.Time
}

// BulkEvent summarizes one auto-allocation pass.
type BulkEvent struct {
	Planned     int
	Applied     int
	Failed      int
	Unallocated int
	Time        time.Time
}
