package allocation

import (
	"errors"
	"fmt"
)

var (
	// ErrVehicleNotFound is returned when the referenced vehicle does not exist.
	ErrVehicleNotFound = errors.New("allocation: vehicle not found")
	// ErrWarehouseNotFound is returned when the referenced warehouse does not exist.
	ErrWarehouseNotFound = errors.New("allocation: warehouse not found")
	// ErrVehicleNotAvailable is returned when the vehicle is not in the
	// AVAILABLE state, typically because the caller planned on a stale snapshot.
	ErrVehicleNotAvailable = errors.New("allocation: vehicle not available")
	// ErrAlreadyAllocated is returned when a plan is re-applied for a vehicle
	// already assigned to the target warehouse.
	ErrAlreadyAllocated = errors.New("allocation: vehicle already allocated to warehouse")
	// ErrInactiveWarehouse is returned when the target warehouse is excluded
	// from new allocations.
	ErrInactiveWarehouse = errors.New("allocation: warehouse is inactive")
)

// CapacityError reports that a warehouse cannot fit the requested volume.
type CapacityError struct {
	VehicleID   string
	WarehouseID string
	Available   float64
	Required    float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("allocation: warehouse %s cannot fit vehicle %s: %.2f m3 available, %.2f m3 required",
		e.WarehouseID, e.VehicleID, e.Available, e.Required)
}

// PartialAllocationError reports that the warehouse load was updated but the
// paired vehicle update and the compensating rollback both failed, leaving
// the warehouse load drifted by Drift cubic meters.
type PartialAllocationError struct {
	VehicleID   string
	WarehouseID string
	Drift       float64
	Cause       error
}

func (e *PartialAllocationError) Error() string {
	return fmt.Sprintf("allocation: partial failure for vehicle %s: warehouse %s load drifted by %.2f m3: %v",
		e.VehicleID, e.WarehouseID, e.Drift, e.Cause)
}

func (e *PartialAllocationError) Unwrap() error { return e.Cause }

// PartialReleaseError reports that a warehouse load was decremented but the
// paired vehicle update and the compensating rollback both failed.
type PartialReleaseError struct {
	VehicleID   string
	WarehouseID string
	Drift       float64
	Cause       error
}

func (e *PartialReleaseError) Error() string {
	return fmt.Sprintf("allocation: partial release for vehicle %s: warehouse %s load drifted by %.2f m3: %v",
		e.VehicleID, e.WarehouseID, e.Drift, e.Cause)
}

func (e *PartialReleaseError) Unwrap() error { return e.Cause }

// ReleaseFailure records one vehicle that could not be freed during a
// warehouse-wide release.
type ReleaseFailure struct {
	VehicleID string
	Err       error
}
