package model

import "fmt"

// VehicleStatus describes the operational state of a vehicle.
type VehicleStatus string

const (
	StatusAvailable   VehicleStatus = "AVAILABLE"
	StatusInUse       VehicleStatus = "IN_USE"
	StatusMaintenance VehicleStatus = "MAINTENANCE"
	StatusBroken      VehicleStatus = "BROKEN"
)

// VehicleKind classifies the vehicle body type.
type VehicleKind string

const (
	KindTruck   VehicleKind = "TRUCK"
	KindVan     VehicleKind = "VAN"
	KindTrailer VehicleKind = "TRAILER"
	KindSpecial VehicleKind = "SPECIAL"
)

// Vehicle represents a fleet vehicle tracked by the allocation service.
type Vehicle struct {
	ID           string        `json:"id"`
	LicensePlate string        `json:"license_plate"`
	Model        string        `json:"model"`
	Kind         VehicleKind   `json:"kind"`
	CapacityTons float64       `json:"capacity_tons"` // payload capacity, informational
	Volume       float64       `json:"volume"`        // cubic meters occupied at a warehouse
	Status       VehicleStatus `json:"status"`
	Year         int           `json:"year,omitempty"`
	IsActive     bool          `json:"is_active"`

	// CurrentWarehouseID is non-empty iff the vehicle is IN_USE and occupies
	// capacity at that warehouse.
	CurrentWarehouseID string `json:"current_warehouse_id,omitempty"`
}

// Validate checks that the vehicle record is sound.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.Volume < 0 {
		return fmt.Errorf("vehicle %s: volume must be non-negative", v.ID)
	}
	if v.CapacityTons < 0 {
		return fmt.Errorf("vehicle %s: capacity must be non-negative", v.ID)
	}
	return nil
}

// IsAllocatable reports whether the vehicle can be assigned to a warehouse.
func (v Vehicle) IsAllocatable() bool {
	return v.Status == StatusAvailable
}
