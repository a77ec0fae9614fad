package registry

import (
	"context"
	"errors"

	"github.com/1ndex13/logistic-app/core/model"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("registry: record not found")

// VehicleUpdate describes a partial mutation of a vehicle. Nil fields are
// left untouched. CurrentWarehouseID pointing at an empty string clears the
// assignment.
type VehicleUpdate struct {
	Status             *model.VehicleStatus
	CurrentWarehouseID *string
}

// WarehouseUpdate describes a partial mutation of a warehouse.
type WarehouseUpdate struct {
	CurrentLoad *float64
	IsActive    *bool
}

// FleetRegistry provides read and write access to vehicle records. List
// results preserve insertion order so that bulk planning is deterministic.
type FleetRegistry interface {
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (model.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, upd VehicleUpdate) error
}

// WarehouseRegistry provides read and write access to warehouse records.
type WarehouseRegistry interface {
	ListWarehouses(ctx context.Context) ([]model.Warehouse, error)
	GetWarehouse(ctx context.Context, id string) (model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id string, upd WarehouseUpdate) error
}
