package model

import "fmt"

// Warehouse represents a storage site with a bounded volume capacity.
type Warehouse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address,omitempty"`
	Specialization string  `json:"specialization,omitempty"`
	Capacity       float64 `json:"capacity"`     // total volume capacity in cubic meters
	CurrentLoad    float64 `json:"current_load"` // occupied volume
	IsActive       bool    `json:"is_active"`
}

// Validate checks that the warehouse record is sound.
func (w Warehouse) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("warehouse id is required")
	}
	if w.Capacity < 0 {
		return fmt.Errorf("warehouse %s: capacity must be non-negative", w.ID)
	}
	if w.CurrentLoad < 0 {
		return fmt.Errorf("warehouse %s: current load must be non-negative", w.ID)
	}
	return nil
}

// FreeCapacity returns the remaining volume the warehouse can accept.
func (w Warehouse) FreeCapacity() float64 {
	return w.Capacity - w.CurrentLoad
}

// Utilization returns the load ratio in [0,1]. A warehouse with zero capacity
// can accept nothing and reports full utilization.
func (w Warehouse) Utilization() float64 {
	if w.Capacity <= 0 {
		return 1
	}
	return w.CurrentLoad / w.Capacity
}
