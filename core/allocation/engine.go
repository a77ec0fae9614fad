package allocation

import (
	"math"
	"sort"

	"github.com/1ndex13/logistic-app/core/model"
)

// Plan describes the two linked field updates an allocation requires: the
// warehouse load raised to NewLoad and the vehicle assigned to WarehouseID.
// A plan is a decision, not an applied state change.
type Plan struct {
	VehicleID   string  `json:"vehicle_id"`
	WarehouseID string  `json:"warehouse_id"`
	Volume      float64 `json:"volume"`
	NewLoad     float64 `json:"new_load"`
}

// BulkPlan is the outcome of a fleet-wide planning pass. Unallocated lists
// vehicles no warehouse could fit; leaving a vehicle unallocated is a normal
// planning outcome, not an error.
type BulkPlan struct {
	Plans       []Plan   `json:"plans"`
	Unallocated []string `json:"unallocated"`
}

// Engine plans allocations against a snapshot of the registries. It is pure:
// it never mutates its inputs and performs no I/O.
type Engine struct{}

// PlanSingle plans the assignment of one vehicle to one warehouse. The
// vehicle must be AVAILABLE and the warehouse active with enough free
// capacity, otherwise a typed error describes the refusal.
func (Engine) PlanSingle(v model.Vehicle, w model.Warehouse) (Plan, error) {
	if err := v.Validate(); err != nil {
		return Plan{}, err
	}
	if err := w.Validate(); err != nil {
		return Plan{}, err
	}
	if !v.IsAllocatable() {
		return Plan{}, ErrVehicleNotAvailable
	}
	if !w.IsActive {
		return Plan{}, ErrInactiveWarehouse
	}
	if w.FreeCapacity() < v.Volume {
		return Plan{}, &CapacityError{
			VehicleID:   v.ID,
			WarehouseID: w.ID,
			Available:   w.FreeCapacity(),
			Required:    v.Volume,
		}
	}
	return Plan{
		VehicleID:   v.ID,
		WarehouseID: w.ID,
		Volume:      v.Volume,
		NewLoad:     w.CurrentLoad + v.Volume,
	}, nil
}

// PlanBulk plans assignments for every AVAILABLE vehicle using a greedy
// first-fit heuristic. Warehouses are sorted once by ascending utilization;
// each vehicle takes the first warehouse that fits it and the working copy of
// that warehouse's load is raised so later vehicles see it. The list is
// deliberately not re-sorted after placements, keeping the pass O(V*W) and
// deterministic: a later vehicle may land on a warehouse that is no longer
// the least utilized.
func (Engine) PlanBulk(vehicles []model.Vehicle, warehouses []model.Warehouse) (BulkPlan, error) {
	for _, v := range vehicles {
		if err := v.Validate(); err != nil {
			return BulkPlan{}, err
		}
	}
	for _, w := range warehouses {
		if err := w.Validate(); err != nil {
			return BulkPlan{}, err
		}
	}

	candidates := make([]model.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		if w.IsActive {
			candidates = append(candidates, w)
		}
	}
	// Stable sort keeps registry order between equally utilized warehouses.
	sort.SliceStable(candidates, func(i, j int) bool {
		return sortUtilization(candidates[i]) < sortUtilization(candidates[j])
	})

	loads := make([]float64, len(candidates))
	for i, w := range candidates {
		loads[i] = w.CurrentLoad
	}

	var out BulkPlan
	for _, v := range vehicles {
		if !v.IsAllocatable() {
			continue
		}
		placed := false
		for i, w := range candidates {
			if w.Capacity-loads[i] >= v.Volume {
				loads[i] += v.Volume
				out.Plans = append(out.Plans, Plan{
					VehicleID:   v.ID,
					WarehouseID: w.ID,
					Volume:      v.Volume,
					NewLoad:     loads[i],
				})
				placed = true
				break
			}
		}
		if !placed {
			out.Unallocated = append(out.Unallocated, v.ID)
		}
	}
	return out, nil
}

// sortUtilization orders warehouses for the bulk pass. Zero capacity sorts
// last: such a warehouse can accept nothing.
func sortUtilization(w model.Warehouse) float64 {
	if w.Capacity <= 0 {
		return math.Inf(1)
	}
	return w.CurrentLoad / w.Capacity
}
