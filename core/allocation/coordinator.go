package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1ndex13/logistic-app/core/events"
	"github.com/1ndex13/logistic-app/core/logger"
	coremetrics "github.com/1ndex13/logistic-app/core/metrics"
	"github.com/1ndex13/logistic-app/core/model"
	"github.com/1ndex13/logistic-app/core/monitoring"
	"github.com/1ndex13/logistic-app/core/notify"
	"github.com/1ndex13/logistic-app/core/registry"
	"github.com/1ndex13/logistic-app/internal/eventbus"

	"github.com/google/uuid"
)

// AppliedAllocation reports the state committed by a successful apply.
type AppliedAllocation struct {
	VehicleID   string  `json:"vehicle_id"`
	WarehouseID string  `json:"warehouse_id"`
	Volume      float64 `json:"volume"`
	NewLoad     float64 `json:"new_load"`
	Utilization float64 `json:"utilization"`
}

// PlanResult pairs one plan of a bulk pass with its apply outcome.
type PlanResult struct {
	Plan Plan
	Err  error
}

// Coordinator applies allocation plans against the registries. It is the only
// writer of the warehouse-load / vehicle-assignment pair for allocations and
// owns the compensation logic when the second write fails.
type Coordinator struct {
	fleet      registry.FleetRegistry
	warehouses registry.WarehouseRegistry
	locks      *warehouseLocks
	log        logger.Logger
	sink       coremetrics.MetricsSink
	bus        eventbus.EventBus
	notifier   notify.Notifier
}

// NewCoordinator creates a coordinator over the given registries. The sink,
// bus and notifier may be nil.
func NewCoordinator(fleet registry.FleetRegistry, warehouses registry.WarehouseRegistry, locks *warehouseLocks, log logger.Logger, sink coremetrics.MetricsSink, bus eventbus.EventBus, notifier notify.Notifier) (*Coordinator, error) {
	if fleet == nil || warehouses == nil {
		return nil, fmt.Errorf("allocation: nil registry provided to NewCoordinator")
	}
	if locks == nil {
		locks = newWarehouseLocks()
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Coordinator{
		fleet:      fleet,
		warehouses: warehouses,
		locks:      locks,
		log:        log,
		sink:       sink,
		bus:        bus,
		notifier:   notifier,
	}, nil
}

// Apply commits one allocation plan. The warehouse-load write happens first
// and the vehicle write second; if the vehicle write fails the load is rolled
// back, and if the rollback fails too the drift is surfaced as a
// PartialAllocationError instead of being silently persisted.
//
// The live registry state is re-validated under the warehouse lock, so a plan
// computed from a stale snapshot is refused rather than overselling capacity.
func (c *Coordinator) Apply(ctx context.Context, plan Plan) (AppliedAllocation, error) {
	unlock := c.locks.lock(plan.WarehouseID)
	defer unlock()

	res, err := c.apply(ctx, plan)
	c.record(plan, res, err)
	return res, err
}

func (c *Coordinator) apply(ctx context.Context, plan Plan) (AppliedAllocation, error) {
	v, err := c.fleet.GetVehicle(ctx, plan.VehicleID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return AppliedAllocation{}, ErrVehicleNotFound
		}
		return AppliedAllocation{}, fmt.Errorf("read vehicle %s: %w", plan.VehicleID, err)
	}
	w, err := c.warehouses.GetWarehouse(ctx, plan.WarehouseID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return AppliedAllocation{}, ErrWarehouseNotFound
		}
		return AppliedAllocation{}, fmt.Errorf("read warehouse %s: %w", plan.WarehouseID, err)
	}

	if v.Status == model.StatusInUse && v.CurrentWarehouseID == plan.WarehouseID {
		return AppliedAllocation{}, ErrAlreadyAllocated
	}
	if !v.IsAllocatable() {
		return AppliedAllocation{}, ErrVehicleNotAvailable
	}
	if !w.IsActive {
		return AppliedAllocation{}, ErrInactiveWarehouse
	}
	if w.FreeCapacity() < v.Volume {
		return AppliedAllocation{}, &CapacityError{
			VehicleID:   v.ID,
			WarehouseID: w.ID,
			Available:   w.FreeCapacity(),
			Required:    v.Volume,
		}
	}

	// The live load is authoritative over the plan's precomputed value: other
	// plans may have committed since the snapshot was taken.
	newLoad := w.CurrentLoad + v.Volume
	if err := c.warehouses.UpdateWarehouse(ctx, w.ID, registry.WarehouseUpdate{CurrentLoad: &newLoad}); err != nil {
		return AppliedAllocation{}, fmt.Errorf("update warehouse %s load: %w", w.ID, err)
	}

	inUse := model.StatusInUse
	wid := w.ID
	if err := c.fleet.UpdateVehicle(ctx, v.ID, registry.VehicleUpdate{Status: &inUse, CurrentWarehouseID: &wid}); err != nil {
		prev := w.CurrentLoad
		if rbErr := c.warehouses.UpdateWarehouse(ctx, w.ID, registry.WarehouseUpdate{CurrentLoad: &prev}); rbErr != nil {
			partialFailures.Inc()
			c.logf("rollback of warehouse %s failed after vehicle write error: %v (original: %v)", w.ID, rbErr, err)
			pErr := &PartialAllocationError{
				VehicleID:   v.ID,
				WarehouseID: w.ID,
				Drift:       v.Volume,
				Cause:       err,
			}
			monitoring.CaptureException(pErr, map[string]string{"warehouse_id": w.ID, "vehicle_id": v.ID})
			return AppliedAllocation{}, pErr
		}
		return AppliedAllocation{}, fmt.Errorf("update vehicle %s (warehouse %s rolled back): %w", v.ID, w.ID, err)
	}

	util := 1.0
	if w.Capacity > 0 {
		util = newLoad / w.Capacity
	}
	return AppliedAllocation{
		VehicleID:   v.ID,
		WarehouseID: w.ID,
		Volume:      v.Volume,
		NewLoad:     newLoad,
		Utilization: util,
	}, nil
}

// ApplyBulk applies each plan independently; one failed plan does not abort
// the rest. The context is checked between applies so a large batch can be
// aborted, partial completion being an accepted outcome.
func (c *Coordinator) ApplyBulk(ctx context.Context, plans []Plan) []PlanResult {
	results := make([]PlanResult, 0, len(plans))
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			results = append(results, PlanResult{Plan: p, Err: err})
			continue
		}
		_, err := c.Apply(ctx, p)
		results = append(results, PlanResult{Plan: p, Err: err})
	}
	return results
}

// record updates collectors, publishes the event and forwards it to the sink
// and notifier. Observability failures are logged, never propagated.
func (c *Coordinator) record(plan Plan, res AppliedAllocation, err error) {
	applied := err == nil
	if applied {
		allocationsApplied.WithLabelValues(res.WarehouseID).Inc()
		warehouseUtilization.WithLabelValues(res.WarehouseID).Set(res.Utilization)
	} else {
		allocationFailures.WithLabelValues(failureReason(err)).Inc()
	}

	ev := events.AllocationEvent{
		VehicleID:   plan.VehicleID,
		WarehouseID: plan.WarehouseID,
		Volume:      plan.Volume,
		NewLoad:     res.NewLoad,
		Utilization: res.Utilization,
		Applied:     applied,
		Err:         err,
		Time:        time.Now(),
	}
	if c.bus != nil {
		c.bus.Publish(ev)
	}
	if applied {
		if nErr := c.notifier.NotifyAllocation(ev); nErr != nil {
			c.logf("allocation notification failed: %v", nErr)
		}
	}

	rec := coremetrics.AllocationRecord{
		EventID:     uuid.NewString(),
		VehicleID:   plan.VehicleID,
		WarehouseID: plan.WarehouseID,
		Volume:      plan.Volume,
		NewLoad:     res.NewLoad,
		Utilization: res.Utilization,
		Applied:     applied,
		Time:        ev.Time,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if sErr := c.sink.RecordAllocations([]coremetrics.AllocationRecord{rec}); sErr != nil {
		c.logf("metrics error: %v", sErr)
	}
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Errorf(format, args...)
	}
}
