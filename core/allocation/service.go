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
	"github.com/1ndex13/logistic-app/core/notify"
	"github.com/1ndex13/logistic-app/core/registry"
	"github.com/1ndex13/logistic-app/internal/eventbus"
)

// BulkResult reports the outcome of one auto-allocation pass. Results holds
// the per-plan apply outcomes in planning order; Unallocated lists vehicles
// no warehouse could fit.
type BulkResult struct {
	Results     []PlanResult
	Unallocated []string
}

// Applied counts the plans that committed.
func (r BulkResult) Applied() int {
	n := 0
	for _, pr := range r.Results {
		if pr.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts the plans that did not commit.
func (r BulkResult) Failed() int { return len(r.Results) - r.Applied() }

// Service exposes the allocation entry points consumed by the HTTP layer and
// the CLI: single allocation, fleet-wide auto allocation, and releases.
type Service struct {
	engine     Engine
	coord      *Coordinator
	release    *ReleaseManager
	fleet      registry.FleetRegistry
	warehouses registry.WarehouseRegistry
	log        logger.Logger
	bus        eventbus.EventBus
	opTimeout  time.Duration
}

// NewService wires the engine, coordinator and release manager over the given
// registries. The sink, bus and notifier may be nil.
func NewService(cfg Config, fleet registry.FleetRegistry, warehouses registry.WarehouseRegistry, log logger.Logger, sink coremetrics.MetricsSink, bus eventbus.EventBus, notifier notify.Notifier) (*Service, error) {
	locks := newWarehouseLocks()
	coord, err := NewCoordinator(fleet, warehouses, locks, log, sink, bus, notifier)
	if err != nil {
		return nil, err
	}
	rel, err := NewReleaseManager(fleet, warehouses, locks, log, sink, bus, notifier)
	if err != nil {
		return nil, err
	}
	return &Service{
		engine:     Engine{},
		coord:      coord,
		release:    rel,
		fleet:      fleet,
		warehouses: warehouses,
		log:        log,
		bus:        bus,
		opTimeout:  time.Duration(cfg.OperationTimeoutSeconds) * time.Second,
	}, nil
}

// Allocate assigns one vehicle to one warehouse.
func (s *Service) Allocate(ctx context.Context, vehicleID, warehouseID string) (AppliedAllocation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := s.fleet.GetVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return AppliedAllocation{}, ErrVehicleNotFound
		}
		return AppliedAllocation{}, fmt.Errorf("read vehicle %s: %w", vehicleID, err)
	}
	w, err := s.warehouses.GetWarehouse(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return AppliedAllocation{}, ErrWarehouseNotFound
		}
		return AppliedAllocation{}, fmt.Errorf("read warehouse %s: %w", warehouseID, err)
	}

	plan, err := s.engine.PlanSingle(v, w)
	if err != nil {
		allocationFailures.WithLabelValues(failureReason(err)).Inc()
		return AppliedAllocation{}, err
	}
	res, err := s.coord.Apply(ctx, plan)
	if err != nil {
		return AppliedAllocation{}, err
	}
	s.infof("allocated vehicle %s to warehouse %s (load %.2f/%.2f)", res.VehicleID, res.WarehouseID, res.NewLoad, w.Capacity)
	return res, nil
}

// PlanAll computes a fleet-wide allocation plan without applying it.
func (s *Service) PlanAll(ctx context.Context) (BulkPlan, error) {
	vehicles, warehouses, err := s.snapshot(ctx)
	if err != nil {
		return BulkPlan{}, err
	}
	return s.engine.PlanBulk(vehicles, warehouses)
}

// AutoAllocateAll plans and applies assignments for every available vehicle.
// Failures on individual plans do not abort the pass.
func (s *Service) AutoAllocateAll(ctx context.Context) (BulkResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	plan, err := s.PlanAll(ctx)
	if err != nil {
		return BulkResult{}, err
	}
	res := BulkResult{
		Results:     s.coord.ApplyBulk(ctx, plan.Plans),
		Unallocated: plan.Unallocated,
	}
	if s.bus != nil {
		s.bus.Publish(events.BulkEvent{
			Planned:     len(plan.Plans),
			Applied:     res.Applied(),
			Failed:      res.Failed(),
			Unallocated: len(plan.Unallocated),
			Time:        time.Now(),
		})
	}
	s.infof("auto allocation: %d planned, %d applied, %d failed, %d unallocated",
		len(plan.Plans), res.Applied(), res.Failed(), len(plan.Unallocated))
	return res, nil
}

// Free releases one vehicle.
func (s *Service) Free(ctx context.Context, vehicleID string) (ReleasedVehicle, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.release.ReleaseVehicle(ctx, vehicleID)
}

// FreeWarehouse releases every vehicle assigned to the warehouse and zeroes
// its load.
func (s *Service) FreeWarehouse(ctx context.Context, warehouseID string) (ReleaseReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	report, err := s.release.ReleaseWarehouse(ctx, warehouseID)
	if err == nil {
		s.infof("warehouse %s released: %d freed, %d failures", warehouseID, report.Freed, len(report.Failures))
	}
	return report, err
}

func (s *Service) snapshot(ctx context.Context) ([]model.Vehicle, []model.Warehouse, error) {
	vehicles, err := s.fleet.ListVehicles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list vehicles: %w", err)
	}
	warehouses, err := s.warehouses.ListWarehouses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list warehouses: %w", err)
	}
	return vehicles, warehouses, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout > 0 {
		return context.WithTimeout(ctx, s.opTimeout)
	}
	return ctx, func() {}
}

func (s *Service) infof(format string, args ...any) {
	if s.log != nil {
		s.log.Infof(format, args...)
	}
}
