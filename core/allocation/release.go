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

// ReleasedVehicle reports the state committed by a vehicle release.
type ReleasedVehicle struct {
	VehicleID   string  `json:"vehicle_id"`
	WarehouseID string  `json:"warehouse_id,omitempty"`
	Volume      float64 `json:"volume"`
	NewLoad     float64 `json:"new_load"`
}

// ReleaseReport summarizes a warehouse-wide release.
type ReleaseReport struct {
	WarehouseID string           `json:"warehouse_id"`
	Freed       int              `json:"freed"`
	Failures    []ReleaseFailure `json:"failures,omitempty"`
}

// ReleaseManager frees vehicles and warehouses, the inverse of the
// Coordinator. It shares the per-warehouse locks so releases and allocations
// targeting the same warehouse never interleave.
type ReleaseManager struct {
	fleet      registry.FleetRegistry
	warehouses registry.WarehouseRegistry
	locks      *warehouseLocks
	log        logger.Logger
	sink       coremetrics.MetricsSink
	bus        eventbus.EventBus
	notifier   notify.Notifier
}

// NewReleaseManager creates a release manager over the given registries.
func NewReleaseManager(fleet registry.FleetRegistry, warehouses registry.WarehouseRegistry, locks *warehouseLocks, log logger.Logger, sink coremetrics.MetricsSink, bus eventbus.EventBus, notifier notify.Notifier) (*ReleaseManager, error) {
	if fleet == nil || warehouses == nil {
		return nil, fmt.Errorf("allocation: nil registry provided to NewReleaseManager")
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
	return &ReleaseManager{
		fleet:      fleet,
		warehouses: warehouses,
		locks:      locks,
		log:        log,
		sink:       sink,
		bus:        bus,
		notifier:   notifier,
	}, nil
}

// ReleaseVehicle frees one vehicle. The warehouse load is decremented by the
// vehicle's volume, clamped at zero so drift from prior partial failures
// never drives it negative, then the vehicle is marked AVAILABLE with no
// warehouse. Releasing a vehicle that holds no warehouse is a no-op success.
func (m *ReleaseManager) ReleaseVehicle(ctx context.Context, vehicleID string) (ReleasedVehicle, error) {
	for {
		v, err := m.fleet.GetVehicle(ctx, vehicleID)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return ReleasedVehicle{}, ErrVehicleNotFound
			}
			return ReleasedVehicle{}, fmt.Errorf("read vehicle %s: %w", vehicleID, err)
		}

		if v.CurrentWarehouseID == "" {
			if v.Status != model.StatusAvailable {
				avail := model.StatusAvailable
				if err := m.fleet.UpdateVehicle(ctx, v.ID, registry.VehicleUpdate{Status: &avail}); err != nil {
					return ReleasedVehicle{}, fmt.Errorf("update vehicle %s: %w", v.ID, err)
				}
			}
			return ReleasedVehicle{VehicleID: v.ID}, nil
		}

		unlock := m.locks.lock(v.CurrentWarehouseID)

		// Re-read under the lock: a concurrent release may have freed the
		// vehicle, or it may have moved to another warehouse, between the
		// first read and acquiring the lock. Decrementing the load for a
		// vehicle that is no longer assigned would undercount it.
		live, err := m.fleet.GetVehicle(ctx, vehicleID)
		if err != nil {
			unlock()
			if errors.Is(err, registry.ErrNotFound) {
				return ReleasedVehicle{}, ErrVehicleNotFound
			}
			return ReleasedVehicle{}, fmt.Errorf("read vehicle %s: %w", vehicleID, err)
		}
		if live.CurrentWarehouseID != v.CurrentWarehouseID {
			unlock()
			continue
		}

		res, err := m.release(ctx, live)
		m.record(live, res, false, err)
		unlock()
		return res, err
	}
}

func (m *ReleaseManager) release(ctx context.Context, v model.Vehicle) (ReleasedVehicle, error) {
	avail := model.StatusAvailable
	noWarehouse := ""

	w, err := m.warehouses.GetWarehouse(ctx, v.CurrentWarehouseID)
	if errors.Is(err, registry.ErrNotFound) {
		// The warehouse is gone; just free the vehicle.
		if uErr := m.fleet.UpdateVehicle(ctx, v.ID, registry.VehicleUpdate{Status: &avail, CurrentWarehouseID: &noWarehouse}); uErr != nil {
			return ReleasedVehicle{}, fmt.Errorf("update vehicle %s: %w", v.ID, uErr)
		}
		return ReleasedVehicle{VehicleID: v.ID, WarehouseID: v.CurrentWarehouseID, Volume: v.Volume}, nil
	}
	if err != nil {
		return ReleasedVehicle{}, fmt.Errorf("read warehouse %s: %w", v.CurrentWarehouseID, err)
	}

	newLoad := w.CurrentLoad - v.Volume
	if newLoad < 0 {
		newLoad = 0
	}
	if err := m.warehouses.UpdateWarehouse(ctx, w.ID, registry.WarehouseUpdate{CurrentLoad: &newLoad}); err != nil {
		return ReleasedVehicle{}, fmt.Errorf("update warehouse %s load: %w", w.ID, err)
	}

	if err := m.fleet.UpdateVehicle(ctx, v.ID, registry.VehicleUpdate{Status: &avail, CurrentWarehouseID: &noWarehouse}); err != nil {
		prev := w.CurrentLoad
		if rbErr := m.warehouses.UpdateWarehouse(ctx, w.ID, registry.WarehouseUpdate{CurrentLoad: &prev}); rbErr != nil {
			partialFailures.Inc()
			m.logf("rollback of warehouse %s failed after vehicle write error: %v (original: %v)", w.ID, rbErr, err)
			pErr := &PartialReleaseError{
				VehicleID:   v.ID,
				WarehouseID: w.ID,
				Drift:       w.CurrentLoad - newLoad,
				Cause:       err,
			}
			monitoring.CaptureException(pErr, map[string]string{"warehouse_id": w.ID, "vehicle_id": v.ID})
			return ReleasedVehicle{}, pErr
		}
		return ReleasedVehicle{}, fmt.Errorf("update vehicle %s (warehouse %s rolled back): %w", v.ID, w.ID, err)
	}

	return ReleasedVehicle{
		VehicleID:   v.ID,
		WarehouseID: w.ID,
		Volume:      v.Volume,
		NewLoad:     newLoad,
	}, nil
}

// ReleaseWarehouse frees every vehicle assigned to the warehouse, then forces
// the load to zero. The zeroing happens even when some per-vehicle releases
// failed: unloading the warehouse is authoritative over possibly stale
// per-vehicle bookkeeping. Per-vehicle failures are accumulated in the
// report, not returned as an overall error.
func (m *ReleaseManager) ReleaseWarehouse(ctx context.Context, warehouseID string) (ReleaseReport, error) {
	w, err := m.warehouses.GetWarehouse(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return ReleaseReport{}, ErrWarehouseNotFound
		}
		return ReleaseReport{}, fmt.Errorf("read warehouse %s: %w", warehouseID, err)
	}

	vehicles, err := m.fleet.ListVehicles(ctx)
	if err != nil {
		return ReleaseReport{}, fmt.Errorf("list vehicles: %w", err)
	}

	report := ReleaseReport{WarehouseID: w.ID}
	for _, v := range vehicles {
		if v.CurrentWarehouseID != w.ID {
			continue
		}
		if _, rErr := m.ReleaseVehicle(ctx, v.ID); rErr != nil {
			report.Failures = append(report.Failures, ReleaseFailure{VehicleID: v.ID, Err: rErr})
			continue
		}
		report.Freed++
	}

	unlock := m.locks.lock(w.ID)
	zero := 0.0
	zErr := m.warehouses.UpdateWarehouse(ctx, w.ID, registry.WarehouseUpdate{CurrentLoad: &zero})
	unlock()
	if zErr != nil {
		return report, fmt.Errorf("zero warehouse %s load: %w", w.ID, zErr)
	}
	warehouseUtilization.WithLabelValues(w.ID).Set(0)
	m.record(model.Vehicle{CurrentWarehouseID: w.ID}, ReleasedVehicle{WarehouseID: w.ID}, true, nil)
	return report, nil
}

// record updates collectors, publishes the event and forwards it to the sink
// and notifier.
func (m *ReleaseManager) record(v model.Vehicle, res ReleasedVehicle, forced bool, err error) {
	if err == nil && !forced {
		releasesApplied.WithLabelValues(res.WarehouseID).Inc()
		if w, gErr := m.warehouses.GetWarehouse(context.Background(), res.WarehouseID); gErr == nil {
			warehouseUtilization.WithLabelValues(w.ID).Set(w.Utilization())
		}
	}
	if err != nil {
		allocationFailures.WithLabelValues(failureReason(err)).Inc()
	}

	ev := events.ReleaseEvent{
		VehicleID:   v.ID,
		WarehouseID: res.WarehouseID,
		Volume:      res.Volume,
		NewLoad:     res.NewLoad,
		Forced:      forced,
		Err:         err,
		Time:        time.Now(),
	}
	if ev.WarehouseID == "" {
		ev.WarehouseID = v.CurrentWarehouseID
	}
	if m.bus != nil {
		m.bus.Publish(ev)
	}
	if err == nil {
		if nErr := m.notifier.NotifyRelease(ev); nErr != nil {
			m.logf("release notification failed: %v", nErr)
		}
	}

	rec := coremetrics.ReleaseRecord{
		EventID:     uuid.NewString(),
		VehicleID:   v.ID,
		WarehouseID: ev.WarehouseID,
		Volume:      res.Volume,
		NewLoad:     res.NewLoad,
		Forced:      forced,
		Time:        ev.Time,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if rr, ok := m.sink.(coremetrics.ReleaseRecorder); ok {
		if sErr := rr.RecordReleases([]coremetrics.ReleaseRecord{rec}); sErr != nil {
			m.logf("metrics error: %v", sErr)
		}
	}
}

func (m *ReleaseManager) logf(format string, args ...any) {
	if m.log != nil {
		m.log.Errorf(format, args...)
	}
}
