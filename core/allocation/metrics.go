package allocation

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	allocationsApplied   *prometheus.CounterVec
	allocationFailures   *prometheus.CounterVec
	releasesApplied      *prometheus.CounterVec
	warehouseUtilization *prometheus.GaugeVec
	partialFailures      prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec, prometheus.Counter) {
	applied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocations_applied_total",
			Help: "Number of vehicle allocations committed",
		},
		[]string{"warehouse_id"},
	)
	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocation_failures_total",
			Help: "Number of allocation attempts refused or failed",
		},
		[]string{"reason"},
	)
	released := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "releases_applied_total",
			Help: "Number of vehicle releases committed",
		},
		[]string{"warehouse_id"},
	)
	util := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warehouse_utilization_ratio",
			Help: "Current load divided by capacity per warehouse",
		},
		[]string{"warehouse_id"},
	)
	partial := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "allocation_partial_failures_total",
			Help: "Number of operations that left a warehouse load drifted",
		},
	)
	return applied, failed, released, util, partial
}

func init() {
	allocationsApplied, allocationFailures, releasesApplied, warehouseUtilization, partialFailures = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers allocation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(allocationsApplied, allocationFailures, releasesApplied, warehouseUtilization, partialFailures)
}

// ResetMetrics reinitializes metric collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	allocationsApplied, allocationFailures, releasesApplied, warehouseUtilization, partialFailures = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

// failureReason buckets an error for the failure counter.
func failureReason(err error) string {
	var capErr *CapacityError
	var partialAlloc *PartialAllocationError
	var partialRel *PartialReleaseError
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &capErr):
		return "insufficient_capacity"
	case errors.As(err, &partialAlloc), errors.As(err, &partialRel):
		return "partial_failure"
	case errors.Is(err, ErrVehicleNotAvailable):
		return "vehicle_not_available"
	case errors.Is(err, ErrAlreadyAllocated):
		return "already_allocated"
	case errors.Is(err, ErrInactiveWarehouse):
		return "inactive_warehouse"
	case errors.Is(err, ErrVehicleNotFound), errors.Is(err, ErrWarehouseNotFound):
		return "not_found"
	default:
		return "registry_error"
	}
}
