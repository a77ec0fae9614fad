package metrics

import (
	"strconv"

	coremetrics "github.com/1ndex13/logistic-app/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records allocation events in Prometheus metrics.
type PromSink struct {
	allocations *prometheus.CounterVec
	releases    *prometheus.CounterVec
	utilization *prometheus.GaugeVec
}

// NewPromSink registers allocation metrics on the default Prometheus
// registerer. The metrics server is started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_events_total",
		Help: "Total number of allocation events",
	}, []string{"warehouse_id", "applied"})
	releases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "release_events_total",
		Help: "Total number of release events",
	}, []string{"warehouse_id", "forced"})
	utilization := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "warehouse_utilization_observed",
		Help: "Warehouse utilization as observed by the sink",
	}, []string{"warehouse_id"})

	if err := reg.Register(allocations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			allocations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(releases); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			releases = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(utilization); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			utilization = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{allocations: allocations, releases: releases, utilization: utilization}, nil
}

// RecordAllocations increments the counter for each allocation event.
func (s *PromSink) RecordAllocations(records []coremetrics.AllocationRecord) error {
	for _, r := range records {
		s.allocations.WithLabelValues(r.WarehouseID, strconv.FormatBool(r.Applied)).Inc()
		if r.Applied {
			s.utilization.WithLabelValues(r.WarehouseID).Set(r.Utilization)
		}
	}
	return nil
}

// RecordReleases increments the counter for each release event.
func (s *PromSink) RecordReleases(records []coremetrics.ReleaseRecord) error {
	for _, r := range records {
		s.releases.WithLabelValues(r.WarehouseID, strconv.FormatBool(r.Forced)).Inc()
	}
	return nil
}

// RecordUtilization sets the observed utilization gauge.
func (s *PromSink) RecordUtilization(warehouseID string, ratio float64) error {
	s.utilization.WithLabelValues(warehouseID).Set(ratio)
	return nil
}
