package metrics

import "time"

// AllocationRecord represents a per-vehicle allocation event to be recorded.
type AllocationRecord struct {
	EventID     string
	VehicleID   string
	WarehouseID string
	Volume      float64
	NewLoad     float64
	Utilization float64
	Applied     bool
	Error       string
	Time        time.Time
}

// ReleaseRecord represents a per-vehicle release event.
type ReleaseRecord struct {
	EventID     string
	VehicleID   string
	WarehouseID string
	Volume      float64
	NewLoad     float64
	Forced      bool
	Error       string
	Time        time.Time
}

// MetricsSink records allocation results for observability purposes.
type MetricsSink interface {
	RecordAllocations(records []AllocationRecord) error
}

// ReleaseRecorder records release events. Sinks may implement it in addition
// to MetricsSink.
type ReleaseRecorder interface {
	RecordReleases(records []ReleaseRecord) error
}

// UtilizationRecorder records the utilization ratio of a warehouse after a
// load change.
type UtilizationRecorder interface {
	RecordUtilization(warehouseID string, ratio float64) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordAllocations implements MetricsSink.
func (NopSink) RecordAllocations([]AllocationRecord) error { return nil }

// RecordReleases implements ReleaseRecorder.
func (NopSink) RecordReleases([]ReleaseRecord) error { return nil }
