package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocations forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAllocations(records []AllocationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocations(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordReleases forwards release records to sinks implementing ReleaseRecorder.
func (m *MultiSink) RecordReleases(records []ReleaseRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ReleaseRecorder); ok {
			if err := rec.RecordReleases(records); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordUtilization forwards utilization samples to sinks implementing
// UtilizationRecorder.
func (m *MultiSink) RecordUtilization(warehouseID string, ratio float64) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(UtilizationRecorder); ok {
			if err := rec.RecordUtilization(warehouseID, ratio); err != nil {
				return err
			}
		}
	}
	return nil
}
