package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/1ndex13/logistic-app/core/events"
	coremetrics "github.com/1ndex13/logistic-app/core/metrics"
	"github.com/1ndex13/logistic-app/internal/eventbus"
)

type utilizationSink struct {
	mu      sync.Mutex
	samples map[string]float64
}

func (s *utilizationSink) RecordAllocations([]coremetrics.AllocationRecord) error { return nil }

func (s *utilizationSink) RecordUtilization(warehouseID string, ratio float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples == nil {
		s.samples = make(map[string]float64)
	}
	s.samples[warehouseID] = ratio
	return nil
}

func (s *utilizationSink) sample(warehouseID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.samples[warehouseID]
	return v, ok
}

func TestEventCollectorForwardsUtilization(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &utilizationSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.AllocationEvent{WarehouseID: "w1", Applied: true, Utilization: 0.8})
	bus.Publish(events.AllocationEvent{WarehouseID: "w2", Applied: false, Utilization: 0.3})
	bus.Publish(events.ReleaseEvent{WarehouseID: "w3", Forced: true})

	assert.Eventually(t, func() bool {
		v, ok := sink.sample("w1")
		if !ok || v != 0.8 {
			return false
		}
		z, ok := sink.sample("w3")
		return ok && z == 0
	}, time.Second, 10*time.Millisecond)

	// Failed allocations carry no committed state and are not observed.
	_, ok := sink.sample("w2")
	assert.False(t, ok)
}

func TestEventCollectorIgnoresPlainSinks(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	// Must not panic or subscribe when the sink records nothing useful.
	StartEventCollector(context.Background(), bus, coremetrics.NopSink{})
	bus.Publish(events.AllocationEvent{WarehouseID: "w1", Applied: true})
}
