package metrics

import (
	"context"

	"github.com/1ndex13/logistic-app/core/events"
	coremetrics "github.com/1ndex13/logistic-app/core/metrics"
	"github.com/1ndex13/logistic-app/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards utilization
// observations to the sink. Allocation and release records themselves are
// written by the coordinator and release manager; the collector only mirrors
// the load ratio so sinks without registry access still see it. It stops when
// the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.UtilizationRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.AllocationEvent:
					if e.Applied {
						_ = rec.RecordUtilization(e.WarehouseID, e.Utilization)
					}
				case events.ReleaseEvent:
					if e.Forced {
						_ = rec.RecordUtilization(e.WarehouseID, 0)
					}
				}
			}
		}
	}()
}
