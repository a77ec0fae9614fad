package notify

import "github.com/1ndex13/logistic-app/core/events"

// Notifier publishes allocation activity to external consumers such as yard
// display boards or downstream warehouse systems.
type Notifier interface {
	NotifyAllocation(ev events.AllocationEvent) error
	NotifyRelease(ev events.ReleaseEvent) error
}

// Nop discards all notifications.
type Nop struct{}

// NotifyAllocation implements Notifier.
func (Nop) NotifyAllocation(events.AllocationEvent) error { return nil }

// NotifyRelease implements Notifier.
func (Nop) NotifyRelease(events.ReleaseEvent) error { return nil }
