// Package events defines the domain events emitted on the internal event bus
// by the allocation coordinator and release manager.
package events
