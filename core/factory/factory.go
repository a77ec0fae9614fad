// Package factory instantiates pluggable modules from configuration. A
// module is named by a type string plus a map of raw settings; the registry
// looks up the constructor for the type and hands it the settings to decode.
// Metrics sinks are built this way from the `metrics.sinks` config section.
package factory

import (
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// ModuleConfig names a module type and carries its raw settings.
type ModuleConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Factory builds a T from raw settings.
type Factory[T any] func(map[string]any) (T, error)

// Registry maps module type names to their constructors. Registration
// happens at wiring time, lookups at service start; both are safe to call
// concurrently.
type Registry[T any] struct {
	mu       sync.RWMutex
	builders map[string]Factory[T]
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{builders: make(map[string]Factory[T])}
}

// Register binds a constructor to a type name. Registering the same name
// twice is an error so that wiring mistakes surface at startup.
func (r *Registry[T]) Register(name string, f Factory[T]) error {
	if f == nil {
		return fmt.Errorf("factory: nil constructor for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builders[name]; ok {
		return fmt.Errorf("factory: %q already registered", name)
	}
	r.builders[name] = f
	return nil
}

// Create builds the module described by cfg.
func (r *Registry[T]) Create(cfg ModuleConfig) (T, error) {
	r.mu.RLock()
	f, ok := r.builders[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("factory: unknown module type %q", cfg.Type)
	}
	return f(cfg.Conf)
}

// Decode unpacks raw settings into a typed config struct using its json tags.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
