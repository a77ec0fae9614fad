package store

import (
	"context"
	"sync"

	"github.com/1ndex13/logistic-app/core/model"
	"github.com/1ndex13/logistic-app/core/registry"
)

// MemoryStore is an in-memory implementation of both registries. Insertion
// order is preserved so list results, and therefore bulk planning, are
// deterministic.
type MemoryStore struct {
	mu         sync.RWMutex
	vehicles   map[string]*model.Vehicle
	warehouses map[string]*model.Warehouse
	vOrder     []string
	wOrder     []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vehicles:   make(map[string]*model.Vehicle),
		warehouses: make(map[string]*model.Warehouse),
	}
}

// PutVehicle inserts or replaces a vehicle record.
func (s *MemoryStore) PutVehicle(v model.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vehicles[v.ID]; !ok {
		s.vOrder = append(s.vOrder, v.ID)
	}
	cp := v
	s.vehicles[v.ID] = &cp
}

// PutWarehouse inserts or replaces a warehouse record.
func (s *MemoryStore) PutWarehouse(w model.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.warehouses[w.ID]; !ok {
		s.wOrder = append(s.wOrder, w.ID)
	}
	cp := w
	s.warehouses[w.ID] = &cp
}

// ListVehicles implements registry.FleetRegistry.
func (s *MemoryStore) ListVehicles(context.Context) ([]model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Vehicle, 0, len(s.vOrder))
	for _, id := range s.vOrder {
		out = append(out, *s.vehicles[id])
	}
	return out, nil
}

// GetVehicle implements registry.FleetRegistry.
func (s *MemoryStore) GetVehicle(_ context.Context, id string) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, registry.ErrNotFound
	}
	return *v, nil
}

// UpdateVehicle implements registry.FleetRegistry.
func (s *MemoryStore) UpdateVehicle(_ context.Context, id string, upd registry.VehicleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return registry.ErrNotFound
	}
	if upd.Status != nil {
		v.Status = *upd.Status
	}
	if upd.CurrentWarehouseID != nil {
		v.CurrentWarehouseID = *upd.CurrentWarehouseID
	}
	return nil
}

// ListWarehouses implements registry.WarehouseRegistry.
func (s *MemoryStore) ListWarehouses(context.Context) ([]model.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Warehouse, 0, len(s.wOrder))
	for _, id := range s.wOrder {
		out = append(out, *s.warehouses[id])
	}
	return out, nil
}

// GetWarehouse implements registry.WarehouseRegistry.
func (s *MemoryStore) GetWarehouse(_ context.Context, id string) (model.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.warehouses[id]
	if !ok {
		return model.Warehouse{}, registry.ErrNotFound
	}
	return *w, nil
}

// UpdateWarehouse implements registry.WarehouseRegistry.
func (s *MemoryStore) UpdateWarehouse(_ context.Context, id string, upd registry.WarehouseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warehouses[id]
	if !ok {
		return registry.ErrNotFound
	}
	if upd.CurrentLoad != nil {
		w.CurrentLoad = *upd.CurrentLoad
	}
	if upd.IsActive != nil {
		w.IsActive = *upd.IsActive
	}
	return nil
}
