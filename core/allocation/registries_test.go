package allocation

import (
	"context"
	"sync"

	"github.com/1ndex13/logistic-app/core/model"
	"github.com/1ndex13/logistic-app/core/registry"
)

// fakeStore backs both registries in tests. Update hooks inject failures on
// specific writes so the compensation paths can be exercised.
type fakeStore struct {
	mu         sync.Mutex
	vehicles   map[string]model.Vehicle
	warehouses map[string]model.Warehouse
	vOrder     []string
	wOrder     []string

	vehicleGetHook     func(id string)
	vehicleUpdateErr   func(id string, upd registry.VehicleUpdate) error
	warehouseUpdateErr func(id string, upd registry.WarehouseUpdate) error

	warehouseWrites int
}

func newFakeStore(vehicles []model.Vehicle, warehouses []model.Warehouse) *fakeStore {
	s := &fakeStore{
		vehicles:   make(map[string]model.Vehicle),
		warehouses: make(map[string]model.Warehouse),
	}
	for _, v := range vehicles {
		s.vehicles[v.ID] = v
		s.vOrder = append(s.vOrder, v.ID)
	}
	for _, w := range warehouses {
		s.warehouses[w.ID] = w
		s.wOrder = append(s.wOrder, w.ID)
	}
	return s
}

func (s *fakeStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Vehicle, 0, len(s.vOrder))
	for _, id := range s.vOrder {
		out = append(out, s.vehicles[id])
	}
	return out, nil
}

func (s *fakeStore) GetVehicle(ctx context.Context, id string) (model.Vehicle, error) {
	// The hook runs outside the store mutex so it may block without
	// stalling other registry calls.
	if s.vehicleGetHook != nil {
		s.vehicleGetHook(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, registry.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) UpdateVehicle(ctx context.Context, id string, upd registry.VehicleUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vehicleUpdateErr != nil {
		if err := s.vehicleUpdateErr(id, upd); err != nil {
			return err
		}
	}
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
	s.vehicles[id] = v
	return nil
}

func (s *fakeStore) ListWarehouses(ctx context.Context) ([]model.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Warehouse, 0, len(s.wOrder))
	for _, id := range s.wOrder {
		out = append(out, s.warehouses[id])
	}
	return out, nil
}

func (s *fakeStore) GetWarehouse(ctx context.Context, id string) (model.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warehouses[id]
	if !ok {
		return model.Warehouse{}, registry.ErrNotFound
	}
	return w, nil
}

func (s *fakeStore) UpdateWarehouse(ctx context.Context, id string, upd registry.WarehouseUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouseWrites++
	if s.warehouseUpdateErr != nil {
		if err := s.warehouseUpdateErr(id, upd); err != nil {
			return err
		}
	}
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
	s.warehouses[id] = w
	return nil
}

func (s *fakeStore) vehicle(id string) model.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicles[id]
}

func (s *fakeStore) warehouse(id string) model.Warehouse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warehouses[id]
}

var (
	_ registry.FleetRegistry     = (*fakeStore)(nil)
	_ registry.WarehouseRegistry = (*fakeStore)(nil)
)
