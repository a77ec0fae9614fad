package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1ndex13/logistic-app/core/model"
	"github.com/1ndex13/logistic-app/core/registry"
)

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetVehicle(context.Background(), "ghost")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	_, err = s.GetWarehouse(context.Background(), "ghost")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestMemoryStore_PutAndUpdateVehicle(t *testing.T) {
	s := NewMemoryStore()
	s.PutVehicle(model.Vehicle{ID: "v1", Volume: 10, Status: model.StatusAvailable})

	inUse := model.StatusInUse
	wid := "w1"
	err := s.UpdateVehicle(context.Background(), "v1", registry.VehicleUpdate{Status: &inUse, CurrentWarehouseID: &wid})
	require.NoError(t, err)

	v, err := s.GetVehicle(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInUse, v.Status)
	assert.Equal(t, "w1", v.CurrentWarehouseID)

	// A pointer to the empty string clears the assignment.
	none := ""
	avail := model.StatusAvailable
	require.NoError(t, s.UpdateVehicle(context.Background(), "v1", registry.VehicleUpdate{Status: &avail, CurrentWarehouseID: &none}))
	v, _ = s.GetVehicle(context.Background(), "v1")
	assert.Empty(t, v.CurrentWarehouseID)
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	s := NewMemoryStore()
	load := 5.0
	assert.ErrorIs(t, s.UpdateWarehouse(context.Background(), "ghost", registry.WarehouseUpdate{CurrentLoad: &load}), registry.ErrNotFound)
	st := model.StatusInUse
	assert.ErrorIs(t, s.UpdateVehicle(context.Background(), "ghost", registry.VehicleUpdate{Status: &st}), registry.ErrNotFound)
}

func TestMemoryStore_ListKeepsInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	for _, id := range []string{"w3", "w1", "w2"} {
		s.PutWarehouse(model.Warehouse{ID: id, Capacity: 100, IsActive: true})
	}
	// Replacing a record must not change its position.
	s.PutWarehouse(model.Warehouse{ID: "w1", Capacity: 200, IsActive: true})

	ws, err := s.ListWarehouses(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(ws))
	for _, w := range ws {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"w3", "w1", "w2"}, ids)
	assert.Equal(t, 200.0, ws[1].Capacity)
}

func TestMemoryStore_ListReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	s.PutVehicle(model.Vehicle{ID: "v1", Volume: 10})

	vs, err := s.ListVehicles(context.Background())
	require.NoError(t, err)
	vs[0].Volume = 99

	v, err := s.GetVehicle(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.Volume)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	data := `{
		"vehicles": [
			{"id": "v1", "license_plate": "A123BC", "kind": "TRUCK", "volume": 20, "status": "AVAILABLE", "is_active": true}
		],
		"warehouses": [
			{"id": "w1", "name": "Central", "capacity": 100, "current_load": 10, "is_active": true}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	s, err := LoadSeed(path)
	require.NoError(t, err)

	v, err := s.GetVehicle(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, model.KindTruck, v.Kind)
	assert.Equal(t, 20.0, v.Volume)

	w, err := s.GetWarehouse(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "Central", w.Name)
	assert.Equal(t, 10.0, w.CurrentLoad)
}

func TestLoadSeed_RejectsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vehicles":[{"id":"","volume":1}]}`), 0o600))
	_, err := LoadSeed(path)
	assert.Error(t, err)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
