package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVehicleValidate(t *testing.T) {
	cases := []struct {
		name    string
		vehicle Vehicle
		wantErr bool
	}{
		{"valid", Vehicle{ID: "v1", Volume: 10, CapacityTons: 2}, false},
		{"missing id", Vehicle{Volume: 10}, true},
		{"negative volume", Vehicle{ID: "v1", Volume: -1}, true},
		{"negative capacity", Vehicle{ID: "v1", CapacityTons: -1}, true},
		{"zero volume ok", Vehicle{ID: "v1"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.vehicle.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVehicleIsAllocatable(t *testing.T) {
	assert.True(t, Vehicle{Status: StatusAvailable}.IsAllocatable())
	assert.False(t, Vehicle{Status: StatusInUse}.IsAllocatable())
	assert.False(t, Vehicle{Status: StatusMaintenance}.IsAllocatable())
	assert.False(t, Vehicle{Status: StatusBroken}.IsAllocatable())
}

func TestWarehouseValidate(t *testing.T) {
	assert.NoError(t, Warehouse{ID: "w1", Capacity: 100}.Validate())
	assert.Error(t, Warehouse{Capacity: 100}.Validate())
	assert.Error(t, Warehouse{ID: "w1", Capacity: -1}.Validate())
	assert.Error(t, Warehouse{ID: "w1", Capacity: 10, CurrentLoad: -1}.Validate())
}

func TestWarehouseFreeCapacity(t *testing.T) {
	w := Warehouse{Capacity: 100, CurrentLoad: 30}
	assert.Equal(t, 70.0, w.FreeCapacity())
}

func TestWarehouseUtilization(t *testing.T) {
	assert.Equal(t, 0.25, Warehouse{Capacity: 100, CurrentLoad: 25}.Utilization())
	assert.Equal(t, 0.0, Warehouse{Capacity: 100}.Utilization())
	// No capacity means nothing can be accepted.
	assert.Equal(t, 1.0, Warehouse{Capacity: 0}.Utilization())
}
