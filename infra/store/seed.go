package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/1ndex13/logistic-app/core/model"
)

// Seed holds the initial fleet and warehouse records for a memory store.
type Seed struct {
	Vehicles   []model.Vehicle   `json:"vehicles"`
	Warehouses []model.Warehouse `json:"warehouses"`
}

// LoadSeed reads a JSON seed file and builds a populated memory store.
// Records are validated before insertion.
func LoadSeed(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	s := NewMemoryStore()
	for _, v := range seed.Vehicles {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("seed vehicle: %w", err)
		}
		s.PutVehicle(v)
	}
	for _, w := range seed.Warehouses {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("seed warehouse: %w", err)
		}
		s.PutWarehouse(w)
	}
	return s, nil
}
