package allocation

import "sync"

// warehouseLocks serializes load updates per warehouse. Locks are created on
// first use and held for the duration of a single apply or release, so
// unrelated warehouses stay independently concurrent.
type warehouseLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWarehouseLocks() *warehouseLocks {
	return &warehouseLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the given warehouse and returns its unlock
// function.
func (l *warehouseLocks) lock(warehouseID string) func() {
	l.mu.Lock()
	m, ok := l.locks[warehouseID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[warehouseID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
