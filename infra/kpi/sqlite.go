package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/1ndex13/logistic-app/core/metrics"
)

// SQLiteStore persists allocation and release history in a SQLite database.
// It implements the metrics sink interfaces so it can be configured like any
// other sink.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS allocation_history (
        event_id TEXT PRIMARY KEY,
        vehicle_id TEXT,
        warehouse_id TEXT,
        volume REAL,
        new_load REAL,
        applied INTEGER,
        error TEXT,
        ts INTEGER
    );
    CREATE TABLE IF NOT EXISTS release_history (
        event_id TEXT PRIMARY KEY,
        vehicle_id TEXT,
        warehouse_id TEXT,
        volume REAL,
        new_load REAL,
        forced INTEGER,
        error TEXT,
        ts INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// RecordAllocations implements core.MetricsSink.
func (s *SQLiteStore) RecordAllocations(records []core.AllocationRecord) error {
	for _, r := range records {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO allocation_history
            (event_id, vehicle_id, warehouse_id, volume, new_load, applied, error, ts)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.EventID, r.VehicleID, r.WarehouseID, r.Volume, r.NewLoad, r.Applied, r.Error, r.Time.Unix())
		if err != nil {
			return err
		}
	}
	return nil
}

// RecordReleases implements core.ReleaseRecorder.
func (s *SQLiteStore) RecordReleases(records []core.ReleaseRecord) error {
	for _, r := range records {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO release_history
            (event_id, vehicle_id, warehouse_id, volume, new_load, forced, error, ts)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.EventID, r.VehicleID, r.WarehouseID, r.Volume, r.NewLoad, r.Forced, r.Error, r.Time.Unix())
		if err != nil {
			return err
		}
	}
	return nil
}

// QueryAllocations returns the allocation history of a warehouse in the range
// [start,end], oldest first.
func (s *SQLiteStore) QueryAllocations(warehouseID string, start, end time.Time) ([]core.AllocationRecord, error) {
	rows, err := s.db.Query(`SELECT event_id, vehicle_id, warehouse_id, volume, new_load, applied, error, ts
        FROM allocation_history WHERE warehouse_id = ? AND ts >= ? AND ts <= ? ORDER BY ts`,
		warehouseID, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.AllocationRecord
	for rows.Next() {
		var r core.AllocationRecord
		var ts int64
		if err := rows.Scan(&r.EventID, &r.VehicleID, &r.WarehouseID, &r.Volume, &r.NewLoad, &r.Applied, &r.Error, &ts); err != nil {
			return nil, err
		}
		r.Time = time.Unix(ts, 0).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

var (
	_ core.MetricsSink     = (*SQLiteStore)(nil)
	_ core.ReleaseRecorder = (*SQLiteStore)(nil)
)
