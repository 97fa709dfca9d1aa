// Package relstore implements the Storage Adapter relational-store
// backend over Postgres, standing in for the original's DynamoDB backend
// (grounded on r3e-network-service_layer's go.mod, the pack repo that
// pulls in jmoiron/sqlx and lib/pq). Each table keeps its key columns
// alongside a JSONB document column, and Write retries lib/pq errors
// classed as transient exactly like the original's
// ProvisionedThroughputExceededException/ThrottlingException backoff loop.
package relstore

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sebmaj/netcat-go/internal/codec"
	"github.com/sebmaj/netcat-go/internal/snapshot"
	"github.com/sebmaj/netcat-go/internal/storage"
)

// Store is a Postgres-backed storage.Adapter.
type Store struct {
	db *sqlx.DB
}

var _ storage.Adapter = (*Store)(nil)

// Open connects to the Postgres instance described by dataSourceName
// (a libpq connection string/URL).
func Open(dataSourceName string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("relstore: connect: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateTables provisions the three tables and info's secondary index.
// CREATE TABLE/INDEX IF NOT EXISTS makes this idempotent under concurrent
// callers, matching createTables()'s "must tolerate concurrent creation"
// contract.
func (s *Store) CreateTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS backup (
			device_name TEXT NOT NULL,
			snapshot_timestamp BIGINT NOT NULL,
			document JSONB NOT NULL,
			PRIMARY KEY (device_name, snapshot_timestamp)
		)`,
		`CREATE TABLE IF NOT EXISTS info (
			device_name TEXT NOT NULL,
			device_type TEXT NOT NULL,
			snapshot_timestamp BIGINT NOT NULL,
			document JSONB NOT NULL,
			PRIMARY KEY (device_name, snapshot_timestamp)
		)`,
		`CREATE INDEX IF NOT EXISTS info_device_type_timestamp_idx ON info (device_type, snapshot_timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS status (
			snapshot_name TEXT NOT NULL,
			snapshot_timestamp BIGINT NOT NULL,
			document JSONB NOT NULL,
			PRIMARY KEY (snapshot_name, snapshot_timestamp)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("relstore: create tables: %w", err)
		}
	}
	return nil
}

// Write upserts doc into table, retrying transient Postgres errors up to
// storage.MaxWriteAttempts.
func (s *Store) Write(table storage.Table, doc storage.Document) error {
	switch table {
	case storage.TableStatus:
		return s.writeStatus(doc)
	case storage.TableBackup:
		return s.writeSnapshot("backup", doc, false)
	case storage.TableInfo:
		return s.writeSnapshot("info", doc, true)
	default:
		return fmt.Errorf("relstore: unknown table %q", table)
	}
}

func (s *Store) writeStatus(doc storage.Document) error {
	payload, err := json.Marshal(doc.Status)
	if err != nil {
		return err
	}
	const q = `INSERT INTO status (snapshot_name, snapshot_timestamp, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_name, snapshot_timestamp) DO UPDATE SET document = EXCLUDED.document`

	return storage.WithRetry(doc.SnapshotName, "write:status", isRetryable, func() error {
		_, err := s.db.Exec(q, doc.SnapshotName, doc.SnapshotTimestamp, payload)
		return err
	})
}

func (s *Store) writeSnapshot(table string, doc storage.Document, withDeviceType bool) error {
	payload, err := json.Marshal(doc.Snapshot)
	if err != nil {
		return err
	}

	var q string
	var args []interface{}
	if withDeviceType {
		q = `INSERT INTO info (device_name, device_type, snapshot_timestamp, document)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (device_name, snapshot_timestamp) DO UPDATE SET document = EXCLUDED.document, device_type = EXCLUDED.device_type`
		args = []interface{}{doc.DeviceName, doc.DeviceType, doc.SnapshotTimestamp, payload}
	} else {
		q = fmt.Sprintf(`INSERT INTO %s (device_name, snapshot_timestamp, document)
			VALUES ($1, $2, $3)
			ON CONFLICT (device_name, snapshot_timestamp) DO UPDATE SET document = EXCLUDED.document`, table)
		args = []interface{}{doc.DeviceName, doc.SnapshotTimestamp, payload}
	}

	return storage.WithRetry(doc.DeviceName, "write:"+table, isRetryable, func() error {
		_, err := s.db.Exec(q, args...)
		return err
	})
}

// LoadLatestBackup returns the highest-timestamped backup row for
// deviceName, decompressed, or an empty snapshot if none exists.
func (s *Store) LoadLatestBackup(deviceName string) (*snapshot.DeviceSnapshot, error) {
	var raw []byte
	err := s.db.Get(&raw, `SELECT document FROM backup WHERE device_name = $1 ORDER BY snapshot_timestamp DESC LIMIT 1`, deviceName)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return &snapshot.DeviceSnapshot{DeviceName: deviceName}, nil
		}
		return nil, err
	}

	var compressed codec.CompressedSnapshot
	if err := json.Unmarshal(raw, &compressed); err != nil {
		return nil, err
	}
	return codec.DecompressSnapshot(&compressed)
}

// isRetryable classifies lib/pq errors in the "insufficient resources" and
// "lock not available" classes as transient, the Postgres-side analogue
// of DynamoDB's ProvisionedThroughputExceededException/ThrottlingException.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	switch pqErr.Code.Class() {
	case "53": // insufficient_resources
		return true
	}
	return pqErr.Code == "55P03" // lock_not_available
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
