// Package storage defines the Storage Adapter contract shared by the
// docstore (Redis), relstore (Postgres), and fsstore (local filesystem)
// backends, grounded on the original's pluggable DB_INTERFACE
// (MongoDB / DynamoDB / FsDB).
package storage

import (
	"github.com/sebmaj/netcat-go/internal/codec"
	"github.com/sebmaj/netcat-go/internal/snapshot"
)

// Table names the three storage tables. info/backup key on
// (deviceName, snapshotTimestamp); status keys on
// (snapshotName, snapshotTimestamp).
type Table string

const (
	TableInfo   Table = "info"
	TableBackup Table = "backup"
	TableStatus Table = "status"
)

// Document is a single write to one table. Snapshot is populated for the
// info/backup tables (already compressed by the caller); Status carries an
// arbitrary JSON-serializable payload for the status table — a JobStatus
// for backup/deploy/upgrade jobs, or a DNS health-check result — written
// as-is, uncompressed.
type Document struct {
	DeviceName        string
	DeviceType        string
	SnapshotName      string
	SnapshotTimestamp int64

	Snapshot *codec.CompressedSnapshot
	Status   interface{}
}

// DeviceJobStatus is one device's outcome within a JobStatus document. The
// two flags are mutually exclusive and between them cover every selected
// device.
type DeviceJobStatus struct {
	DeviceType string `json:"device_type"`
	Successful bool   `json:"successful"`
	Failed     bool   `json:"failed"`
}

// JobStatus is the status-table document recorded once per fleet job.
type JobStatus struct {
	SnapshotName      string                     `json:"snapshot_name"`
	SnapshotTimestamp int64                      `json:"snapshot_timestamp"`
	DeviceInfo        map[string]DeviceJobStatus `json:"device_info_dict"`
}

// Adapter is the pluggable Storage Adapter: create tables/indexes,
// write a document (retrying on transient throttling), and load the most
// recent backup snapshot for a device.
type Adapter interface {
	// CreateTables provisions the backend's tables/indexes; idempotent
	// and safe under concurrent callers.
	CreateTables() error

	// Write persists doc under table. Implementations retry transient
	// throttling errors per WithRetry; other errors fail immediately.
	Write(table Table, doc Document) error

	// LoadLatestBackup returns the most recent backup-table snapshot for
	// deviceName, decompressed, or an empty snapshot if none exists.
	LoadLatestBackup(deviceName string) (*snapshot.DeviceSnapshot, error)
}
