// Package fsstore implements the Storage Adapter local-filesystem backend,
// grounded directly on netcat_fsdb.py ("for experimental purposes
// only..."): one directory per table under a configured root, one JSON
// file per record. The original's write() keyed every filename off
// document["device_name"], which only exists for backup/info documents —
// status documents carry snapshot_name instead, so this port keys status
// filenames on SnapshotName. LoadLatestBackup preserves the original's
// always-empty behavior verbatim: the filesystem backend never actually
// implemented retrieval.
package fsstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sebmaj/netcat-go/internal/snapshot"
	"github.com/sebmaj/netcat-go/internal/storage"
)

// DefaultRoot mirrors the original's hardcoded DB_PATH.
const DefaultRoot = "/tmp/netcat/"

// Store is a filesystem-backed storage.Adapter.
type Store struct {
	Root string
}

var _ storage.Adapter = (*Store)(nil)

// New builds a Store rooted at root (DefaultRoot if empty).
func New(root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{Root: root}
}

func (s *Store) tableDir(table storage.Table) string {
	return filepath.Join(s.Root, string(table))
}

// CreateTables creates the three table directories, tolerating concurrent
// creation via MkdirAll's idempotence.
func (s *Store) CreateTables() error {
	for _, table := range []storage.Table{storage.TableStatus, storage.TableInfo, storage.TableBackup} {
		if err := os.MkdirAll(s.tableDir(table), 0o755); err != nil {
			return fmt.Errorf("fsstore: create table dir %s: %w", table, err)
		}
	}
	return nil
}

// Write serializes doc to JSON and writes it under
// <root>/<table>/<partitionKey>__<snapshotTimestamp>. Info/backup
// snapshots are written already-compressed by the caller; status
// documents are written as-is. The filesystem backend has no throttling
// concept, so Write never retries.
func (s *Store) Write(table storage.Table, doc storage.Document) error {
	var partitionKey string
	var payload interface{}

	switch table {
	case storage.TableStatus:
		partitionKey = doc.SnapshotName
		payload = doc.Status
	case storage.TableInfo, storage.TableBackup:
		partitionKey = doc.DeviceName
		payload = doc.Snapshot
	default:
		return fmt.Errorf("fsstore: unknown table %q", table)
	}

	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s__%d", partitionKey, doc.SnapshotTimestamp)
	return os.WriteFile(filepath.Join(s.tableDir(table), name), data, 0o644)
}

// LoadLatestBackup always returns an empty snapshot — preserved verbatim
// from netcat_fsdb.py's load_latest_backup, which never implemented
// retrieval ("for experimental purposes only...").
func (s *Store) LoadLatestBackup(deviceName string) (*snapshot.DeviceSnapshot, error) {
	return &snapshot.DeviceSnapshot{DeviceName: deviceName}, nil
}
