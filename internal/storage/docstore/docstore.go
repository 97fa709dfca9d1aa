// Package docstore implements the Storage Adapter document-store backend
// over Redis, standing in for the original's MongoDB backend (no Mongo
// driver exists anywhere in the example pack) and grounded on the
// teacher's own Redis usage in pkg/device/configdb.go (redis.NewClient,
// a single context.Background() held on the client struct).
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/sebmaj/netcat-go/internal/codec"
	"github.com/sebmaj/netcat-go/internal/snapshot"
	"github.com/sebmaj/netcat-go/internal/storage"
)

// Store is a Redis-backed storage.Adapter. Each document is a JSON string
// value keyed by table/device/timestamp; a per-device sorted set (scored
// by snapshotTimestamp) provides the descending-timestamp index
// LoadLatestBackup needs, and info additionally indexes by deviceType.
type Store struct {
	client *redis.Client
	ctx    context.Context
}

var _ storage.Adapter = (*Store)(nil)

// New connects to the Redis instance at addr.
func New(addr string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ctx:    context.Background(),
	}
}

// CreateTables has nothing to provision: Redis keys are created on first
// write. Ping confirms the backend is reachable.
func (s *Store) CreateTables() error {
	return s.client.Ping(s.ctx).Err()
}

func recordKey(table storage.Table, partitionKey string, timestamp int64) string {
	return fmt.Sprintf("netcat:%s:record:%s:%d", table, partitionKey, timestamp)
}

func indexKey(table storage.Table, partitionKey string) string {
	return fmt.Sprintf("netcat:%s:index:%s", table, partitionKey)
}

func typeIndexKey(deviceType string) string {
	return fmt.Sprintf("netcat:info:bytype:%s", deviceType)
}

// Write persists doc under table, retrying on Redis errors up to
// storage.MaxWriteAttempts (every non-nil Redis error is treated as
// potentially transient, matching the original's broad provisioned-
// throughput catch-all).
func (s *Store) Write(table storage.Table, doc storage.Document) error {
	switch table {
	case storage.TableStatus:
		return s.writeStatus(doc)
	case storage.TableInfo, storage.TableBackup:
		return s.writeSnapshot(table, doc)
	default:
		return fmt.Errorf("docstore: unknown table %q", table)
	}
}

func (s *Store) writeStatus(doc storage.Document) error {
	payload, err := json.Marshal(doc.Status)
	if err != nil {
		return err
	}
	key := recordKey(storage.TableStatus, doc.SnapshotName, doc.SnapshotTimestamp)
	idx := indexKey(storage.TableStatus, doc.SnapshotName)

	return storage.WithRetry(doc.SnapshotName, "write:status", isRetryable, func() error {
		if err := s.client.Set(s.ctx, key, payload, 0).Err(); err != nil {
			return err
		}
		return s.client.ZAdd(s.ctx, idx, &redis.Z{Score: float64(doc.SnapshotTimestamp), Member: doc.SnapshotTimestamp}).Err()
	})
}

func (s *Store) writeSnapshot(table storage.Table, doc storage.Document) error {
	payload, err := json.Marshal(doc.Snapshot)
	if err != nil {
		return err
	}
	key := recordKey(table, doc.DeviceName, doc.SnapshotTimestamp)
	idx := indexKey(table, doc.DeviceName)

	return storage.WithRetry(doc.DeviceName, "write:"+string(table), isRetryable, func() error {
		if err := s.client.Set(s.ctx, key, payload, 0).Err(); err != nil {
			return err
		}
		if err := s.client.ZAdd(s.ctx, idx, &redis.Z{Score: float64(doc.SnapshotTimestamp), Member: doc.SnapshotTimestamp}).Err(); err != nil {
			return err
		}
		if table == storage.TableInfo && doc.DeviceType != "" {
			member := fmt.Sprintf("%s|%d", doc.DeviceName, doc.SnapshotTimestamp)
			return s.client.ZAdd(s.ctx, typeIndexKey(doc.DeviceType), &redis.Z{Score: float64(doc.SnapshotTimestamp), Member: member}).Err()
		}
		return nil
	})
}

// LoadLatestBackup returns the highest-timestamped backup-table snapshot
// for deviceName, or an empty snapshot if none exists.
func (s *Store) LoadLatestBackup(deviceName string) (*snapshot.DeviceSnapshot, error) {
	timestamps, err := s.client.ZRevRange(s.ctx, indexKey(storage.TableBackup, deviceName), 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(timestamps) == 0 {
		return &snapshot.DeviceSnapshot{DeviceName: deviceName}, nil
	}

	var ts int64
	if _, err := fmt.Sscanf(timestamps[0], "%d", &ts); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(s.ctx, recordKey(storage.TableBackup, deviceName, ts)).Result()
	if err != nil {
		if err == redis.Nil {
			return &snapshot.DeviceSnapshot{DeviceName: deviceName}, nil
		}
		return nil, err
	}

	var compressed codec.CompressedSnapshot
	if err := json.Unmarshal([]byte(raw), &compressed); err != nil {
		return nil, err
	}
	return codec.DecompressSnapshot(&compressed)
}

// isRetryable treats every Redis-layer error as potentially transient
// (connection reset, OOM, maxmemory) except redis.Nil, which means "key
// not found" and should never be retried.
func isRetryable(err error) bool {
	return err != nil && err != redis.Nil
}
