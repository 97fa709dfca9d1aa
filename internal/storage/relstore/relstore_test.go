//go:build integration

package relstore

import (
	"errors"
	"os"
	"testing"

	"github.com/sebmaj/netcat-go/internal/codec"
	"github.com/sebmaj/netcat-go/internal/snapshot"
	"github.com/sebmaj/netcat-go/internal/storage"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("NETCAT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NETCAT_TEST_POSTGRES_DSN not set, skipping Postgres integration test")
	}
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.CreateTables(); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	return s
}

func TestWriteAndLoadLatestBackupRoundTrip(t *testing.T) {
	s := testStore(t)
	defer s.Close()

	older := &snapshot.DeviceSnapshot{
		DeviceName: "vf1sw1", DeviceType: "cisco_switch", SnapshotTimestamp: 5000,
		Formats: []snapshot.FormatOutputs{
			{FormatName: "backup_running", Commands: []snapshot.CommandOutput{{Command: "show running-config", Output: "hostname VF1SW1\n"}}},
		},
	}
	newer := &snapshot.DeviceSnapshot{
		DeviceName: "vf1sw1", DeviceType: "cisco_switch", SnapshotTimestamp: 6000,
		Formats: []snapshot.FormatOutputs{
			{FormatName: "backup_running", Commands: []snapshot.CommandOutput{{Command: "show running-config", Output: "hostname VF1SW1-NEW\n"}}},
		},
	}

	if err := s.Write(storage.TableBackup, storage.Document{DeviceName: "vf1sw1", SnapshotTimestamp: 5000, Snapshot: codec.CompressSnapshot(older)}); err != nil {
		t.Fatalf("Write (ts=5000): %v", err)
	}
	if err := s.Write(storage.TableBackup, storage.Document{DeviceName: "vf1sw1", SnapshotTimestamp: 6000, Snapshot: codec.CompressSnapshot(newer)}); err != nil {
		t.Fatalf("Write (ts=6000): %v", err)
	}

	got, err := s.LoadLatestBackup("vf1sw1")
	if err != nil {
		t.Fatalf("LoadLatestBackup: %v", err)
	}
	if got.SnapshotTimestamp != 6000 {
		t.Errorf("expected newest snapshot (ts=6000), got ts=%d", got.SnapshotTimestamp)
	}
}

func TestLoadLatestBackupMissingDeviceReturnsEmpty(t *testing.T) {
	s := testStore(t)
	defer s.Close()

	got, err := s.LoadLatestBackup("no-such-device")
	if err != nil {
		t.Fatalf("LoadLatestBackup: %v", err)
	}
	if len(got.Formats) != 0 {
		t.Errorf("expected empty snapshot, got %+v", got)
	}
}

func TestWriteInfoWithDeviceType(t *testing.T) {
	s := testStore(t)
	defer s.Close()

	snap := &snapshot.DeviceSnapshot{DeviceName: "vf1sw2", DeviceType: "cisco_switch", SnapshotTimestamp: 7000}
	err := s.Write(storage.TableInfo, storage.Document{DeviceName: "vf1sw2", DeviceType: "cisco_switch", SnapshotTimestamp: 7000, Snapshot: codec.CompressSnapshot(snap)})
	if err != nil {
		t.Fatalf("Write info: %v", err)
	}
}

func TestIsRetryableRejectsNonPqErrors(t *testing.T) {
	if isRetryable(nil) {
		t.Error("nil error must not be retryable")
	}
	if isRetryable(errors.New("connection refused")) {
		t.Error("non-pq error must not be retryable")
	}
}
