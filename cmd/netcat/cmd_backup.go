package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/changedetect"
	"github.com/sebmaj/netcat-go/internal/codec"
	"github.com/sebmaj/netcat-go/internal/fleet"
	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/internal/selector"
	"github.com/sebmaj/netcat-go/internal/snapshot"
	"github.com/sebmaj/netcat-go/internal/storage"
	"github.com/sebmaj/netcat-go/pkg/audit"
	"github.com/sebmaj/netcat-go/pkg/util"
)

func newBackupCmd() *cobra.Command {
	var (
		sel         selectionFlags
		forceBackup bool
		testRun     bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Retrieve backup and command output data from devices and save it to storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.resolve()
			if err != nil {
				return err
			}
			return runBackup(selection, forceBackup, testRun)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVarP(&forceBackup, "force-backup", "F", false, "save a backup even if no change is detected")
	cmd.Flags().BoolVarP(&testRun, "test-run", "T", false, "retrieve device data but do not write it to storage")
	return cmd
}

func runBackup(selection selector.Selection, forceBackup, testRun bool) error {
	timestamp := time.Now().Unix()

	devices, err := inventory.Load(loadedSettings.GetInventoryPath())
	if err != nil {
		return err
	}

	requested := selector.Resolve(devices, selection)
	if len(requested) == 0 {
		return fmt.Errorf("no valid device names requested")
	}
	util.Infof("Executing backup for %d device(s): %v", len(requested), requested)

	byName := make(map[string]inventory.Device, len(devices))
	for _, d := range devices {
		byName[d.DeviceName] = d
	}

	var store storage.Adapter
	if !testRun {
		store, err = openStorage(loadedSettings)
		if err != nil {
			return err
		}
	}

	jobStatus := make(map[string]storage.DeviceJobStatus, len(requested))
	var jobStatusMu sync.Mutex

	job := func(deviceName string) error {
		device := byName[deviceName]
		start := time.Now()
		event := audit.NewEvent(deviceName, string(audit.EventTypeBackup)).WithDeviceType(string(device.DeviceType)).WithSnapshotTimestamp(timestamp)

		err := backupOneDevice(device, timestamp, forceBackup, testRun, store)

		jobStatusMu.Lock()
		jobStatus[deviceName] = storage.DeviceJobStatus{DeviceType: string(device.DeviceType), Successful: err == nil, Failed: err != nil}
		jobStatusMu.Unlock()

		event.WithDuration(time.Since(start))
		if err != nil {
			event.WithError(err)
		} else {
			event.WithSuccess()
		}
		audit.Log(event)
		return err
	}

	result := fleet.Run(requested, maxWorkers(), singleWorker, job)

	if !testRun {
		doc := storage.Document{
			SnapshotName:      "info_status",
			SnapshotTimestamp: timestamp,
			Status: storage.JobStatus{
				SnapshotName:      "info_status",
				SnapshotTimestamp: timestamp,
				DeviceInfo:        jobStatus,
			},
		}
		if err := store.Write(storage.TableStatus, doc); err != nil {
			util.Errorf("saving final backup status: %v", err)
		}
	}

	reportFinalStatus(result)
	return nil
}

// backupOneDevice implements cli_process/get_device_data/
// save_device_data for a single device: open a hardened session, capture
// its full catalog, detect a config change against the latest stored
// backup, and write the backup/info documents.
func backupOneDevice(device inventory.Device, timestamp int64, forceBackup, testRun bool, store storage.Adapter) error {
	sess, adapter, err := openDeviceSession(device)
	if err != nil {
		return err
	}
	defer sess.Close()

	snap, err := snapshot.Build(sess, device.DeviceName, string(device.DeviceType), timestamp, adapter.Catalog())
	if err != nil {
		return err
	}

	if testRun {
		return nil
	}

	previous, err := store.LoadLatestBackup(device.DeviceName)
	if err != nil {
		util.WithDevice(device.DeviceName).Warnf("loading previous backup: %v", err)
		previous = nil
	}

	detected := changedetect.Detect(device.DeviceName, previous, snap)

	if detected.Changed || forceBackup {
		if forceBackup {
			util.WithDevice(device.DeviceName).Info("Option 'force backup' set, saving configuration regardless of detected changes")
		}
		backupSnap := &snapshot.DeviceSnapshot{
			SnapshotTimestamp: timestamp,
			DeviceName:        device.DeviceName,
			DeviceType:        string(device.DeviceType),
			Formats:           snap.BackupFormats(),
		}
		if err := store.Write(storage.TableBackup, storage.Document{
			DeviceName:        device.DeviceName,
			DeviceType:        string(device.DeviceType),
			SnapshotTimestamp: timestamp,
			Snapshot:          codec.CompressSnapshot(backupSnap),
		}); err != nil {
			return fmt.Errorf("writing backup document: %w", err)
		}
	}

	infoSnap := &snapshot.DeviceSnapshot{
		SnapshotTimestamp: timestamp,
		DeviceName:        device.DeviceName,
		DeviceType:        string(device.DeviceType),
		Formats:           snap.InfoFormats(),
	}
	if err := store.Write(storage.TableInfo, storage.Document{
		DeviceName:        device.DeviceName,
		DeviceType:        string(device.DeviceType),
		SnapshotTimestamp: timestamp,
		Snapshot:          codec.CompressSnapshot(infoSnap),
	}); err != nil {
		return fmt.Errorf("writing info document: %w", err)
	}

	return nil
}
