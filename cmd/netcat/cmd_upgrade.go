package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/fleet"
	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/internal/selector"
	"github.com/sebmaj/netcat-go/internal/vendor"
	"github.com/sebmaj/netcat-go/pkg/audit"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// requestedSoftwareVersion is the PAN-OS target version, transcribed
// from netcat_upgrade.py's REQUESTED_SOFTWARE_VERSION.
const requestedSoftwareVersion = "9.0.7"

func newUpgradeCmd() *cobra.Command {
	var (
		sel     selectionFlags
		upgrade bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Download (and optionally install) Palo Alto software",
		RunE: func(cmd *cobra.Command, args []string) error {
			selection, err := sel.resolve()
			if err != nil {
				return err
			}
			if !upgrade {
				util.Info("Download software only mode enabled")
			}
			return runUpgrade(selection, upgrade)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVarP(&upgrade, "upgrade", "u", false, "perform the upgrade; otherwise download software only")
	return cmd
}

func runUpgrade(selection selector.Selection, upgrade bool) error {
	devices, err := inventory.Load(loadedSettings.GetInventoryPath())
	if err != nil {
		return err
	}

	requested := selector.Resolve(devices, selection)
	if len(requested) == 0 {
		return fmt.Errorf("no valid device names requested")
	}
	util.Infof("Executing upgrade for %d device(s): %v", len(requested), requested)

	byName := make(map[string]inventory.Device, len(devices))
	for _, d := range devices {
		byName[d.DeviceName] = d
	}

	job := func(deviceName string) error {
		device := byName[deviceName]
		start := time.Now()
		event := audit.NewEvent(deviceName, string(audit.EventTypeUpgrade)).WithDeviceType(string(device.DeviceType))

		err := upgradeOneDevice(device, upgrade)

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
	reportFinalStatus(result)
	return nil
}

// upgradeOneDevice implements upgrade_software: Palo Alto only, download
// first, then snapshot and install only if upgrade was requested.
func upgradeOneDevice(device inventory.Device, upgrade bool) error {
	if device.DeviceType != inventory.DeviceTypePaloAlto {
		return fmt.Errorf("unsupported device type %q for software upgrade", device.DeviceType)
	}

	sess, adapter, err := openDeviceSession(device)
	if err != nil {
		return err
	}
	defer sess.Close()

	upgrader, ok := adapter.(vendor.SoftwareUpgrader)
	if !ok {
		return fmt.Errorf("adapter for %q does not support software upgrades", device.DeviceType)
	}

	if err := upgrader.DownloadSoftware(sess, requestedSoftwareVersion); err != nil {
		return fmt.Errorf("downloading software: %w", err)
	}

	if !upgrade {
		return nil
	}

	if creator, ok := adapter.(vendor.SnapshotCreator); ok {
		if err := creator.CreateSnapshot(sess); err != nil {
			return fmt.Errorf("creating pre-upgrade snapshot: %w", err)
		}
	}

	if err := upgrader.UpgradeSoftware(sess, requestedSoftwareVersion); err != nil {
		return fmt.Errorf("upgrading software: %w", err)
	}
	return nil
}
