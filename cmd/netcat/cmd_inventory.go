package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/dnsaxfr"
	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// Credential file and output file locations, grounded on
// netcat_make_device_info_list.py's netcat.FILENAME_* constants.
const (
	loginCiscoPath     = "/etc/netcat/login_cisco.txt"
	loginF5Path        = "/etc/netcat/login_f5.txt"
	deviceNameListPath = "/etc/netcat/device_name_list.txt"
)

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Regenerate the device inventory from a DNS zone transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInventory()
		},
	}
}

func runInventory() error {
	localHostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("resolving local hostname: %w", err)
	}

	ownerNames, err := dnsaxfr.TransferZoneWithFallback()
	if err != nil {
		return err
	}

	ciscoUsername, ciscoPassword, err := inventory.ReadCredentialFile(loginCiscoPath)
	if err != nil {
		return err
	}
	f5Username, f5Password, err := inventory.ReadCredentialFile(loginF5Path)
	if err != nil {
		return err
	}

	creds := dnsaxfr.Credentials{
		CiscoUsername: ciscoUsername,
		CiscoPassword: ciscoPassword,
		F5Username:    f5Username,
		F5Password:    f5Password,
	}

	devices := dnsaxfr.Classify(ownerNames, creds, localHostname, inventory.SupportedDeviceTypes)

	sort.Slice(devices, func(i, j int) bool { return devices[i].DeviceName < devices[j].DeviceName })

	if err := inventory.Save(loadedSettings.GetInventoryPath(), devices); err != nil {
		return fmt.Errorf("writing device info list: %w", err)
	}

	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.DeviceName
	}
	if err := os.WriteFile(deviceNameListPath, []byte(strings.Join(names, "\n")), 0644); err != nil {
		return fmt.Errorf("writing device name list: %w", err)
	}

	util.Infof("Created device entries for %d devices", len(devices))
	return nil
}
