package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/fleet"
	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/internal/selector"
	"github.com/sebmaj/netcat-go/internal/session"
	"github.com/sebmaj/netcat-go/internal/snippet"
	"github.com/sebmaj/netcat-go/internal/vendor"
	"github.com/sebmaj/netcat-go/pkg/audit"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// azureWANCredentials are the fixed service-account credentials for the
// --ip-address ad-hoc deployment path, used only when a Palo Alto Azure
// WAN firewall is reachable on the local management subnet ahead of its
// DNS name being inventoried — transcribed from netcat_deploy.py's
// hardcoded device_info_list entry for that path.
const (
	azureWANUsername = "azurewan"
	azureWANPassword = "azurewan"
)

func newDeployCmd() *cobra.Command {
	var (
		sel              selectionFlags
		nonInteractive   bool
		noCommit         bool
		snippetFilenames []string
		ipAddress        string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Push a configuration snippet to devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var requested []string
			var devices []inventory.Device

			if ipAddress != "" {
				if !util.IsValidIPv4(ipAddress) {
					return fmt.Errorf("invalid IP address: %s", ipAddress)
				}
				devices = []inventory.Device{{
					DeviceName: ipAddress,
					DeviceType: inventory.DeviceTypePaloAlto,
					Auth:       inventory.AuthPassword,
					Username:   azureWANUsername,
					Password:   azureWANPassword,
				}}
				requested = []string{ipAddress}
			} else {
				selection, err := sel.resolve()
				if err != nil {
					return err
				}

				devices, err = inventory.Load(loadedSettings.GetInventoryPath())
				if err != nil {
					return err
				}
				requested = selector.Resolve(devices, selection)
				if len(requested) == 0 {
					return fmt.Errorf("no valid device names requested")
				}
			}

			snip, err := snippet.Load(snippetFilenames)
			if err != nil {
				return err
			}

			if !nonInteractive {
				if !confirmDeploymentValidity(snip.Text(), requested) {
					return fmt.Errorf("deployment not confirmed")
				}
			}

			return runDeploy(devices, requested, snip, noCommit)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVarP(&nonInteractive, "non-interactive", "n", false, "disable interactive confirmation")
	cmd.Flags().BoolVarP(&noCommit, "no-commit", "c", false, "do not commit configuration on Palo Alto devices")
	cmd.Flags().StringSliceVarP(&snippetFilenames, "snippet", "s", nil, "configuration snippet file(s)")
	cmd.Flags().StringVarP(&ipAddress, "ip-address", "i", "", "deploy to a device by IP address (local-subnet Palo Alto Azure WAN deployments only)")
	cmd.MarkFlagRequired("snippet")
	return cmd
}

func runDeploy(devices []inventory.Device, requested []string, snip *snippet.Snippet, noCommit bool) error {
	util.Infof("Executing deployment for %d device(s): %v", len(requested), requested)

	byName := make(map[string]inventory.Device, len(devices))
	for _, d := range devices {
		byName[d.DeviceName] = d
	}

	job := func(deviceName string) error {
		device := byName[deviceName]
		start := time.Now()
		event := audit.NewEvent(deviceName, string(audit.EventTypeDeploy)).WithDeviceType(string(device.DeviceType))

		err := deployOneDevice(device, snip, noCommit)

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

// deployOneDevice implements deploy_config_snippet for a single device:
// only Palo Alto, Cisco router, and Cisco switch adapters support
// snippet deployment.
func deployOneDevice(device inventory.Device, snip *snippet.Snippet, noCommit bool) error {
	switch device.DeviceType {
	case inventory.DeviceTypePaloAlto, inventory.DeviceTypeCiscoRouter, inventory.DeviceTypeCiscoSwitch:
	default:
		return fmt.Errorf("unsupported device type %q for deployment", device.DeviceType)
	}

	sess, adapter, err := openDeviceSession(device)
	if err != nil {
		return err
	}
	defer sess.Close()

	placeholders, err := resolvePlaceholders(sess, adapter, device, snip)
	if err != nil {
		return err
	}

	rendered, err := snip.Render(placeholders)
	if err != nil {
		return err
	}

	if creator, ok := adapter.(vendor.SnapshotCreator); ok {
		if err := creator.CreateSnapshot(sess); err != nil {
			return fmt.Errorf("creating pre-deployment snapshot: %w", err)
		}
	}

	deployer, ok := adapter.(vendor.SnippetDeployer)
	if !ok {
		return fmt.Errorf("device type %q cannot deploy snippets", device.DeviceType)
	}
	return deployer.DeploySnippet(sess, rendered, noCommit)
}

func resolvePlaceholders(sess *session.Session, adapter vendor.Adapter, device inventory.Device, snip *snippet.Snippet) (snippet.Placeholders, error) {
	var p snippet.Placeholders

	if snip.SiteID {
		if sider, ok := adapter.(vendor.SiteIDer); ok {
			siteID, err := sider.GetSiteID(sess)
			if err != nil {
				return p, fmt.Errorf("retrieving site ID: %w", err)
			}
			p.SiteID = siteID
		}
	}

	if snip.InetGW {
		if gwer, ok := adapter.(vendor.InetGWer); ok {
			gw, err := gwer.GetInetGW(sess)
			if err != nil {
				return p, fmt.Errorf("retrieving internet gateway: %w", err)
			}
			p.InetGW = gw
		}
	}

	if device.DeviceType == inventory.DeviceTypePaloAlto && len(device.DeviceName) > 3 {
		p.SiteName = strings.ToUpper(device.DeviceName[:len(device.DeviceName)-3])
	}

	return p, nil
}
