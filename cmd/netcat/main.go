// netcat is the fleet-wide CLI for config backup, snippet deployment,
// Palo Alto software upgrades, DNS health checks, and inventory
// generation across the Palo Alto / F5 / Cisco device fleet, grounded on
// netcat.py's driver-script family (netcat_backup.py, netcat_deploy.py,
// netcat_upgrade.py, netcat_dnscheck.py, netcat_make_device_info_list.py).
//
// Usage:
//
//	netcat backup -a                  # back up every inventoried device
//	netcat deploy -s snippet.txt -g cisco_router
//	netcat upgrade -g paloalto -u
//	netcat dnscheck -a
//	netcat inventory
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/fleet"
	"github.com/sebmaj/netcat-go/internal/storage/docstore"
	"github.com/sebmaj/netcat-go/internal/storage/fsstore"
	"github.com/sebmaj/netcat-go/internal/storage/relstore"
	"github.com/sebmaj/netcat-go/pkg/audit"
	"github.com/sebmaj/netcat-go/pkg/cli"
	"github.com/sebmaj/netcat-go/pkg/settings"
	"github.com/sebmaj/netcat-go/pkg/util"
	"github.com/sebmaj/netcat-go/pkg/version"

	"github.com/sebmaj/netcat-go/internal/storage"
)

var (
	debug          bool
	singleWorker   bool
	settingsPath   string
	loadedSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netcat",
	Short:             "Config backup, deployment, upgrade, and DNS health-check automation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `NetCAT automates interactive CLI sessions across the Palo Alto / F5 /
Cisco device fleet.

  netcat backup   -a|-g|-d|-r         # snapshot running config, detect change
  netcat deploy   -s <file> -g|-d|-r  # push a config snippet
  netcat upgrade  -g|-d|-r            # download/install PA software
  netcat dnscheck -a                  # resolve two probe hostnames off each server
  netcat inventory                    # regenerate device_info_list.json from DNS`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("info")
		}

		s, err := settingsLoader()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		loadedSettings = s
		return nil
	},
}

func settingsLoader() (*settings.Settings, error) {
	if settingsPath != "" {
		return settings.LoadFrom(settingsPath)
	}
	return settings.Load()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "enable debug logs")
	rootCmd.PersistentFlags().BoolVarP(&singleWorker, "single-process", "S", false, "run the fleet sequentially on the driver goroutine, for debugging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file path (default: ~/.netcat/settings.json)")

	rootCmd.AddCommand(
		newBackupCmd(),
		newDeployCmd(),
		newUpgradeCmd(),
		newDNSCheckCmd(),
		newInventoryCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("netcat dev build (set version info with -ldflags at build time)")
			} else {
				fmt.Printf("netcat %s (%s)\n", version.Version, version.GitCommit)
			}
		},
	}
}

// openStorage builds the Storage Adapter selected by settings and ensures
// its tables exist.
func openStorage(s *settings.Settings) (storage.Adapter, error) {
	var adapter storage.Adapter

	switch s.GetStorageBackend() {
	case "docstore":
		adapter = docstore.New(s.DocStoreAddr)
	case "relstore":
		store, err := relstore.Open(s.RelStoreDSN)
		if err != nil {
			return nil, err
		}
		adapter = store
	case "fsstore":
		adapter = fsstore.New(s.FsStoreRoot)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.GetStorageBackend())
	}

	if err := adapter.CreateTables(); err != nil {
		return nil, fmt.Errorf("provisioning storage tables: %w", err)
	}
	return adapter, nil
}

// openAuditLogger builds the rotating file-backed audit logger and
// installs it as the package default.
func openAuditLogger(s *settings.Settings) (*audit.FileLogger, error) {
	logger, err := audit.NewFileLogger(s.GetAuditLogPath(), audit.RotationConfig{
		MaxSize:    int64(s.GetAuditMaxSizeMB()) * 1024 * 1024,
		MaxBackups: s.GetAuditMaxBackups(),
	})
	if err != nil {
		return nil, err
	}
	audit.SetDefaultLogger(logger)
	return logger, nil
}

// reportFinalStatus prints the fleet.Result summary the way every driver
// script's report_final_status closes out a run: a headline plus a
// per-device status table.
func reportFinalStatus(result fleet.Result) {
	util.Infof("Requested %d device(s): %v", len(result.Requested), result.Requested)
	if len(result.Failed) == 0 {
		util.Infof("%s", cli.Green(fmt.Sprintf("All %d device(s) completed successfully", len(result.Successful))))
	} else {
		util.Warnf("%s", cli.Yellow(fmt.Sprintf("%d succeeded, %d failed: %v", len(result.Successful), len(result.Failed), result.Failed)))
	}

	failed := make(map[string]bool, len(result.Failed))
	for _, name := range result.Failed {
		failed[name] = true
	}

	table := cli.NewTable("DEVICE", "STATUS")
	for _, name := range result.Requested {
		status := cli.Green("ok")
		if failed[name] {
			status = cli.Red("failed")
		}
		table.Row(name, status)
	}
	table.Flush()
}

func maxWorkers() int {
	if loadedSettings == nil {
		return settings.DefaultMaxWorkers
	}
	return loadedSettings.GetMaxWorkers()
}
