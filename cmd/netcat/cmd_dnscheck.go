package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/dnscheck"
	"github.com/sebmaj/netcat-go/internal/fleet"
	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/internal/storage"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// dnsInventoryPath is the DNS health-check server list, separate from the
// device inventory file (netcat.FILENAME_DNS_INFO_LIST).
const dnsInventoryPath = "/etc/netcat/dns_info_list.json"

func newDNSCheckCmd() *cobra.Command {
	var (
		all     bool
		testRun bool
	)

	cmd := &cobra.Command{
		Use:   "dnscheck",
		Short: "Check DNS server health by resolving an external and an internal hostname off each one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all {
				return fmt.Errorf("--all is required")
			}
			return runDNSCheck(testRun)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "check every configured DNS server (required)")
	cmd.Flags().BoolVarP(&testRun, "test-run", "T", false, "check DNS status but do not write it to storage")
	return cmd
}

func runDNSCheck(testRun bool) error {
	timestamp := time.Now().Unix()

	servers, err := inventory.LoadDNSServers(dnsInventoryPath)
	if err != nil {
		return err
	}

	names := make([]string, len(servers))
	byName := make(map[string]inventory.DNSServer, len(servers))
	for i, s := range servers {
		names[i] = s.IPAddress
		byName[s.IPAddress] = s
	}
	util.Infof("Executing DNS check for %d server(s): %v", len(names), names)

	results := make([]dnscheck.ServerResult, 0, len(servers))
	var resultsMu sync.Mutex

	job := func(ipAddress string) error {
		server := byName[ipAddress]
		result := dnscheck.Check(context.Background(), server.Description, server.IPAddress)
		resultsMu.Lock()
		results = append(results, result)
		resultsMu.Unlock()
		return nil
	}

	fleet.Run(names, maxWorkers(), singleWorker, job)

	if testRun {
		return nil
	}

	store, err := openStorage(loadedSettings)
	if err != nil {
		return err
	}

	doc := storage.Document{
		SnapshotName:      dnscheck.SnapshotName,
		SnapshotTimestamp: timestamp,
		Status: dnscheck.StatusDocument{
			SnapshotName:      dnscheck.SnapshotName,
			SnapshotTimestamp: timestamp,
			DNSData:           results,
		},
	}
	if err := store.Write(storage.TableStatus, doc); err != nil {
		return fmt.Errorf("saving DNS status document: %w", err)
	}

	util.Info("DNS check ended")
	return nil
}
