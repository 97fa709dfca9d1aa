// Package dnsaxfr generates the device inventory from DNS zone data,
// grounded on netcat_make_device_info_list.py: transfer the
// "net.verifone.com" zone from a primary nameserver (falling back to a
// secondary), classify each node name against a table of per-device-type
// regexes, and emit one inventory.Device per match. Zone transfer uses
// github.com/miekg/dns (the pack's DNS library, pulled in by
// flightctl-flightctl) standing in for the original's dnspython
// dns.zone/dns.query.
package dnsaxfr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/miekg/dns"

	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// Zone is the zone transferred from the authoritative nameservers.
const Zone = "net.verifone.com."

// PrimaryNameserver and SecondaryNameserver are tried in order; the
// secondary is only consulted if the primary is unreachable.
const (
	PrimaryNameserver   = "vf1ns1.net.verifone.com"
	SecondaryNameserver = "vf1ns2.net.verifone.com"
)

// skipPattern excludes infrastructure nodes that are never netcat-managed
// devices, transcribed verbatim from the original's skip regex.
var skipPattern = regexp.MustCompile(`^(?:vf1nms.|vf2nms.|vf1n7k1|vf1n7k2|vf1mrtg1|vf1mrtg2|vf1srvlabsw[12]|vf2ravpnts|vf4ts1)$`)

// Credentials bundles the two vendor-specific service accounts read from
// the login files; RSA-authenticated device types use the local host's
// own identity instead (see classifier below) and carry no password.
type Credentials struct {
	CiscoUsername string
	CiscoPassword string
	F5Username    string
	F5Password    string
}

type classifier struct {
	pattern    *regexp.Regexp
	deviceType inventory.DeviceType
	build      func(name string, creds Credentials, localHostname string) inventory.Device
}

// classifiers is the original's device_types table, in its declared
// priority order (first match wins).
func classifiers() []classifier {
	return []classifier{
		{
			pattern:    regexp.MustCompile(`^\S+pa[12]$`),
			deviceType: inventory.DeviceTypePaloAlto,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypePaloAlto, Auth: inventory.AuthRSA, Username: localHostname}
			},
		},
		{
			pattern:    regexp.MustCompile(`^vf[12]lb[12](?:mgmt|dmz|int|npdmz|npint)$`),
			deviceType: inventory.DeviceTypeF5,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypeF5, Auth: inventory.AuthPassword, Username: creds.F5Username, Password: creds.F5Password}
			},
		},
		{
			pattern:    regexp.MustCompile(`^\S+n[579]k[1-4](?:-admin|-vfi)?$`),
			deviceType: inventory.DeviceTypeCiscoNexus,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypeCiscoNexus, Auth: inventory.AuthPassword, Username: creds.CiscoUsername, Password: creds.CiscoPassword}
			},
		},
		{
			pattern:    regexp.MustCompile(`^\S+(?:[abd]s[0-9]{1,2}|ms[12]|sw[12]?)$`),
			deviceType: inventory.DeviceTypeCiscoSwitch,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypeCiscoSwitch, Auth: inventory.AuthRSA, Username: localHostname}
			},
		},
		{
			pattern:    regexp.MustCompile(`^\S*(?:cr[12]|wr1|sr[12]|ir[12]|ts[12]?|rt[12]?|vf1br-conoco)$`),
			deviceType: inventory.DeviceTypeCiscoRouter,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypeCiscoRouter, Auth: inventory.AuthRSA, Username: localHostname}
			},
		},
		{
			pattern:    regexp.MustCompile(`^\S+ravpn[xt]?fw$`),
			deviceType: inventory.DeviceTypeCiscoASA,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypeCiscoASA, Auth: inventory.AuthPassword, Username: creds.CiscoUsername, Password: creds.CiscoPassword}
			},
		},
		{
			pattern:    regexp.MustCompile(`^vf[12]fw[12]$`),
			deviceType: inventory.DeviceTypeCiscoASAMC,
			build: func(name string, creds Credentials, localHostname string) inventory.Device {
				return inventory.Device{DeviceName: name, DeviceType: inventory.DeviceTypeCiscoASAMC, Auth: inventory.AuthPassword, Username: creds.CiscoUsername, Password: creds.CiscoPassword}
			},
		},
	}
}

// TransferZone performs an AXFR of Zone against nameserver, returning every
// owner name seen across the transferred records (deduplicated). A
// transport failure is returned as an error rather than silently
// collapsing to an empty zone, so TransferZoneWithFallback can decide
// whether to fall back to SecondaryNameserver.
func TransferZone(nameserver string) ([]string, error) {
	transfer := new(dns.Transfer)
	msg := new(dns.Msg)
	msg.SetAxfr(Zone)

	envelopes, err := transfer.In(msg, nameserver+":53")
	if err != nil {
		return nil, fmt.Errorf("dns zone transfer from %q: %w", nameserver, err)
	}

	seen := make(map[string]bool)
	var names []string
	for envelope := range envelopes {
		if envelope.Error != nil {
			return nil, fmt.Errorf("dns zone transfer from %q: %w", nameserver, envelope.Error)
		}
		for _, rr := range envelope.RR {
			owner := strings.ToLower(rr.Header().Name)
			if !seen[owner] {
				seen[owner] = true
				names = append(names, owner)
			}
		}
	}
	return names, nil
}

// TransferZoneWithFallback tries PrimaryNameserver, then
// SecondaryNameserver, matching the original's two-attempt fallback.
func TransferZoneWithFallback() ([]string, error) {
	names, err := TransferZone(PrimaryNameserver)
	if err == nil {
		return names, nil
	}
	util.Warnf("dnsaxfr: primary nameserver %s failed: %v", PrimaryNameserver, err)

	names, err = TransferZone(SecondaryNameserver)
	if err == nil {
		return names, nil
	}
	return nil, fmt.Errorf("unable to contact either net.verifone.com DNS server: %w", err)
}

// relativeLabel strips the zone suffix from a fully-qualified owner name,
// reproducing dnspython's zone.nodes keys being relative to the zone
// apex — the original's skip/device-type regexes run against that
// relative label (str(node)), not the FQDN.
func relativeLabel(fqdn string) string {
	label := strings.TrimSuffix(strings.ToLower(fqdn), strings.ToLower(Zone))
	return strings.TrimSuffix(label, ".")
}

// Classify converts zone owner names into inventory devices: non-matching
// and explicitly-skipped names are dropped, and only device types in
// supportedTypes are emitted (so the generator can be scoped down without
// editing the classifier table).
func Classify(ownerNames []string, creds Credentials, localHostname string, supportedTypes []inventory.DeviceType) []inventory.Device {
	supported := make(map[inventory.DeviceType]bool, len(supportedTypes))
	for _, t := range supportedTypes {
		supported[t] = true
	}

	var devices []inventory.Device
	for _, owner := range ownerNames {
		relative := relativeLabel(owner)
		if relative == "" || relative == "@" || skipPattern.MatchString(relative) {
			continue
		}

		// device_name = str(node).split(".")[0].strip().lower()
		name := strings.ToLower(strings.TrimSpace(strings.SplitN(relative, ".", 2)[0]))

		for _, c := range classifiers() {
			if !supported[c.deviceType] {
				continue
			}
			if c.pattern.MatchString(name) {
				devices = append(devices, c.build(name, creds, localHostname))
				break
			}
		}
	}
	return devices
}
