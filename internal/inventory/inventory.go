// Package inventory loads the device inventory and credential files that
// drive a fleet job, grounded on netcat.py's read_info_list_file.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AuthMode is the CLI session authentication mode for a device.
type AuthMode string

const (
	AuthPassword AuthMode = "password"
	AuthRSA      AuthMode = "rsa"
)

// DeviceType enumerates the vendor adapter a device selects.
type DeviceType string

const (
	DeviceTypePaloAlto    DeviceType = "paloalto"
	DeviceTypeF5          DeviceType = "f5"
	DeviceTypeCiscoNexus  DeviceType = "cisco_nexus"
	DeviceTypeCiscoRouter DeviceType = "cisco_router"
	DeviceTypeCiscoSwitch DeviceType = "cisco_switch"
	DeviceTypeCiscoASA    DeviceType = "cisco_asa"
	DeviceTypeCiscoASAMC  DeviceType = "cisco_asa_mc"
)

// SupportedDeviceTypes lists every device type a Vendor Adapter exists for.
var SupportedDeviceTypes = []DeviceType{
	DeviceTypePaloAlto,
	DeviceTypeF5,
	DeviceTypeCiscoNexus,
	DeviceTypeCiscoRouter,
	DeviceTypeCiscoSwitch,
	DeviceTypeCiscoASA,
	DeviceTypeCiscoASAMC,
}

// IsSupported reports whether dt is a known device type.
func (dt DeviceType) IsSupported() bool {
	for _, s := range SupportedDeviceTypes {
		if s == dt {
			return true
		}
	}
	return false
}

// Device is a DeviceDescriptor: the selection/connection record for one
// device, immutable for the duration of a job.
type Device struct {
	DeviceName string     `json:"device_name" yaml:"device_name"`
	DeviceType DeviceType `json:"device_type" yaml:"device_type"`
	Auth       AuthMode   `json:"auth" yaml:"auth"`
	Username   string     `json:"username" yaml:"username"`
	Password   string     `json:"password" yaml:"password"`
}

// DNSServer is one entry of the DNS health-check inventory
// (dns_info_list.json): {description, ip_address}.
type DNSServer struct {
	Description string `json:"description" yaml:"description"`
	IPAddress   string `json:"ip_address" yaml:"ip_address"`
}

// Load reads a device inventory file. JSON is assumed unless the path ends
// in .yaml or .yml, in which case YAML is parsed instead — the original
// only ever had one file format; YAML support is additive.
func Load(path string) ([]Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory file %q: %w", path, err)
	}

	var devices []Device
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &devices); err != nil {
			return nil, fmt.Errorf("parsing YAML inventory %q: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &devices); err != nil {
			return nil, fmt.Errorf("parsing JSON inventory %q: %w", path, err)
		}
	}

	return devices, nil
}

// LoadDNSServers reads the DNS health-check inventory file.
func LoadDNSServers(path string) ([]DNSServer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DNS inventory file %q: %w", path, err)
	}

	var servers []DNSServer
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &servers); err != nil {
			return nil, fmt.Errorf("parsing YAML DNS inventory %q: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &servers); err != nil {
			return nil, fmt.Errorf("parsing JSON DNS inventory %q: %w", path, err)
		}
	}

	return servers, nil
}

// Save writes a device inventory back to disk, JSON-encoded with a
// four-space indent. Devices are written in the order given, and each
// record's keys follow the Device field order (device_name, device_type,
// auth, username, password); keys are not sorted.
func Save(path string, devices []Device) error {
	data, err := json.MarshalIndent(devices, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

// ReadCredentialFile reads a two-line plain-text credential file
// (login_cisco.txt / login_f5.txt): username on line one, password on
// line two.
func ReadCredentialFile(path string) (username, password string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading credential file %q: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\n")
	if len(lines) < 2 {
		return "", "", fmt.Errorf("credential file %q must have two lines", path)
	}

	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}
