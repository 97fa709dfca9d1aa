package inventory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "device_info_list.json")
	body := `[
		{"device_name": "vf1pa1", "device_type": "paloalto", "auth": "rsa", "username": "netcat", "password": ""},
		{"device_name": "vf1cr1", "device_type": "cisco_router", "auth": "password", "username": "svc", "password": "secret"}
	]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	devices, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].DeviceName != "vf1pa1" || devices[0].DeviceType != DeviceTypePaloAlto {
		t.Errorf("unexpected first device: %+v", devices[0])
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inventory.yaml")
	body := "- device_name: vf1lb1mgmt\n  device_type: f5\n  auth: password\n  username: svc\n  password: secret\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	devices, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(devices) != 1 || devices[0].DeviceType != DeviceTypeF5 {
		t.Errorf("unexpected devices: %+v", devices)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/device_info_list.json"); err == nil {
		t.Error("expected error for missing inventory file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	devices := []Device{
		{DeviceName: "vf1pa1", DeviceType: DeviceTypePaloAlto, Auth: AuthRSA, Username: "netcat"},
	}
	if err := Save(path, devices); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 1 || loaded[0].DeviceName != "vf1pa1" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestIsSupported(t *testing.T) {
	if !DeviceTypeCiscoASAMC.IsSupported() {
		t.Error("expected cisco_asa_mc to be supported")
	}
	if DeviceType("juniper").IsSupported() {
		t.Error("did not expect juniper to be supported")
	}
}

func TestReadCredentialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "login_cisco.txt")
	if err := os.WriteFile(path, []byte("svcuser\nsvcpass\n"), 0644); err != nil {
		t.Fatal(err)
	}

	user, pass, err := ReadCredentialFile(path)
	if err != nil {
		t.Fatalf("ReadCredentialFile() error: %v", err)
	}
	if user != "svcuser" || pass != "svcpass" {
		t.Errorf("got (%q, %q), want (\"svcuser\", \"svcpass\")", user, pass)
	}
}

func TestReadCredentialFileTooShort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "login_cisco.txt")
	if err := os.WriteFile(path, []byte("onlyuser\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := ReadCredentialFile(path); err == nil {
		t.Error("expected error for single-line credential file")
	}
}

func TestLoadDNSServers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dns_info_list.json")
	body := `[{"description": "dc1-dns1", "ip_address": "10.1.1.1"}]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	servers, err := LoadDNSServers(path)
	if err != nil {
		t.Fatalf("LoadDNSServers() error: %v", err)
	}
	if len(servers) != 1 || servers[0].IPAddress != "10.1.1.1" {
		t.Errorf("unexpected servers: %+v", servers)
	}
}
