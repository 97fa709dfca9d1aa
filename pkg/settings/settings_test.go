package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	if s.InventoryPath != "" {
		t.Errorf("expected empty InventoryPath, got %q", s.InventoryPath)
	}
	if got := s.GetInventoryPath(); got != DefaultInventoryPath {
		t.Errorf("GetInventoryPath() = %q, want %q", got, DefaultInventoryPath)
	}
	if got := s.GetStorageBackend(); got != DefaultStorageBackend {
		t.Errorf("GetStorageBackend() = %q, want %q", got, DefaultStorageBackend)
	}
	if got := s.GetMaxWorkers(); got != DefaultMaxWorkers {
		t.Errorf("GetMaxWorkers() = %d, want %d", got, DefaultMaxWorkers)
	}
	if got := s.GetAuditMaxSizeMB(); got != DefaultAuditMaxSizeMB {
		t.Errorf("GetAuditMaxSizeMB() = %d, want %d", got, DefaultAuditMaxSizeMB)
	}
	if got := s.GetAuditMaxBackups(); got != DefaultAuditMaxBackups {
		t.Errorf("GetAuditMaxBackups() = %d, want %d", got, DefaultAuditMaxBackups)
	}
}

func TestSettings_Overrides(t *testing.T) {
	s := &Settings{
		InventoryPath:   "/opt/netcat/inventory.json",
		StorageBackend:  "relstore",
		MaxWorkers:      50,
		AuditLogPath:    "/opt/netcat/audit.log",
		AuditMaxSizeMB:  25,
		AuditMaxBackups: 3,
	}

	if got := s.GetInventoryPath(); got != "/opt/netcat/inventory.json" {
		t.Errorf("GetInventoryPath() = %q, want override", got)
	}
	if got := s.GetStorageBackend(); got != "relstore" {
		t.Errorf("GetStorageBackend() = %q, want override", got)
	}
	if got := s.GetMaxWorkers(); got != 50 {
		t.Errorf("GetMaxWorkers() = %d, want 50", got)
	}
	if got := s.GetAuditLogPath(); got != "/opt/netcat/audit.log" {
		t.Errorf("GetAuditLogPath() = %q, want override", got)
	}
	if got := s.GetAuditMaxSizeMB(); got != 25 {
		t.Errorf("GetAuditMaxSizeMB() = %d, want 25", got)
	}
	if got := s.GetAuditMaxBackups(); got != 3 {
		t.Errorf("GetAuditMaxBackups() = %d, want 3", got)
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		InventoryPath:  "/custom/inventory.json",
		StorageBackend: "fsstore",
		MaxWorkers:     10,
	}

	s.Clear()

	if s.InventoryPath != "" || s.StorageBackend != "" || s.MaxWorkers != 0 {
		t.Errorf("Clear() left non-zero fields: %+v", s)
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	s := &Settings{
		InventoryPath:   "/etc/netcat/inventory.json",
		StorageBackend:  "relstore",
		MaxWorkers:      64,
		DocStoreAddr:    "localhost:6379",
		RelStoreDSN:     "postgres://localhost/netcat",
		FsStoreRoot:     "/var/lib/netcat",
		AuditLogPath:    "/var/log/netcat/audit.log",
		AuditMaxSizeMB:  20,
		AuditMaxBackups: 5,
	}

	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if *loaded != *s {
		t.Errorf("loaded settings = %+v, want %+v", loaded, s)
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() error on nonexistent file: %v", err)
	}
	if s.InventoryPath != "" {
		t.Errorf("expected zero-value settings, got %+v", s)
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error loading invalid JSON, got nil")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "subdir", "settings.json")

	s := &Settings{MaxWorkers: 5}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file to exist: %v", err)
	}
}

func TestDefaultSettingsPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	want := filepath.Join(home, ".netcat", "settings.json")
	if got := DefaultSettingsPath(); got != want {
		t.Errorf("DefaultSettingsPath() = %q, want %q", got, want)
	}
}

func TestDefaultSettingsPath_NoHome(t *testing.T) {
	old, hadHome := os.LookupEnv("HOME")
	os.Unsetenv("HOME")
	defer func() {
		if hadHome {
			os.Setenv("HOME", old)
		}
	}()

	if got := DefaultSettingsPath(); got != "netcat_settings.json" {
		t.Errorf("DefaultSettingsPath() with no HOME = %q, want %q", got, "netcat_settings.json")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("HOME", dir)
	defer os.Unsetenv("HOME")

	s := &Settings{MaxWorkers: 99}
	path := filepath.Join(dir, ".netcat", "settings.json")
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.MaxWorkers != 99 {
		t.Errorf("Load() MaxWorkers = %d, want 99", loaded.MaxWorkers)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("HOME", dir)
	defer os.Unsetenv("HOME")

	s := &Settings{StorageBackend: "fsstore"}
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(dir, ".netcat", "settings.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file at %q: %v", path, err)
	}
}

func TestLoadFrom_ReadError(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFrom(dir); err == nil {
		t.Error("expected error reading a directory as a settings file, got nil")
	}
}

func TestSaveTo_MkdirError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	s := &Settings{}
	path := filepath.Join(blocker, "subdir", "settings.json")
	if err := s.SaveTo(path); err == nil {
		t.Error("expected error when parent path is not a directory, got nil")
	}
}
