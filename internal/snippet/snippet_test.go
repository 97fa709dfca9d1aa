package snippet

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test fixture %s: %v", path, err)
	}
	return path
}

func TestLoadSingleFileNoPlaceholders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "set deviceconfig system hostname foo\n")

	s, err := Load([]string{path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.SiteID || s.InetGW {
		t.Errorf("expected no placeholders detected, got SiteID=%v InetGW=%v", s.SiteID, s.InetGW)
	}

	rendered, err := s.Render(Placeholders{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rendered != "set deviceconfig system hostname foo\n\n\n" {
		t.Errorf("unexpected render: %q", rendered)
	}
}

func TestLoadDetectsSiteIDAndInetGWPlaceholders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "set site {site_id} gw {inet_gw} name {site_name}\n")

	s, err := Load([]string{path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.SiteID {
		t.Error("expected SiteID placeholder to be detected")
	}
	if !s.InetGW {
		t.Error("expected InetGW placeholder to be detected")
	}

	rendered, err := s.Render(Placeholders{SiteName: "SITE1", SiteID: "1.2.3.4", InetGW: "9.9.9.9"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "set site 1.2.3.4 gw 9.9.9.9 name SITE1\n\n\n"
	if rendered != want {
		t.Errorf("got %q, want %q", rendered, want)
	}
}

func TestLoadConcatenatesMultipleFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "1.txt", "line one")
	second := writeFile(t, dir, "2.txt", "line two")

	s, err := Load([]string{first, second})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "line one\n\nline two\n\n"
	if s.Text() != want {
		t.Errorf("got %q, want %q", s.Text(), want)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load([]string{filepath.Join(t.TempDir(), "missing.txt")})
	if err == nil {
		t.Fatal("expected an error for a missing snippet file")
	}
}

func TestLoadRejectsMalformedPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "set site {unknown_field}\n")

	_, err := Load([]string{path})
	if err == nil {
		t.Fatal("expected a formatting error for an unrecognized placeholder")
	}
}

func TestLoadRejectsNoFiles(t *testing.T) {
	_, err := Load(nil)
	if err == nil {
		t.Fatal("expected an error when no snippet files are given")
	}
}
