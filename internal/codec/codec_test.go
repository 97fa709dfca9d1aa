package codec

import (
	"testing"

	"github.com/sebmaj/netcat-go/internal/snapshot"
)

func TestEncodeDecodeCommandNameRoundTrip(t *testing.T) {
	cases := []string{
		"show running-config",
		"show ip bgp summary",
		"",
		"commit force partial device-and-network",
		"日本語コマンド",
	}

	for _, s := range cases {
		encoded := EncodeCommandName(s)
		for _, d := range "0123456789" {
			if contains(encoded, string(d)) {
				t.Errorf("EncodeCommandName(%q) = %q still contains digit %q", s, encoded, d)
			}
		}
		decoded, err := DecodeCommandName(encoded)
		if err != nil {
			t.Fatalf("DecodeCommandName() error: %v", err)
		}
		if decoded != s {
			t.Errorf("round trip mismatch: %q != %q", decoded, s)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestCompressDecompressOutputRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"hostname vf1cr1\ninterface Ethernet1\n no shutdown\n",
		"a very long repeated string " + stringsRepeat("x", 5000),
	}

	for _, s := range cases {
		compressed := CompressOutput(s)
		decompressed, err := DecompressOutput(compressed)
		if err != nil {
			t.Fatalf("DecompressOutput() error: %v", err)
		}
		if decompressed != s {
			t.Errorf("round trip mismatch for input of length %d", len(s))
		}
	}
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestCompressDecompressSnapshotRoundTrip(t *testing.T) {
	snap := &snapshot.DeviceSnapshot{
		SnapshotTimestamp: 1690000000,
		DeviceName:        "vf1cr1",
		DeviceType:        "cisco_router",
		Formats: []snapshot.FormatOutputs{
			{
				FormatName: "backup_running",
				Commands: []snapshot.CommandOutput{
					{Command: "show running-config", Output: "hostname vf1cr1\n!\n"},
				},
			},
			{
				FormatName: "info",
				Commands: []snapshot.CommandOutput{
					{Command: "show version", Output: "Cisco IOS 15.2\n"},
				},
			},
		},
	}

	compressed := CompressSnapshot(snap)
	decompressed, err := DecompressSnapshot(compressed)
	if err != nil {
		t.Fatalf("DecompressSnapshot() error: %v", err)
	}

	if decompressed.DeviceName != snap.DeviceName || decompressed.SnapshotTimestamp != snap.SnapshotTimestamp {
		t.Errorf("identity fields mismatch: %+v", decompressed)
	}
	if len(decompressed.Formats) != len(snap.Formats) {
		t.Fatalf("format count mismatch: %d != %d", len(decompressed.Formats), len(snap.Formats))
	}
	for i, f := range snap.Formats {
		got := decompressed.Formats[i]
		if got.FormatName != f.FormatName {
			t.Errorf("format[%d] name mismatch: %q != %q", i, got.FormatName, f.FormatName)
		}
		for j, c := range f.Commands {
			if got.Commands[j].Command != c.Command || got.Commands[j].Output != c.Output {
				t.Errorf("command[%d][%d] mismatch: %+v != %+v", i, j, got.Commands[j], c)
			}
		}
	}
}
