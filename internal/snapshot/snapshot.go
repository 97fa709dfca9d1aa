// Package snapshot defines the command-catalog and capture data model
// (OutputFormat, DeviceSnapshot) and the Snapshot Builder that walks a
// vendor adapter's catalog over an open CLI session, grounded on
// netcat_cli.py's get_device_data.
package snapshot

import (
	"strings"
)

// OutputFormat is a labeled command catalog entry. FormatName starting
// with "backup" marks the capture as a configuration artifact subject to
// change detection; every other name is treated as info.
type OutputFormat struct {
	FormatName   string
	PreCommands  []string
	Commands     []string
	PostCommands []string
	// OutputStart/OutputEnd are inclusive-start/exclusive-end line indices
	// applied to each command's raw capture, Python-slice style: negative
	// values index from the end of the captured line sequence.
	OutputStart int
	OutputEnd   int
}

// IsBackup reports whether this format is a configuration artifact.
func (f OutputFormat) IsBackup() bool {
	return strings.HasPrefix(f.FormatName, "backup")
}

// CommandOutput is one captured command and its trimmed, joined text.
type CommandOutput struct {
	Command string
	Output  string
}

// FormatOutputs is the captured result of one OutputFormat: an
// insertion-ordered sequence of command outputs, in catalog order.
type FormatOutputs struct {
	FormatName string
	Commands   []CommandOutput
}

// Get returns the output recorded for command, and whether it was found.
func (f FormatOutputs) Get(command string) (string, bool) {
	for _, c := range f.Commands {
		if c.Command == command {
			return c.Output, true
		}
	}
	return "", false
}

// DeviceSnapshot is one complete fleet-wide capture for one device.
type DeviceSnapshot struct {
	SnapshotTimestamp int64
	DeviceName        string
	DeviceType        string
	// Formats preserves catalog declaration order.
	Formats []FormatOutputs
}

// Format returns the captured outputs for formatName, or nil if absent.
func (s *DeviceSnapshot) Format(formatName string) *FormatOutputs {
	for i := range s.Formats {
		if s.Formats[i].FormatName == formatName {
			return &s.Formats[i]
		}
	}
	return nil
}

// BackupFormats returns only the formats whose name starts with "backup",
// in catalog order — the projection netcat_backup.py applies via
// table_name[7:] / startswith("backup") before writing to the backup
// table.
func (s *DeviceSnapshot) BackupFormats() []FormatOutputs {
	var out []FormatOutputs
	for _, f := range s.Formats {
		if strings.HasPrefix(f.FormatName, "backup") {
			out = append(out, f)
		}
	}
	return out
}

// InfoFormats returns every format not starting with "backup", in catalog
// order.
func (s *DeviceSnapshot) InfoFormats() []FormatOutputs {
	var out []FormatOutputs
	for _, f := range s.Formats {
		if !strings.HasPrefix(f.FormatName, "backup") {
			out = append(out, f)
		}
	}
	return out
}

// sliceLines applies Python-style [start:end] slicing to lines, supporting
// negative indices counted from the end.
func sliceLines(lines []string, start, end int) []string {
	n := len(lines)

	resolve := func(idx, dflt int) int {
		if idx < 0 {
			idx = n + idx
		}
		if idx < 0 {
			idx = 0
		}
		if idx > n {
			idx = n
		}
		return idx
	}

	s := resolve(start, 0)
	e := resolve(end, n)
	if s >= e {
		return nil
	}
	return lines[s:e]
}

// TrimCapture strips the echoed command and trailing prompt from a raw
// capture per an OutputFormat's OutputStart/OutputEnd, joining the
// remaining lines with "\n" and appending a trailing newline — grounded on
// netcat_cli.py's get_device_data, which does
// "\n".join(output.split("\n")[output_start:output_end]) + "\n".
func TrimCapture(raw string, outputStart, outputEnd int) string {
	lines := strings.Split(raw, "\n")
	trimmed := sliceLines(lines, outputStart, outputEnd)
	return strings.Join(trimmed, "\n") + "\n"
}

// Sender is the minimal CLI session capability the Builder needs: send one
// line and return the captured text up to the next prompt.
type Sender interface {
	Send(command string) (string, error)
}

// Build walks catalog over session: for each OutputFormat, every
// PreCommand is sent and discarded, every capture Command is sent, trimmed
// per OutputStart/OutputEnd, and recorded; every PostCommand is sent and
// discarded. Formats and commands within a format are visited in catalog
// order.
func Build(session Sender, deviceName, deviceType string, snapshotTimestamp int64, catalog []OutputFormat) (*DeviceSnapshot, error) {
	snap := &DeviceSnapshot{
		SnapshotTimestamp: snapshotTimestamp,
		DeviceName:        deviceName,
		DeviceType:        deviceType,
	}

	for _, format := range catalog {
		for _, pre := range format.PreCommands {
			if _, err := session.Send(pre); err != nil {
				return nil, err
			}
		}

		fo := FormatOutputs{FormatName: format.FormatName}
		for _, cmd := range format.Commands {
			raw, err := session.Send(cmd)
			if err != nil {
				return nil, err
			}
			fo.Commands = append(fo.Commands, CommandOutput{
				Command: cmd,
				Output:  TrimCapture(raw, format.OutputStart, format.OutputEnd),
			})
		}
		snap.Formats = append(snap.Formats, fo)

		for _, post := range format.PostCommands {
			if _, err := session.Send(post); err != nil {
				return nil, err
			}
		}
	}

	return snap, nil
}
