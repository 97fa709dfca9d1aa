// Package changedetect compares a fresh DeviceSnapshot against the most
// recent stored backup, grounded on netcat_backup.py's
// compare_command_outputs / detect_config_change.
package changedetect

import (
	"strings"

	"github.com/sebmaj/netcat-go/internal/snapshot"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// volatileFragments are line fragments whose differences are ignored —
// present on either side of a differing line pair.
var volatileFragments = []string{
	"!Time:",
	"no ip domain-lookup",
	"state up",
	"state down",
}

// linesEqualModuloVolatile compares two lines, tolerating differences when
// either line contains a known-volatile fragment.
func linesEqualModuloVolatile(a, b string) bool {
	if a == b {
		return true
	}
	for _, frag := range volatileFragments {
		if strings.Contains(a, frag) || strings.Contains(b, frag) {
			return true
		}
	}
	return false
}

// compareCommandOutputs compares two command captures line by line.
// Differing line counts are always a change. Differing lines are ignored
// only when one of them carries a volatile fragment.
func compareCommandOutputs(previous, current string) bool {
	prevLines := strings.Split(previous, "\n")
	currLines := strings.Split(current, "\n")

	if len(prevLines) != len(currLines) {
		return true
	}
	for i := range currLines {
		if !linesEqualModuloVolatile(prevLines[i], currLines[i]) {
			return true
		}
	}
	return false
}

// Result reports the first changed (formatName, command) pair, if any.
type Result struct {
	Changed         bool
	ChangedFormat   string
	ChangedCommand  string
	NoPriorSnapshot bool
}

// Detect compares current against previous, iterating only the backup
// formats/commands present in the *current* snapshot's catalog — a
// previous-only command (removed from the catalog since the last run) is
// silently never flagged as changed. This preserves
// detect_config_change's current-snapshot-only iteration, per spec.md's
// explicit instruction to keep this behavior.
//
// A nil previous (no prior backup exists) always reports changed=true,
// triggering a first-time save.
func Detect(deviceName string, previous, current *snapshot.DeviceSnapshot) Result {
	if previous == nil {
		return Result{Changed: true, NoPriorSnapshot: true}
	}

	for _, format := range current.BackupFormats() {
		prevFormat := previous.Format(format.FormatName)

		for _, cmd := range format.Commands {
			var prevOutput string
			if prevFormat != nil {
				if out, ok := prevFormat.Get(cmd.Command); ok {
					prevOutput = out
				}
			}

			if compareCommandOutputs(prevOutput, cmd.Output) {
				util.WithDevice(deviceName).Infof("Config change detected in format '%s', command '%s'", format.FormatName, cmd.Command)
				return Result{Changed: true, ChangedFormat: format.FormatName, ChangedCommand: cmd.Command}
			}
		}
	}

	util.WithDevice(deviceName).Info("No config change detected")
	return Result{Changed: false}
}
