// Package selector resolves an operator device selection into an ordered
// set of device names, grounded on netcat.py's get_requested_device_name_list.
package selector

import (
	"fmt"
	"regexp"

	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/pkg/util"
)

// Selection is exactly one of All, Group, Devices, or Regexp — enforced by
// the CLI flag layer (mutually exclusive flag group), not by this package.
type Selection struct {
	All     bool
	Group   inventory.DeviceType
	Devices []string
	Regexp  string
}

// Resolve returns the ordered set of device names from devices matching
// sel. A malformed regexp produces an empty selection and a logged
// warning, not an error — callers treat "no valid device names requested"
// as their own fatal condition, matching the original driver scripts.
func Resolve(devices []inventory.Device, sel Selection) []string {
	switch {
	case sel.All:
		names := make([]string, 0, len(devices))
		for _, d := range devices {
			names = append(names, d.DeviceName)
		}
		return names

	case sel.Group != "":
		var names []string
		for _, d := range devices {
			if d.DeviceType == sel.Group {
				names = append(names, d.DeviceName)
			}
		}
		return names

	case len(sel.Devices) > 0:
		requested := make(map[string]bool, len(sel.Devices))
		for _, n := range sel.Devices {
			requested[n] = true
		}
		var names []string
		for _, d := range devices {
			if requested[d.DeviceName] {
				names = append(names, d.DeviceName)
			}
		}
		return names

	case sel.Regexp != "":
		re, err := regexp.Compile(sel.Regexp)
		if err != nil {
			util.Warnf("malformed device selection regexp %q: %v", sel.Regexp, err)
			return nil
		}
		var names []string
		for _, d := range devices {
			if re.MatchString(d.DeviceName) {
				names = append(names, d.DeviceName)
			}
		}
		return names
	}

	util.Warn("no device selection criteria provided")
	return nil
}

// Describe renders the selection for logging, e.g. "group=paloalto".
func Describe(sel Selection) string {
	switch {
	case sel.All:
		return "all"
	case sel.Group != "":
		return fmt.Sprintf("group=%s", sel.Group)
	case len(sel.Devices) > 0:
		return fmt.Sprintf("device=%v", sel.Devices)
	case sel.Regexp != "":
		return fmt.Sprintf("regexp=%s", sel.Regexp)
	default:
		return "none"
	}
}
