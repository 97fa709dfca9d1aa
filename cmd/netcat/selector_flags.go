package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sebmaj/netcat-go/internal/inventory"
	"github.com/sebmaj/netcat-go/internal/selector"
)

// selectionFlags bundles the mutually-exclusive device-selection flag
// group every driver script registers (-a/-g/-d/-r), grounded on
// parse_arguments' add_mutually_exclusive_group(required=True).
type selectionFlags struct {
	all     bool
	group   string
	devices []string
	regexp  string
}

// register adds the selection flags to cmd. --group accepts any device
// type string; it is not restricted per operation here, so deploy and
// upgrade reject unsupported device types per device when their jobs run.
func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "all devices")
	cmd.Flags().StringVarP(&f.group, "group", "g", "", "select devices by device type")
	cmd.Flags().StringSliceVarP(&f.devices, "device", "d", nil, "select device(s) by name")
	cmd.Flags().StringVarP(&f.regexp, "regexp", "r", "", "select devices by regular expression against device name")
}

// resolve validates that exactly one of the selection flags was set and
// converts it into a selector.Selection.
func (f *selectionFlags) resolve() (selector.Selection, error) {
	set := 0
	if f.all {
		set++
	}
	if f.group != "" {
		set++
	}
	if len(f.devices) > 0 {
		set++
	}
	if f.regexp != "" {
		set++
	}
	if set != 1 {
		return selector.Selection{}, fmt.Errorf("specify exactly one of --all, --group, --device, or --regexp")
	}

	return selector.Selection{
		All:     f.all,
		Group:   inventory.DeviceType(f.group),
		Devices: f.devices,
		Regexp:  f.regexp,
	}, nil
}
