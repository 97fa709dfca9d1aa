package netcaterr

import (
	"errors"
	"testing"
)

func TestDeviceErrorUnwrap(t *testing.T) {
	err := AuthFailure("vf1pa1", "open", "second password re-prompt")

	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("expected errors.Is to match ErrAuthFailure")
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("did not expect errors.Is to match ErrTimeout")
	}

	var de *DeviceError
	if !errors.As(err, &de) {
		t.Fatalf("expected errors.As to unwrap a *DeviceError")
	}
	if de.Device != "vf1pa1" || de.Operation != "open" {
		t.Errorf("unexpected DeviceError fields: %+v", de)
	}
}

func TestErrorMessageIncludesDetail(t *testing.T) {
	err := Busy("vf1fw1", "clearCommitInProgress", "exceeded 3m bound")
	want := "vf1fw1: clearCommitInProgress: device busy beyond wait bound (exceeded 3m bound)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAllConstructorsWrapDistinctSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind error
	}{
		{"AuthFailure", AuthFailure("d", "op", ""), ErrAuthFailure},
		{"Refused", Refused("d", "op", ""), ErrRefused},
		{"Timeout", Timeout("d", "op", ""), ErrTimeout},
		{"HostKeyFault", HostKeyFault("d", "op", ""), ErrHostKeyFault},
		{"ProtocolFault", ProtocolFault("d", "op", ""), ErrProtocolFault},
		{"Busy", Busy("d", "op", ""), ErrBusy},
		{"CommitValidationError", CommitValidationError("d", "op", ""), ErrCommitValidationError},
		{"ThrottlingRetryable", ThrottlingRetryable("d", "op", ""), ErrThrottlingRetryable},
		{"ConfigurationFault", ConfigurationFault("d", "op", ""), ErrConfigurationFault},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !errors.Is(c.err, c.kind) {
				t.Errorf("%s did not wrap its sentinel", c.name)
			}
		})
	}
}
