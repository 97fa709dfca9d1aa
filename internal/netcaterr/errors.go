// Package netcaterr defines the fault taxonomy shared by the session,
// vendor adapter, and storage layers.
package netcaterr

import (
	"errors"
	"fmt"
)

// Sentinel kinds, compared with errors.Is at worker boundaries.
var (
	ErrAuthFailure           = errors.New("authentication failed")
	ErrRefused               = errors.New("connection refused")
	ErrTimeout               = errors.New("operation timed out")
	ErrHostKeyFault          = errors.New("unexpected host key confirmation")
	ErrProtocolFault         = errors.New("unexpected prompt or protocol state")
	ErrBusy                  = errors.New("device busy beyond wait bound")
	ErrCommitValidationError = errors.New("device reported a commit error")
	ErrThrottlingRetryable   = errors.New("storage throttled beyond retry budget")
	ErrConfigurationFault    = errors.New("configuration fault")
)

// DeviceError binds a sentinel kind to the device and operation it occurred
// on, the way pkg/util.PreconditionError binds kind to operation/resource.
type DeviceError struct {
	Device    string
	Operation string
	Kind      error
	Detail    string
}

func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", e.Device, e.Operation, e.Kind)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *DeviceError) Unwrap() error {
	return e.Kind
}

// New constructs a DeviceError wrapping one of the sentinel kinds above.
func New(device, operation string, kind error, detail string) *DeviceError {
	return &DeviceError{Device: device, Operation: operation, Kind: kind, Detail: detail}
}

// AuthFailure, Refused, Timeout, etc. are convenience constructors mirroring
// the taxonomy table: each produces a *DeviceError wrapping the matching
// sentinel.
func AuthFailure(device, op, detail string) error {
	return New(device, op, ErrAuthFailure, detail)
}

func Refused(device, op, detail string) error {
	return New(device, op, ErrRefused, detail)
}

func Timeout(device, op, detail string) error {
	return New(device, op, ErrTimeout, detail)
}

func HostKeyFault(device, op, detail string) error {
	return New(device, op, ErrHostKeyFault, detail)
}

func ProtocolFault(device, op, detail string) error {
	return New(device, op, ErrProtocolFault, detail)
}

func Busy(device, op, detail string) error {
	return New(device, op, ErrBusy, detail)
}

func CommitValidationError(device, op, detail string) error {
	return New(device, op, ErrCommitValidationError, detail)
}

func ThrottlingRetryable(device, op, detail string) error {
	return New(device, op, ErrThrottlingRetryable, detail)
}

func ConfigurationFault(device, op, detail string) error {
	return New(device, op, ErrConfigurationFault, detail)
}
