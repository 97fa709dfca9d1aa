// Package audit provides audit logging for device backup, deploy, and
// upgrade operations.
package audit

import (
	"fmt"
	"time"
)

// Event represents one auditable per-device operation outcome.
type Event struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	SnapshotTS  int64         `json:"snapshot_timestamp,omitempty"`
	Device      string        `json:"device"`
	DeviceType  string        `json:"device_type,omitempty"`
	Operation   string        `json:"operation"`
	ConfigChange bool         `json:"config_change"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// EventType categorizes audit events.
type EventType string

const (
	EventTypeBackup   EventType = "backup"
	EventTypeDeploy   EventType = "deploy"
	EventTypeUpgrade  EventType = "upgrade"
	EventTypeDNSCheck EventType = "dnscheck"
)

// Severity indicates the importance of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Filter defines criteria for querying audit events.
type Filter struct {
	Device      string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event for a device operation.
func NewEvent(device, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		Device:    device,
		Operation: operation,
	}
}

// WithDeviceType sets the device type.
func (e *Event) WithDeviceType(deviceType string) *Event {
	e.DeviceType = deviceType
	return e
}

// WithSnapshotTimestamp sets the job-wide snapshot timestamp.
func (e *Event) WithSnapshotTimestamp(ts int64) *Event {
	e.SnapshotTS = ts
	return e
}

// WithConfigChange records whether the Change Detector found a difference.
func (e *Event) WithConfigChange(changed bool) *Event {
	e.ConfigChange = changed
	return e
}

// WithSuccess marks the event as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
