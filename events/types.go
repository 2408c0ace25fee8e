package events

import "time"

// EventType identifies the type of event.
type EventType string

const (
	// EventTypeAttributeReport indicates a non-sensor-class device
	// reported one or more attribute values.
	EventTypeAttributeReport EventType = "attribute_report"

	// EventTypeRejoin indicates a device rejoined the network.
	EventTypeRejoin EventType = "rejoin"

	// EventTypeCheckin indicates a sleepy device checked in.
	EventTypeCheckin EventType = "checkin"

	// EventTypeEnergyScan indicates a channel energy scan sample was
	// recorded.
	EventTypeEnergyScan EventType = "energy_scan"

	// EventTypeFirmwareUpgrade indicates a device's firmware version
	// resource changed following an OTA upgrade (spec.md §4.6 step 5,
	// "if the version string changed, emits a completion event").
	EventTypeFirmwareUpgrade EventType = "firmware_upgrade"
)

// Event is the interface implemented by all event types.
type Event interface {
	// Type returns the event type.
	Type() EventType

	// DeviceID returns the device's EUI64, hex-encoded.
	DeviceID() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	eventType EventType
	deviceID  string
	timestamp time.Time
}

// Type returns the event type.
func (e *BaseEvent) Type() EventType {
	return e.eventType
}

// DeviceID returns the device identifier.
func (e *BaseEvent) DeviceID() string {
	return e.deviceID
}

// Timestamp returns when the event occurred.
func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// AttributeReportEvent represents one inbound attribute report recorded by
// the event tracker.
type AttributeReportEvent struct {
	BaseEvent

	ClusterID   uint16 `json:"clusterId"`
	AttributeID uint16 `json:"attributeId"`
	RawValue    []byte `json:"rawValue"`
}

// NewAttributeReportEvent creates a new attribute report event.
func NewAttributeReportEvent(deviceID string, clusterID, attributeID uint16, rawValue []byte) *AttributeReportEvent {
	return &AttributeReportEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeAttributeReport,
			deviceID:  deviceID,
			timestamp: time.Now(),
		},
		ClusterID:   clusterID,
		AttributeID: attributeID,
		RawValue:    rawValue,
	}
}

// RejoinEvent represents a device rejoining the network.
type RejoinEvent struct {
	BaseEvent

	// Secure indicates the rejoin used network-key-secured rejoin rather
	// than an insecure (unencrypted) one.
	Secure bool `json:"secure"`
}

// NewRejoinEvent creates a new rejoin event.
func NewRejoinEvent(deviceID string, secure bool) *RejoinEvent {
	return &RejoinEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeRejoin,
			deviceID:  deviceID,
			timestamp: time.Now(),
		},
		Secure: secure,
	}
}

// CheckinEvent represents a sleepy device's check-in.
type CheckinEvent struct {
	BaseEvent

	// Enhanced indicates the check-in carried an upper-driver-consumed
	// payload rather than the vanilla Poll Control check-in.
	Enhanced bool `json:"enhanced"`
}

// NewCheckinEvent creates a new check-in event.
func NewCheckinEvent(deviceID string, enhanced bool) *CheckinEvent {
	return &CheckinEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeCheckin,
			deviceID:  deviceID,
			timestamp: time.Now(),
		},
		Enhanced: enhanced,
	}
}

// FirmwareUpgradeEvent represents a device's installed firmware version
// changing, reported once the HAL observes the device back on the
// network after an OTA upgrade.
type FirmwareUpgradeEvent struct {
	BaseEvent

	NewVersion uint32 `json:"newVersion"`
}

// NewFirmwareUpgradeEvent creates a new firmware upgrade completion event.
func NewFirmwareUpgradeEvent(deviceID string, newVersion uint32) *FirmwareUpgradeEvent {
	return &FirmwareUpgradeEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeFirmwareUpgrade,
			deviceID:  deviceID,
			timestamp: time.Now(),
		},
		NewVersion: newVersion,
	}
}

// EnergyScanEvent represents one channel's latest energy scan sample. It
// is process-wide rather than per-device; DeviceID is always empty.
type EnergyScanEvent struct {
	BaseEvent

	Channel  byte    `json:"channel"`
	MinRSSI  int32   `json:"minRssi"`
	MaxRSSI  int32   `json:"maxRssi"`
	MeanRSSI float64 `json:"meanRssi"`
}

// NewEnergyScanEvent creates a new energy scan event.
func NewEnergyScanEvent(channel byte, minRSSI, maxRSSI int32, meanRSSI float64) *EnergyScanEvent {
	return &EnergyScanEvent{
		BaseEvent: BaseEvent{
			eventType: EventTypeEnergyScan,
			timestamp: time.Now(),
		},
		Channel:  channel,
		MinRSSI:  minRSSI,
		MaxRSSI:  maxRSSI,
		MeanRSSI: meanRSSI,
	}
}
