package types

import "strconv"

// ResourceMode is a bitmask of the capabilities a resource exposes.
type ResourceMode uint8

const (
	// ResourceReadable allows the resource to be read.
	ResourceReadable ResourceMode = 1 << iota
	// ResourceWritable allows the resource to be written.
	ResourceWritable
	// ResourceExecutable allows the resource to be invoked as an action.
	ResourceExecutable
	// ResourceDynamic indicates the resource's value changes without an
	// explicit write (e.g. a sensor reading).
	ResourceDynamic
	// ResourceEmitsEvents indicates writes/updates to the resource should
	// be published as events to upper-layer subscribers.
	ResourceEmitsEvents
	// ResourceLazySave indicates the resource's value need not be
	// persisted immediately on every update.
	ResourceLazySave
)

// Has reports whether the mode includes the given flag.
func (m ResourceMode) Has(flag ResourceMode) bool {
	return m&flag != 0
}

// ResourceSpec describes a resource on a device or endpoint, as supplied
// by the driver's Hooks.RegisterResources during pairing and as returned
// by Store.GetResource and Store.ListResources. Value is the resource's
// value, already formatted as the store expects (decimal string, JSON
// blob, label text, ...).
type ResourceSpec struct {
	Name  string
	Value string
	Mode  ResourceMode
}

// FormatSignedReading formats a signed integer reading (e.g. RSSI, signed
// temperature) as the base-10 string the store and dispatch path persist
// resource values as.
func FormatSignedReading(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// FormatUnsignedReading formats an unsigned integer reading (e.g. LQI) as
// the base-10 string the store persists resource values as.
func FormatUnsignedReading(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

// FormatBool formats a boolean resource value the way the store expects:
// the literal strings "true"/"false".
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Well-known common resource names shared by every device type, registered
// during fetchInitialResourceValues/registerResources (spec.md §4.2 steps
// 9-10).
const (
	ResourceLabel                    = "label"
	ResourceFeRSSI                   = "feRssi"
	ResourceFeLQI                    = "feLqi"
	ResourceNearEndRSSI              = "nearEndRssi"
	ResourceNearEndLQI               = "nearEndLqi"
	ResourceTemperature              = "temperature"
	ResourceHighTemperature          = "highTemperature"
	ResourceBatteryLow               = "batteryLow"
	ResourceBatteryVoltage           = "batteryVoltage"
	ResourceMainsDisconnected        = "mainsDisconnected"
	ResourceBatteryBad               = "batteryBad"
	ResourceBatteryMissing           = "batteryMissing"
	ResourceBatteryHighTemperature   = "batteryHighTemperature"
	ResourceBatteryPercentRemaining  = "batteryPercentageRemaining"
	ResourceLastUserInteractionDate  = "lastUserInteractionDate"
	ResourceCommFailure              = "commFailure"
	ResourceFirmwareVersion          = "firmwareVersion"
	ResourceFirmwareUpdateStatus     = "firmwareUpdateStatus"
)

// Firmware update status values for the firmwareUpdateStatus resource.
const (
	FirmwareStatusPending   = "pending"
	FirmwareStatusStarted   = "started"
	FirmwareStatusCompleted = "completed"
	FirmwareStatusFailed    = "failed"
	FirmwareStatusUpToDate  = "upToDate"
)

// Metadata holds opaque string key/value pairs attached to a device or
// endpoint. Two keys are reserved by the runtime: MetadataZigbeeEndpointID
// and MetadataDiscoveredDetails.
type Metadata map[string]string

const (
	// MetadataZigbeeEndpointID holds the decimal Zigbee endpoint number.
	// It is set once at endpoint creation and never changes afterward.
	MetadataZigbeeEndpointID = "zigbee_epid"

	// MetadataDiscoveredDetails holds the JSON-serialized discovered
	// device record (see DiscoveredDeviceRecord). It exists for every
	// persisted device.
	MetadataDiscoveredDetails = "discoveredDetails"
)

// Clone returns a deep copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
