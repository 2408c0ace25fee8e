package driver

import (
	"context"

	"github.com/gwcore/zigbeedriver/cluster"
	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Hooks is the per-driver interface the upper, device-type-specific
// driver implements (spec.md §6, "Per-driver interface"). Every field is
// optional; a nil hook is simply skipped.
type Hooks struct {
	// Claim offers a freshly discovered device to the upper driver before
	// the runtime falls back to matching the first endpoint's
	// application device id against AppDeviceIDs (spec.md §4.2 step 2).
	// Returning false leaves the decision to that fallback.
	Claim func(discovered types.DiscoveredDeviceRecord) bool

	// ConfigureDevice runs after cluster configuration, before resource
	// registration (spec.md §4.2 step 8).
	ConfigureDevice func(ctx context.Context, eui types.EUI64, discovered types.DiscoveredDeviceRecord) error

	// FetchInitialResourceValues supplies driver-specific initial
	// resource values, merged with the runtime's common defaults
	// (spec.md §4.2 step 9). Driver-supplied values win on conflict.
	FetchInitialResourceValues func(ctx context.Context, eui types.EUI64) map[string]string

	// RegisterResources supplies driver-specific resource specs, merged
	// with the runtime's common resource set (spec.md §4.2 step 10).
	// Driver-supplied specs win on conflict.
	RegisterResources func(ctx context.Context, eui types.EUI64) []types.ResourceSpec

	// DevicePersisted runs once the device is fully paired, configured,
	// and persisted (spec.md §4.2 step 11).
	DevicePersisted func(ctx context.Context, eui types.EUI64)

	// ReadDeviceResource and ReadEndpointResource serve driver-specific
	// resource reads the store cannot answer directly.
	ReadDeviceResource   func(ctx context.Context, eui types.EUI64, name string) (string, bool, error)
	ReadEndpointResource func(ctx context.Context, eui types.EUI64, endpoint byte, name string) (string, bool, error)

	// WriteDeviceResource and WriteEndpointResource handle
	// driver-specific resource writes.
	WriteDeviceResource   func(ctx context.Context, eui types.EUI64, name, value string) error
	WriteEndpointResource func(ctx context.Context, eui types.EUI64, endpoint byte, name, value string) error

	// ExecuteDeviceResource and ExecuteEndpointResource invoke an
	// executable resource as an action.
	ExecuteDeviceResource   func(ctx context.Context, eui types.EUI64, name string, args map[string]string) error
	ExecuteEndpointResource func(ctx context.Context, eui types.EUI64, endpoint byte, name string, args map[string]string) error

	// DeviceRejoined and DeviceLeft notify of network membership changes.
	DeviceRejoined func(eui types.EUI64, secure bool)
	DeviceLeft     func(eui types.EUI64)

	// CommunicationFailed and CommunicationRestored mirror the comm-fail
	// watchdog's transitions (spec.md §4.5).
	CommunicationFailed   func(eui types.EUI64)
	CommunicationRestored func(eui types.EUI64)

	// EnhancedCheckin delivers a mfg-specific enhanced check-in's opaque
	// BatterySavingData payload; only the upper driver knows its layout
	// (spec.md §4.4).
	EnhancedCheckin func(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte)

	// PreConfigureCluster vetoes a particular cluster's configuration for
	// a particular endpoint (spec.md §4.1's "pre-configure hook").
	PreConfigureCluster cluster.VetoFunc

	// PreDeviceRemoved and PostDeviceRemoved bracket device removal.
	PreDeviceRemoved  func(ctx context.Context, eui types.EUI64)
	PostDeviceRemoved func(ctx context.Context, eui types.EUI64)

	// SystemPowerEvent notifies of a host power-state transition.
	SystemPowerEvent func(poweredOn bool)

	// HandlePropertyChanged is the upper driver's handler for a
	// configuration property change. The runtime never invokes it, and it
	// does not forward property changes to the event tracker's channel
	// scanner.
	HandlePropertyChanged func(key, value string)

	// FetchRuntimeStats supplies driver-specific diagnostic counters for
	// a status dump.
	FetchRuntimeStats func(ctx context.Context) map[string]string

	// FirmwareUpgradeRequired lets the upper driver veto an
	// otherwise-warranted firmware upgrade before it is scheduled.
	FirmwareUpgradeRequired func(ctx context.Context, eui types.EUI64, desc descriptor.DeviceDescriptor) bool

	// InitiateFirmwareUpgrade overrides the runtime's default
	// image-notify upgrade kickoff (spec.md §4.6 step 4, "otherwise send
	// an OTA image-notify").
	InitiateFirmwareUpgrade func(ctx context.Context, eui types.EUI64, endpoint byte, desc descriptor.DeviceDescriptor) error

	// FirmwareUpgradeFailed notifies of a download or image-notify
	// failure before a retry is scheduled.
	FirmwareUpgradeFailed func(eui types.EUI64, err error)

	// MapDeviceIDToProfile maps an endpoint's application device id to a
	// driver-specific profile tag, populating DeviceFoundDetails'
	// EndpointProfiles (spec.md §4.2 step 4).
	MapDeviceIDToProfile func(appDeviceID uint16) (string, bool)

	// DeviceNeedsReconfiguring reports whether a previously-paired
	// device must re-run cluster configuration.
	DeviceNeedsReconfiguring func(ctx context.Context, eui types.EUI64) bool

	// SubsystemInitialized notifies once every subsystem has been wired
	// together and the driver is ready to pair devices.
	SubsystemInitialized func()

	// HandleAttributeReport and HandleCommand are unconditionally invoked
	// after cluster-registry dispatch for every inbound frame, regardless
	// of whether a registered cluster handled it (spec.md §4.3 step 3).
	HandleAttributeReport func(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error
	HandleCommand         func(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error

	// IsSensorClass reports whether a device is sensor-class, which the
	// event tracker's attribute-report recording excludes (spec.md §4.7).
	// A nil hook treats every device as non-sensor.
	IsSensorClass func(eui types.EUI64) bool
}
