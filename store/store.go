package store

import (
	"context"
	"time"

	"github.com/gwcore/zigbeedriver/types"
)

// ChangeOrigin hints at why a resource value changed, so the upper driver
// and any UI layered above the store can distinguish a device-reported
// value from a user-initiated write.
type ChangeOrigin int

const (
	// ChangeOriginDevice marks a value update sourced from the device
	// itself (an attribute report, a poll response).
	ChangeOriginDevice ChangeOrigin = iota
	// ChangeOriginDriver marks a value update the driver computed or
	// derived locally (e.g. commFailure toggled by the watchdog).
	ChangeOriginDriver
	// ChangeOriginUser marks a value update requested by an operator or
	// upper-layer API call.
	ChangeOriginUser
)

// DeviceFoundDetails is the record the pairing pipeline hands to the
// device-service store to request acceptance of a newly discovered
// device (spec.md §4.2 step 4).
type DeviceFoundDetails struct {
	DeviceClass        string
	DeviceClassVersion int
	ID                 string
	Manufacturer       string
	Model              string
	HardwareVersion    string
	FirmwareVersion    string
	// EndpointProfiles maps endpoint id to the upper driver's profile
	// tag, populated only when the driver supplies a mapping function.
	EndpointProfiles map[byte]string
}

// Store is the persistence boundary the driver runtime consumes. It is an
// external collaborator (spec.md §1): this module never implements it,
// only calls across it. Implementations must serialize concurrent access
// themselves; every method here may be called from arbitrary goroutines.
type Store interface {
	// GetDevice returns the persisted device record for eui, or false if
	// none exists.
	GetDevice(ctx context.Context, eui types.EUI64) (*types.Device, bool, error)
	// SetDevice persists a device record, creating or replacing it.
	SetDevice(ctx context.Context, device *types.Device) error
	// ListDevices returns every persisted device.
	ListDevices(ctx context.Context) ([]*types.Device, error)
	// RemoveDevice deletes a device and all of its endpoints, resources,
	// and metadata.
	RemoveDevice(ctx context.Context, eui types.EUI64) error

	// GetResource returns the named resource attached to id (a device or
	// device/endpoint-qualified id).
	GetResource(ctx context.Context, id, name string) (types.ResourceSpec, bool, error)
	// SetResource creates or updates a resource's value.
	SetResource(ctx context.Context, id, name, value string, origin ChangeOrigin) error
	// ListResources returns every resource attached to id.
	ListResources(ctx context.Context, id string) ([]types.ResourceSpec, error)
	// ResourceAge returns how long it has been since name on id was last
	// set, used by the poll-control coordinator's staleness checks
	// (spec.md §4.4).
	ResourceAge(ctx context.Context, id, name string) (time.Duration, error)

	// GetMetadata returns one metadata value attached to id.
	GetMetadata(ctx context.Context, id, key string) (string, bool, error)
	// SetMetadata creates or updates a metadata value.
	SetMetadata(ctx context.Context, id, key, value string) error
	// ListMetadata returns every metadata key/value pair attached to id.
	ListMetadata(ctx context.Context, id string) (map[string]string, error)

	// EmitDeviceFound offers a newly discovered device to the upper
	// device-service layer for acceptance (spec.md §4.2 step 5). A false
	// return means the device was rejected, not an error.
	EmitDeviceFound(ctx context.Context, details DeviceFoundDetails) (accepted bool, err error)
}
