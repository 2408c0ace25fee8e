package hal

import (
	"context"

	"github.com/gwcore/zigbeedriver/types"
)

// HAL is the byte-level Zigbee hardware abstraction layer the driver
// runtime consumes. It is an external collaborator: this module never
// implements the wire format, only the boundary it calls across. A HAL
// implementation serializes inbound frame delivery per device and blocks
// the calling goroutine until the lower stack completes or errors.
type HAL interface {
	// SendClusterCommand issues a cluster command to a device endpoint.
	// When mfgSpecific is false, mfgID is ignored.
	SendClusterCommand(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16, commandID byte, payload []byte, mfgSpecific bool, mfgID uint16) error

	// ReadAttributeAsNumber reads a single attribute and returns it
	// widened to an int64, regardless of its wire width or signedness.
	ReadAttributeAsNumber(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16) (int64, error)

	// WriteAttribute writes a single attribute of the given data type.
	WriteAttribute(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16, dataType AttributeDataType, value int64) error

	// ConfigureAttributeReporting installs a reporting configuration for
	// one attribute. reportableChange is ignored for boolean/enum types.
	ConfigureAttributeReporting(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16, minIntervalSecs, maxIntervalSecs uint16, reportableChange int64) error

	// SetBinding establishes a cluster binding between the device
	// endpoint and the runtime's own endpoint.
	SetBinding(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16) error

	// RequestLeave issues a factory-reset-and-leave to the device.
	RequestLeave(ctx context.Context, eui types.EUI64, endpoint byte) error

	// PerformEnergyScan runs one energy scan on a single channel and
	// returns the observed sample. scanCount mirrors the HAL's own
	// scan-count parameter (the spec's channel scanner always passes 1).
	PerformEnergyScan(ctx context.Context, channel byte, scanCount int, scanDurationMs int, scansPerChannel int) (EnergyScanSample, error)

	// RefreshFirmwareIndex reloads the HAL's view of available OTA
	// firmware images, used before comparing installed-vs-latest.
	RefreshFirmwareIndex(ctx context.Context) error

	// EnumerateAttributeInfos walks the attribute ids advertised by a
	// cluster on a device endpoint, used during pairing to populate the
	// discovered-device record's inventory.
	EnumerateAttributeInfos(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16) ([]AttributeInfo, error)
}
