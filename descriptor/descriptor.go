package descriptor

import (
	"context"
	"errors"

	"dario.cat/mergo"
)

// ErrNotFound is returned by Descriptors.Lookup when no descriptor matches
// the requested manufacturer/model/hardware tuple.
var ErrNotFound = errors.New("descriptor: not found")

// FirmwareMetadata is the latest-firmware portion of a device descriptor,
// compared against a device's installed firmware resource by the
// upgrade orchestrator (spec.md §4.6).
type FirmwareMetadata struct {
	Version   uint32
	Filenames []string
	BaseURL   string
}

// DeviceDescriptor carries the latest-firmware metadata and per-device
// configuration overrides for a manufacturer/model/hardware/firmware
// tuple, consumed during cluster configuration (spec.md §4.1) and
// firmware-upgrade comparison (spec.md §4.6).
type DeviceDescriptor struct {
	Manufacturer    string
	Model           string
	HardwareVersion int

	LatestFirmware FirmwareMetadata

	// ConfigurationMetadata carries cluster configuration defaults, e.g.
	// poll-control intervals (spec.md §4.1's "Poll Control... Values
	// taken from device-descriptor metadata with fall-back to
	// configuration metadata").
	ConfigurationMetadata map[string]string

	// Overrides carries per-device refresh-threshold and other
	// metadata-keyed overrides (spec.md §6, "<resource>.RefreshMinSecs").
	Overrides map[string]string
}

// Clone returns a deep copy of the descriptor. The pairing pipeline and
// firmware upgrade job each own an independent clone (spec.md §3,
// "Firmware upgrade job: {..., descriptor clone, ...}"); a failure here is
// a programmer-contract error (spec.md §7) since descriptors are expected
// to be plain data.
func (d DeviceDescriptor) Clone() (DeviceDescriptor, error) {
	out := DeviceDescriptor{
		Manufacturer:    d.Manufacturer,
		Model:           d.Model,
		HardwareVersion: d.HardwareVersion,
		LatestFirmware: FirmwareMetadata{
			Version: d.LatestFirmware.Version,
			BaseURL: d.LatestFirmware.BaseURL,
		},
	}
	out.LatestFirmware.Filenames = append([]string(nil), d.LatestFirmware.Filenames...)
	if err := mergo.Merge(&out.ConfigurationMetadata, d.ConfigurationMetadata, mergo.WithOverride); err != nil {
		return DeviceDescriptor{}, errors.New("descriptor: uncloneable configuration metadata")
	}
	if err := mergo.Merge(&out.Overrides, d.Overrides, mergo.WithOverride); err != nil {
		return DeviceDescriptor{}, errors.New("descriptor: uncloneable overrides")
	}
	return out, nil
}

// ConfigValue looks up key first in Overrides, falling back to
// ConfigurationMetadata, matching the cluster-configure fall-back order
// described in spec.md §4.1.
func (d DeviceDescriptor) ConfigValue(key string) (string, bool) {
	if v, ok := d.Overrides[key]; ok {
		return v, true
	}
	v, ok := d.ConfigurationMetadata[key]
	return v, ok
}

// Descriptors is the device-descriptor repository the driver runtime
// consumes. It is an external collaborator (spec.md §1): this module
// never implements it.
type Descriptors interface {
	// Lookup returns the descriptor for a manufacturer/model/hardware/
	// firmware tuple, or ErrNotFound.
	Lookup(ctx context.Context, manufacturer, model string, hardwareVersion int, firmwareVersion uint32) (DeviceDescriptor, error)
}
