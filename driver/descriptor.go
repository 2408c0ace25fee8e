package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/firmware"
	"github.com/gwcore/zigbeedriver/types"
)

// ApplyDescriptor re-applies a (possibly updated) device descriptor to an
// already-paired device, re-comparing firmware versions and scheduling an
// upgrade if warranted (spec.md §4.6). The upper driver's
// FirmwareUpgradeRequired hook, if set, may veto the comparison entirely.
func (d *Driver) ApplyDescriptor(ctx context.Context, eui types.EUI64, desc descriptor.DeviceDescriptor) error {
	device, found, err := d.st.GetDevice(ctx, eui)
	if err != nil {
		return fmt.Errorf("driver: load device %s: %w", eui, err)
	}
	if !found {
		return fmt.Errorf("driver: apply descriptor: unknown device %s", eui)
	}

	if d.hooks.FirmwareUpgradeRequired != nil && !d.hooks.FirmwareUpgradeRequired(ctx, eui, desc) {
		return nil
	}

	ep := device.FirstEndpoint()
	if ep == nil {
		return nil
	}

	err = d.firmware.CompareAndSchedule(ctx, eui, ep.Number, desc)
	switch {
	case errors.Is(err, firmware.ErrNoUpdate), errors.Is(err, firmware.ErrUpgradeInProgress):
		return nil
	case err != nil:
		return fmt.Errorf("driver: schedule firmware upgrade for %s: %w", eui, err)
	}
	return nil
}
