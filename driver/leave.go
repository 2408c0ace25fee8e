package driver

import (
	"context"
	"fmt"

	"github.com/gwcore/zigbeedriver/events"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// HandleRejoin records a device rejoin with the event tracker and notifies
// the upper driver.
func (d *Driver) HandleRejoin(eui types.EUI64, secure bool) {
	d.tracker.RecordRejoin(eui, secure)
	if d.hooks.DeviceRejoined != nil {
		d.hooks.DeviceRejoined(eui, secure)
	}
}

// HandleLeave notifies the upper driver that a device left the network on
// its own (a unilateral leave, as opposed to Remove's operator-initiated
// removal). It does not remove the device's persisted record: that is the
// upper driver's call, made via Remove once it decides the departure is
// permanent.
func (d *Driver) HandleLeave(eui types.EUI64) {
	if d.hooks.DeviceLeft != nil {
		d.hooks.DeviceLeft(eui)
	}
}

// Remove permanently removes a paired device: it stops comm-fail
// monitoring and firmware upgrade activity, tears down per-device cluster
// state, evicts the discovered-device cache entry, and deletes the
// persisted device record, bracketed by the upper driver's
// PreDeviceRemoved/PostDeviceRemoved hooks.
func (d *Driver) Remove(ctx context.Context, eui types.EUI64) error {
	if d.hooks.PreDeviceRemoved != nil {
		d.hooks.PreDeviceRemoved(ctx, eui)
	}

	d.firmware.Cancel(eui)
	d.commfail.Disarm(eui)
	d.registry.Destroy(eui)
	d.cache.evict(eui)

	if err := d.st.RemoveDevice(ctx, eui); err != nil {
		return fmt.Errorf("driver: remove device %s: %w", eui, err)
	}

	if d.hooks.PostDeviceRemoved != nil {
		d.hooks.PostDeviceRemoved(ctx, eui)
	}
	return nil
}

// HandleFirmwareVersionNotify processes the HAL's report that a device has
// rebooted on new firmware (spec.md §4.6 step 5): it updates the persisted
// firmwareVersion resource and, if the version actually changed, marks the
// upgrade complete and publishes a completion event.
func (d *Driver) HandleFirmwareVersionNotify(ctx context.Context, eui types.EUI64, newVersion uint32) error {
	id := eui.String()
	prevSpec, found, err := d.st.GetResource(ctx, id, types.ResourceFirmwareVersion)
	if err != nil {
		return fmt.Errorf("driver: read firmware version for %s: %w", eui, err)
	}

	newValue := types.FormatFirmwareVersion(newVersion)
	if err := d.st.SetResource(ctx, id, types.ResourceFirmwareVersion, newValue, store.ChangeOriginDevice); err != nil {
		return fmt.Errorf("driver: persist firmware version for %s: %w", eui, err)
	}

	if found && prevSpec.Value == newValue {
		return nil
	}

	if err := d.st.SetResource(ctx, id, types.ResourceFirmwareUpdateStatus, types.FirmwareStatusCompleted, store.ChangeOriginDriver); err != nil {
		d.logger.Warnf("driver: set firmwareUpdateStatus for %s: %v", eui, err)
	}

	if d.bus != nil {
		d.bus.Publish(events.NewFirmwareUpgradeEvent(id, newVersion))
	}
	return nil
}

// WaitForFirmwareShutdown blocks until every in-flight firmware upgrade
// marked blocking has completed (spec.md §4.6 step 6).
func (d *Driver) WaitForFirmwareShutdown() {
	d.firmware.WaitForShutdown()
}
