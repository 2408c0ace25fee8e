package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"dario.cat/mergo"

	"github.com/gwcore/zigbeedriver/cluster"
	"github.com/gwcore/zigbeedriver/firmware"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// Pair runs the full claim/pairing pipeline for a freshly discovered
// device (spec.md §4.2). active reports whether discovery is currently
// running; when false and migrating is false, the record is ignored.
// migrating suppresses the factory-reset-and-leave that otherwise follows
// a rejection, since a migrating device is being handed to a different
// driver rather than actually leaving the network.
func (d *Driver) Pair(ctx context.Context, discovered types.DiscoveredDeviceRecord, active, migrating bool) (accepted bool, err error) {
	// Step 1: ignore discovery records while discovery isn't active,
	// unless this is a migration replay.
	if !active && !migrating {
		return false, nil
	}

	// Step 2: claim.
	if !d.claims(discovered) {
		return false, nil
	}

	// Step 3: clone the record into the discovered-device cache.
	eui, err := d.cache.put(discovered)
	if err != nil {
		return false, err
	}

	// Step 4-5: offer to the device-service store for acceptance.
	details := d.buildDeviceFoundDetails(discovered)
	acceptedByStore, err := d.st.EmitDeviceFound(ctx, details)
	if err != nil {
		d.rejectPairing(discovered, eui, migrating)
		return false, err
	}
	if !acceptedByStore {
		d.rejectPairing(discovered, eui, migrating)
		return false, nil
	}

	if err := d.finishPairing(ctx, eui, discovered); err != nil {
		d.rejectPairing(discovered, eui, migrating)
		return false, err
	}
	return true, nil
}

// claims decides whether this driver owns a freshly discovered device: the
// upper driver's Claim hook gets first say, and an unclaimed record falls
// back to matching the first endpoint's application device id against the
// driver's configured set (spec.md §4.2 step 2).
func (d *Driver) claims(discovered types.DiscoveredDeviceRecord) bool {
	if d.hooks.Claim != nil && d.hooks.Claim(discovered) {
		return true
	}
	if len(discovered.Endpoints) == 0 {
		return false
	}
	return d.appDeviceIDs[discovered.Endpoints[0].AppDeviceID]
}

func (d *Driver) buildDeviceFoundDetails(discovered types.DiscoveredDeviceRecord) store.DeviceFoundDetails {
	details := store.DeviceFoundDetails{
		DeviceClass:        d.deviceClass,
		DeviceClassVersion: d.deviceClassVersion,
		ID:                 discovered.EUI64,
		Manufacturer:       discovered.Manufacturer,
		Model:              discovered.Model,
		HardwareVersion:    strconv.Itoa(discovered.HardwareVersion),
		FirmwareVersion:    types.FormatFirmwareVersion(discovered.FirmwareVersion),
	}
	if d.hooks.MapDeviceIDToProfile == nil {
		return details
	}
	profiles := make(map[byte]string)
	for _, ep := range discovered.Endpoints {
		if tag, ok := d.hooks.MapDeviceIDToProfile(ep.AppDeviceID); ok {
			profiles[ep.EndpointID] = tag
		}
	}
	if len(profiles) > 0 {
		details.EndpointProfiles = profiles
	}
	return details
}

// rejectPairing evicts eui from the discovered-device cache and, unless
// this pairing attempt was a migration, schedules a best-effort
// factory-reset-and-leave on a background goroutine (spec.md §4.2 step 5:
// "if rejected, evict from cache [and] leave the network").
func (d *Driver) rejectPairing(discovered types.DiscoveredDeviceRecord, eui types.EUI64, migrating bool) {
	d.cache.evict(eui)
	d.firmware.Cancel(eui)
	if migrating || len(discovered.Endpoints) == 0 {
		return
	}
	endpoint := discovered.Endpoints[0].EndpointID
	go func() {
		if err := d.hw.RequestLeave(context.Background(), eui, endpoint); err != nil {
			d.logger.Warnf("driver: reset-and-leave for rejected device %s: %v", eui, err)
		}
	}()
}

// finishPairing runs steps 6-11 of the pairing pipeline: attribute
// inventory discovery, descriptor lookup, cluster configuration, resource
// registration, persistence, and comm-fail/firmware activation.
func (d *Driver) finishPairing(ctx context.Context, eui types.EUI64, discovered types.DiscoveredDeviceRecord) error {
	// Step 6: attribute-id inventory discovery.
	discovered = discoverAttributes(ctx, d.hw, eui, discovered)
	d.cache.replace(eui, discovered)

	desc, err := d.descriptors.Lookup(ctx, discovered.Manufacturer, discovered.Model, discovered.HardwareVersion, discovered.FirmwareVersion)
	if err != nil {
		return fmt.Errorf("driver: descriptor lookup for %s: %w", eui, err)
	}

	device, err := buildDevice(discovered)
	if err != nil {
		return err
	}

	configMetadata, err := d.st.ListMetadata(ctx, eui.String())
	if err != nil {
		return fmt.Errorf("driver: load configuration metadata for %s: %w", eui, err)
	}

	// Step 7: cluster configuration, endpoint by endpoint, priority order.
	for _, ep := range device.Endpoints {
		if err := d.registry.Configure(ctx, d.hw, ep, desc, discovered, configMetadata, d.hooks.PreConfigureCluster); err != nil {
			return fmt.Errorf("driver: configure %s endpoint %d: %w", eui, ep.Number, err)
		}
	}

	// Step 8: optional upper-driver device configuration.
	if d.hooks.ConfigureDevice != nil {
		if err := d.hooks.ConfigureDevice(ctx, eui, discovered); err != nil {
			return fmt.Errorf("driver: configureDevice for %s: %w", eui, err)
		}
	}

	// Step 9: fetch and merge initial resource values.
	initial, err := d.fetchInitialResourceValues(ctx, eui, device)
	if err != nil {
		return err
	}

	// Step 10: register the merged common + driver-specific resource set.
	if err := d.registerResources(ctx, eui, device, initial); err != nil {
		return err
	}

	// Step 11: persist the device, arm comm-fail monitoring, compare
	// firmware, and notify the upper driver.
	if err := d.st.SetDevice(ctx, device); err != nil {
		return fmt.Errorf("driver: persist device %s: %w", eui, err)
	}
	if err := d.persistDiscoveryMetadata(ctx, eui, discovered, device); err != nil {
		return err
	}

	d.commfail.Arm(eui)

	if firstEP := device.FirstEndpoint(); firstEP != nil {
		err := d.firmware.CompareAndSchedule(ctx, eui, firstEP.Number, desc)
		if err != nil && !errors.Is(err, firmware.ErrNoUpdate) && !errors.Is(err, firmware.ErrUpgradeInProgress) {
			d.logger.Warnf("driver: firmware compare for %s: %v", eui, err)
		}
	}

	if d.hooks.DevicePersisted != nil {
		d.hooks.DevicePersisted(ctx, eui)
	}
	return nil
}

// fetchInitialResourceValues builds the common set of initial resource
// values (spec.md §4.2 step 9) and merges in any driver-specific values,
// which win on conflict.
func (d *Driver) fetchInitialResourceValues(ctx context.Context, eui types.EUI64, device *types.Device) (map[string]string, error) {
	common := map[string]string{
		types.ResourceNearEndRSSI: "null",
		types.ResourceNearEndLQI:  "null",
	}
	if deviceHasCluster(device, cluster.IDPowerConfiguration) {
		common[types.ResourceBatteryLow] = types.FormatBool(false)
		common[types.ResourceBatteryBad] = types.FormatBool(false)
		common[types.ResourceBatteryMissing] = types.FormatBool(false)
		common[types.ResourceMainsDisconnected] = types.FormatBool(false)
	}

	if d.hooks.FetchInitialResourceValues == nil {
		return common, nil
	}
	driverValues := d.hooks.FetchInitialResourceValues(ctx, eui)
	if err := mergo.Merge(&common, driverValues, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("driver: merge initial resource values for %s: %w", eui, err)
	}
	return common, nil
}

// registerResources builds the common resource spec set (spec.md §4.2
// step 10) and merges in any driver-specific specs, keyed by resource
// name, which win on conflict.
func (d *Driver) registerResources(ctx context.Context, eui types.EUI64, device *types.Device, initial map[string]string) error {
	label := defaultLabel(device.Manufacturer, eui)
	common := map[string]types.ResourceSpec{
		types.ResourceLabel:                   {Name: types.ResourceLabel, Value: label, Mode: types.ResourceReadable},
		types.ResourceFeRSSI:                  {Name: types.ResourceFeRSSI, Value: initial[types.ResourceFeRSSI], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceFeLQI:                   {Name: types.ResourceFeLQI, Value: initial[types.ResourceFeLQI], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceNearEndRSSI:              {Name: types.ResourceNearEndRSSI, Value: initial[types.ResourceNearEndRSSI], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceNearEndLQI:               {Name: types.ResourceNearEndLQI, Value: initial[types.ResourceNearEndLQI], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceTemperature:              {Name: types.ResourceTemperature, Value: initial[types.ResourceTemperature], Mode: types.ResourceReadable | types.ResourceDynamic | types.ResourceEmitsEvents},
		types.ResourceHighTemperature:          {Name: types.ResourceHighTemperature, Value: initial[types.ResourceHighTemperature], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceBatteryLow:               {Name: types.ResourceBatteryLow, Value: initial[types.ResourceBatteryLow], Mode: types.ResourceReadable | types.ResourceDynamic | types.ResourceEmitsEvents},
		types.ResourceBatteryVoltage:           {Name: types.ResourceBatteryVoltage, Value: initial[types.ResourceBatteryVoltage], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceMainsDisconnected:        {Name: types.ResourceMainsDisconnected, Value: initial[types.ResourceMainsDisconnected], Mode: types.ResourceReadable | types.ResourceDynamic | types.ResourceEmitsEvents},
		types.ResourceBatteryBad:               {Name: types.ResourceBatteryBad, Value: initial[types.ResourceBatteryBad], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceBatteryMissing:           {Name: types.ResourceBatteryMissing, Value: initial[types.ResourceBatteryMissing], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceBatteryHighTemperature:   {Name: types.ResourceBatteryHighTemperature, Value: initial[types.ResourceBatteryHighTemperature], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceBatteryPercentRemaining:  {Name: types.ResourceBatteryPercentRemaining, Value: initial[types.ResourceBatteryPercentRemaining], Mode: types.ResourceReadable | types.ResourceDynamic},
		types.ResourceLastUserInteractionDate:  {Name: types.ResourceLastUserInteractionDate, Value: initial[types.ResourceLastUserInteractionDate], Mode: types.ResourceReadable | types.ResourceWritable},
	}

	driverResources := make(map[string]types.ResourceSpec)
	if d.hooks.RegisterResources != nil {
		for _, spec := range d.hooks.RegisterResources(ctx, eui) {
			driverResources[spec.Name] = spec
		}
	}
	if err := mergo.Merge(&common, driverResources, mergo.WithOverride); err != nil {
		return fmt.Errorf("driver: merge registered resources for %s: %w", eui, err)
	}

	id := eui.String()
	for name, spec := range common {
		if err := d.st.SetResource(ctx, id, name, spec.Value, store.ChangeOriginDevice); err != nil {
			return fmt.Errorf("driver: register resource %s for %s: %w", name, eui, err)
		}
	}
	return nil
}

// persistDiscoveryMetadata writes the discovered-device record and each
// endpoint's Zigbee endpoint-id metadata, plus the firmwareVersion
// resource, which is not part of the common resource set registered by
// registerResources.
func (d *Driver) persistDiscoveryMetadata(ctx context.Context, eui types.EUI64, discovered types.DiscoveredDeviceRecord, device *types.Device) error {
	raw, err := discovered.MarshalMetadata()
	if err != nil {
		return fmt.Errorf("driver: marshal discovered details for %s: %w", eui, err)
	}
	if err := d.st.SetMetadata(ctx, eui.String(), types.MetadataDiscoveredDetails, raw); err != nil {
		return fmt.Errorf("driver: persist discovered details for %s: %w", eui, err)
	}
	for _, ep := range device.Endpoints {
		epID := fmt.Sprintf("%s/%d", eui.String(), ep.Number)
		if err := d.st.SetMetadata(ctx, epID, types.MetadataZigbeeEndpointID, strconv.Itoa(int(ep.Number))); err != nil {
			return fmt.Errorf("driver: persist endpoint metadata for %s: %w", epID, err)
		}
	}
	return d.st.SetResource(ctx, eui.String(), types.ResourceFirmwareVersion, types.FormatFirmwareVersion(device.FirmwareVersion), store.ChangeOriginDevice)
}

// Reconfigure re-runs cluster configuration for an already-paired device,
// when the upper driver's DeviceNeedsReconfiguring hook says it is
// required (a nil hook always reconfigures). It falls back to the
// persisted discoveredDetails metadata when the device is not currently
// held in the discovered-device cache.
func (d *Driver) Reconfigure(ctx context.Context, eui types.EUI64) error {
	if d.hooks.DeviceNeedsReconfiguring != nil && !d.hooks.DeviceNeedsReconfiguring(ctx, eui) {
		return nil
	}

	device, found, err := d.st.GetDevice(ctx, eui)
	if err != nil {
		return fmt.Errorf("driver: reconfigure: load device %s: %w", eui, err)
	}
	if !found {
		return fmt.Errorf("driver: reconfigure: unknown device %s", eui)
	}

	discovered, ok := d.cache.get(eui)
	if !ok {
		raw, found, err := d.st.GetMetadata(ctx, eui.String(), types.MetadataDiscoveredDetails)
		if err != nil {
			return fmt.Errorf("driver: reconfigure: load discovered details for %s: %w", eui, err)
		}
		if !found {
			return fmt.Errorf("driver: reconfigure: missing discovered-details metadata for %s", eui)
		}
		discovered, err = types.ParseDiscoveredDetails(raw)
		if err != nil {
			return fmt.Errorf("driver: reconfigure: parse discovered details for %s: %w", eui, err)
		}
	}

	desc, err := d.descriptors.Lookup(ctx, discovered.Manufacturer, discovered.Model, discovered.HardwareVersion, discovered.FirmwareVersion)
	if err != nil {
		return fmt.Errorf("driver: reconfigure: descriptor lookup for %s: %w", eui, err)
	}
	configMetadata, err := d.st.ListMetadata(ctx, eui.String())
	if err != nil {
		return fmt.Errorf("driver: reconfigure: load configuration metadata for %s: %w", eui, err)
	}
	for _, ep := range device.Endpoints {
		if err := d.registry.Configure(ctx, d.hw, ep, desc, discovered, configMetadata, d.hooks.PreConfigureCluster); err != nil {
			return fmt.Errorf("driver: reconfigure %s endpoint %d: %w", eui, ep.Number, err)
		}
	}
	return nil
}
