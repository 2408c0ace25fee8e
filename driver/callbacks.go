package driver

import (
	"context"

	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// The callbacks in this file wire cluster-level notifications into
// persisted resources (spec.md §4.1's per-cluster callback list). Every
// SetResource call uses ChangeOriginDevice since the value originates
// from the device itself.

func (d *Driver) onDiagnostics(eui types.EUI64, ep *types.Endpoint, rssi int32, lqi uint32) {
	ctx := context.Background()
	id := eui.String()
	_ = d.st.SetResource(ctx, id, types.ResourceFeRSSI, types.FormatSignedReading(rssi), store.ChangeOriginDevice)
	_ = d.st.SetResource(ctx, id, types.ResourceFeLQI, types.FormatUnsignedReading(lqi), store.ChangeOriginDevice)
}

func (d *Driver) onBatteryVoltage(eui types.EUI64, ep *types.Endpoint, centivolts int) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceBatteryVoltage, types.FormatSignedReading(int32(centivolts)), store.ChangeOriginDevice)
}

func (d *Driver) onBatteryPercentage(eui types.EUI64, ep *types.Endpoint, percent int) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceBatteryPercentRemaining, types.FormatSignedReading(int32(percent)), store.ChangeOriginDevice)
}

func (d *Driver) onBatteryLow(eui types.EUI64, ep *types.Endpoint, low bool) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceBatteryLow, types.FormatBool(low), store.ChangeOriginDevice)
}

func (d *Driver) onBatteryBad(eui types.EUI64, ep *types.Endpoint, bad bool) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceBatteryBad, types.FormatBool(bad), store.ChangeOriginDevice)
}

func (d *Driver) onBatteryMissing(eui types.EUI64, ep *types.Endpoint, missing bool) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceBatteryMissing, types.FormatBool(missing), store.ChangeOriginDevice)
}

func (d *Driver) onBatteryHighTemperature(eui types.EUI64, ep *types.Endpoint, high bool) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceBatteryHighTemperature, types.FormatBool(high), store.ChangeOriginDevice)
}

func (d *Driver) onMainsPresent(eui types.EUI64, ep *types.Endpoint, present bool) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceMainsDisconnected, types.FormatBool(!present), store.ChangeOriginDevice)
}

func (d *Driver) onTemperature(eui types.EUI64, ep *types.Endpoint, centiDegrees int16) {
	_ = d.st.SetResource(context.Background(), eui.String(), types.ResourceTemperature, types.FormatSignedReading(int32(centiDegrees)), store.ChangeOriginDevice)
}

// onEnhancedCheckin satisfies pollcoordinator.EnhancedCheckinHandler: the
// runtime has no opinion on BatterySavingData's layout, so it only
// guarantees delivery to the upper driver (spec.md §4.4).
func (d *Driver) onEnhancedCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte) {
	if d.hooks.EnhancedCheckin != nil {
		d.hooks.EnhancedCheckin(ctx, eui, ep, payload)
	}
}

func (d *Driver) onCommunicationFailed(eui types.EUI64) {
	if d.hooks.CommunicationFailed != nil {
		d.hooks.CommunicationFailed(eui)
	}
}

func (d *Driver) onCommunicationRestored(eui types.EUI64) {
	if d.hooks.CommunicationRestored != nil {
		d.hooks.CommunicationRestored(eui)
	}
}
