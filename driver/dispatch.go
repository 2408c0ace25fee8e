package driver

import (
	"context"

	"github.com/gwcore/zigbeedriver/eventtracker"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// Dispatch routes one inbound frame through the full dispatch path
// (spec.md §4.3): it updates the near-end diagnostics resources, restarts
// the comm-fail watchdog, runs cluster dispatch, records the frame with
// the event tracker, and unconditionally forwards to the upper driver.
func (d *Driver) Dispatch(ctx context.Context, env hal.Envelope) error {
	eui := env.EUI

	device, found, err := d.st.GetDevice(ctx, eui)
	if err != nil {
		return err
	}
	if !found {
		d.logger.Errorf("driver: dispatch for unknown device %s", eui)
		return nil
	}
	ep := device.Endpoint(env.Endpoint)
	if ep == nil {
		d.logger.Errorf("driver: dispatch for unknown endpoint %d on %s", env.Endpoint, eui)
		return nil
	}

	// Step 1: update near-end diagnostics resources.
	d.updateNearEnd(ctx, eui, env.NearEndRSSI, env.NearEndLQI)
	d.commfail.Received(ctx, eui)

	return d.dispatchClusterAndForward(ctx, eui, ep, env)
}

// Replay re-runs dispatch steps 2-3 for every buffered envelope that
// passes filter (or all of them, if filter is nil). The upper driver uses
// this from its DevicePersisted hook to drain attribute reports the HAL
// buffered before pairing completed (spec.md §4.3).
func (d *Driver) Replay(ctx context.Context, eui types.EUI64, envelopes []hal.Envelope, filter func(hal.Envelope) bool) error {
	device, found, err := d.st.GetDevice(ctx, eui)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	for _, env := range envelopes {
		if filter != nil && !filter(env) {
			continue
		}
		ep := device.Endpoint(env.Endpoint)
		if ep == nil {
			continue
		}
		if err := d.dispatchClusterAndForward(ctx, eui, ep, env); err != nil {
			return err
		}
	}
	return nil
}

// dispatchClusterAndForward runs steps 2-3: cluster-registry dispatch,
// event-tracker recording, and the unconditional upper-driver forward.
func (d *Driver) dispatchClusterAndForward(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	if err := d.registry.Dispatch(ctx, eui, ep, env); err != nil {
		d.logger.Warnf("driver: cluster 0x%04x dispatch for %s: %v", env.ClusterID, eui, err)
	}

	d.recordFrame(eui, env)

	if env.IsAttributeReport {
		if d.hooks.HandleAttributeReport != nil {
			return d.hooks.HandleAttributeReport(ctx, eui, ep, env)
		}
		return nil
	}
	if d.hooks.HandleCommand != nil {
		return d.hooks.HandleCommand(ctx, eui, ep, env)
	}
	return nil
}

func (d *Driver) recordFrame(eui types.EUI64, env hal.Envelope) {
	if env.IsAttributeReport {
		isSensor := false
		if d.hooks.IsSensorClass != nil {
			isSensor = d.hooks.IsSensorClass(eui)
		}
		for _, attr := range env.Attributes {
			d.tracker.RecordAttributeReport(eui, isSensor, env.ClusterID, env.Endpoint, attr.RawValue)
		}
		return
	}
	d.tracker.RecordCommand(eui, env.Sequence, eventtracker.CommandFrame{
		ClusterID:   env.ClusterID,
		CommandID:   env.CommandID,
		MfgSpecific: env.MfgSpecific,
		MfgID:       env.MfgID,
	})
}

func (d *Driver) updateNearEnd(ctx context.Context, eui types.EUI64, rssi int32, lqi uint32) {
	id := eui.String()
	_ = d.st.SetResource(ctx, id, types.ResourceNearEndRSSI, types.FormatSignedReading(rssi), store.ChangeOriginDevice)
	_ = d.st.SetResource(ctx, id, types.ResourceNearEndLQI, types.FormatUnsignedReading(lqi), store.ChangeOriginDevice)
}
