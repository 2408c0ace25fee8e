package cluster

import (
	"context"
	"testing"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/internal/testutil"
	"github.com/gwcore/zigbeedriver/types"
)

func testEndpoint() *types.Endpoint {
	return &types.Endpoint{Number: 1}
}

func testDiscovered(eui types.EUI64) types.DiscoveredDeviceRecord {
	return types.DiscoveredDeviceRecord{EUI64: eui.String()}
}

// TestPowerConfigurationConfigureWritesAlarmMasks confirms Configure always
// writes the writable battery/mains alarm masks (spec.md §4.1), regardless
// of whether any attribute reporting was enabled.
func TestPowerConfigurationConfigureWritesAlarmMasks(t *testing.T) {
	hw := testutil.NewMockHAL()
	pc := NewPowerConfiguration(hw, PowerConfigCallbacks{})
	eui := types.EUI64(1)
	ep := testEndpoint()

	err := pc.Configure(context.Background(), hw, ep, descriptor.DeviceDescriptor{}, testDiscovered(eui), nil)
	testutil.AssertNoError(t, err)

	mainsMask, err := hw.ReadAttributeAsNumber(context.Background(), eui, ep.Number, IDPowerConfiguration, attrMainsAlarmMask)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, int64(mainsAlarmMaskACMainsLow), mainsMask)

	batteryMask, err := hw.ReadAttributeAsNumber(context.Background(), eui, ep.Number, IDPowerConfiguration, attrBatteryAlarmMask)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, int64(batteryAlarmMaskVoltageMin|batteryAlarmMaskPercentMin), batteryMask)

	// No reporting was gated on, so Configure must not have bound.
	testutil.AssertFalse(t, pc.bound[eui])
	testutil.AssertLen(t, hw.Bindings, 0)
}

// TestPowerConfigurationConfigureEnablesReportingAndBinds confirms enabling
// a reporting flag via configuration metadata configures reporting on the
// corresponding attribute and binds the cluster.
func TestPowerConfigurationConfigureEnablesReportingAndBinds(t *testing.T) {
	hw := testutil.NewMockHAL()
	pc := NewPowerConfiguration(hw, PowerConfigCallbacks{})
	eui := types.EUI64(2)
	ep := testEndpoint()

	desc := descriptor.DeviceDescriptor{
		ConfigurationMetadata: map[string]string{
			KeyPowerConfigEnableVoltage: "true",
		},
	}

	err := pc.Configure(context.Background(), hw, ep, desc, testDiscovered(eui), nil)
	testutil.AssertNoError(t, err)

	testutil.AssertTrue(t, pc.bound[eui])
	testutil.AssertLen(t, hw.Bindings, 1)
	testutil.AssertEqual(t, uint16(IDPowerConfiguration), hw.Bindings[0])
}

// TestPowerConfigurationConfigureInvalidMetadataErrors confirms an
// unparsable configuration value surfaces an error instead of being
// silently ignored.
func TestPowerConfigurationConfigureInvalidMetadataErrors(t *testing.T) {
	hw := testutil.NewMockHAL()
	pc := NewPowerConfiguration(hw, PowerConfigCallbacks{})
	eui := types.EUI64(3)
	ep := testEndpoint()

	desc := descriptor.DeviceDescriptor{
		ConfigurationMetadata: map[string]string{
			KeyPowerConfigEnableAlarm: "not-a-bool",
		},
	}

	err := pc.Configure(context.Background(), hw, ep, desc, testDiscovered(eui), nil)
	testutil.AssertError(t, err)
}

// TestPowerConfigurationHandleAttributeReportInvokesCallbacks confirms
// voltage/percentage/recharge-cycle reports reach their callbacks decoded.
func TestPowerConfigurationHandleAttributeReportInvokesCallbacks(t *testing.T) {
	var gotCentivolts, gotPercent, gotCycles int
	pc := NewPowerConfiguration(testutil.NewMockHAL(), PowerConfigCallbacks{
		OnVoltage:              func(eui types.EUI64, ep *types.Endpoint, centivolts int) { gotCentivolts = centivolts },
		OnPercentage:           func(eui types.EUI64, ep *types.Endpoint, percent int) { gotPercent = percent },
		OnRechargeCyclesChange: func(eui types.EUI64, ep *types.Endpoint, cycles int) { gotCycles = cycles },
	})
	ep := testEndpoint()

	env := hal.Envelope{Attributes: []hal.AttributeReport{
		{AttributeID: attrBatteryVoltage, RawValue: []byte{30}},
		{AttributeID: attrBatteryPercentRemaining, RawValue: []byte{200}},
		{AttributeID: attrBatteryRechargeCycles, RawValue: []byte{5}},
	}}

	err := pc.HandleAttributeReport(context.Background(), types.EUI64(4), ep, env)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 3000, gotCentivolts)
	testutil.AssertEqual(t, 200, gotPercent)
	testutil.AssertEqual(t, 5, gotCycles)
}

// TestPowerConfigurationHandlePollCheckinReadsVoltage confirms a vanilla
// check-in's on-demand voltage refresh reaches the callback.
func TestPowerConfigurationHandlePollCheckinReadsVoltage(t *testing.T) {
	hw := testutil.NewMockHAL()
	var gotCentivolts int
	pc := NewPowerConfiguration(hw, PowerConfigCallbacks{
		OnVoltage: func(eui types.EUI64, ep *types.Endpoint, centivolts int) { gotCentivolts = centivolts },
	})
	eui := types.EUI64(5)
	ep := testEndpoint()
	hw.SetAttributeValue(eui, ep.Number, IDPowerConfiguration, attrBatteryVoltage, 29)

	err := pc.HandlePollCheckin(context.Background(), eui, ep)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 2900, gotCentivolts)
}

// TestPowerConfigurationAlarmDispatch confirms every mapped alarm code
// reaches its corresponding callback when raised, and that clearing the
// AC-mains alarm reports mains present again.
func TestPowerConfigurationAlarmDispatch(t *testing.T) {
	var mainsPresent, chargeLow, missing, bad, highTemp bool
	pc := NewPowerConfiguration(testutil.NewMockHAL(), PowerConfigCallbacks{
		OnMainsPresent:    func(eui types.EUI64, ep *types.Endpoint, present bool) { mainsPresent = present },
		OnChargeLow:       func(eui types.EUI64, ep *types.Endpoint, low bool) { chargeLow = low },
		OnMissing:         func(eui types.EUI64, ep *types.Endpoint, m bool) { missing = m },
		OnBad:             func(eui types.EUI64, ep *types.Endpoint, b bool) { bad = b },
		OnHighTemperature: func(eui types.EUI64, ep *types.Endpoint, h bool) { highTemp = h },
	})
	ep := testEndpoint()
	eui := types.EUI64(6)

	testutil.AssertNoError(t, pc.HandleAlarm(context.Background(), eui, ep, IDPowerConfiguration, AlarmCodeACMainsLow))
	testutil.AssertFalse(t, mainsPresent)
	testutil.AssertNoError(t, pc.HandleAlarmCleared(context.Background(), eui, ep, IDPowerConfiguration, AlarmCodeACMainsLow))
	testutil.AssertTrue(t, mainsPresent)

	testutil.AssertNoError(t, pc.HandleAlarm(context.Background(), eui, ep, IDPowerConfiguration, AlarmCodeBatteryLowThreshold))
	testutil.AssertTrue(t, chargeLow)

	testutil.AssertNoError(t, pc.HandleAlarm(context.Background(), eui, ep, IDPowerConfiguration, AlarmCodeBatteryMissing))
	testutil.AssertTrue(t, missing)

	testutil.AssertNoError(t, pc.HandleAlarm(context.Background(), eui, ep, IDPowerConfiguration, AlarmCodeBatteryBad))
	testutil.AssertTrue(t, bad)

	testutil.AssertNoError(t, pc.HandleAlarm(context.Background(), eui, ep, IDPowerConfiguration, AlarmCodeBatteryHighTemp))
	testutil.AssertTrue(t, highTemp)
}
