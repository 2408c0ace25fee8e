package cluster

import (
	"context"
	"sync"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Power Configuration attribute ids.
const (
	attrMainsAlarmMask          uint16 = 0x0010
	attrBatteryVoltage          uint16 = 0x0020
	attrBatteryPercentRemaining uint16 = 0x0021
	attrBatteryAlarmMask        uint16 = 0x0033
	attrBatteryVoltageMinThresh uint16 = 0x0035
	attrBatteryPercentMinThresh uint16 = 0x0036
	attrBatteryAlarmState       uint16 = 0x0037
	attrBatteryRechargeCycles   uint16 = 0x003E
)

// Alarm mask bits written to attrMainsAlarmMask/attrBatteryAlarmMask during
// Configure, enabling the device to raise the alarm codes this cluster
// maps in dispatchAlarm.
const (
	mainsAlarmMaskACMainsLow   byte = 0x01
	batteryAlarmMaskVoltageMin byte = 0x01
	batteryAlarmMaskPercentMin byte = 0x02
)

// Alarm codes the Power Configuration cluster maps, per spec.md §4.1.
const (
	AlarmCodeACMainsLow          byte = 0x00
	AlarmCodeBatteryLowThreshold byte = 0x10
	AlarmCodeBatteryMissing      byte = 0x3B
	AlarmCodeBatteryBad          byte = 0x3C
	AlarmCodeBatteryHighTemp     byte = 0x3F
)

// Configuration metadata keys.
const (
	KeyPowerConfigVoltageMax     = "powerconfig.voltageMax"
	KeyPowerConfigEnableVoltage  = "powerconfig.reportVoltage"
	KeyPowerConfigEnablePercent  = "powerconfig.reportPercentage"
	KeyPowerConfigEnableAlarm    = "powerconfig.reportAlarmState"
	KeyPowerConfigEnableRecharge = "powerconfig.reportRechargeCycles"
)

const maxBatteryPercentMax uint32 = 60 * 27

// PowerConfigCallbacks are optional driver-level notifications emitted by
// the Power Configuration cluster as it observes reports, polls, and
// alarms (spec.md §4.1).
type PowerConfigCallbacks struct {
	OnVoltage              func(eui types.EUI64, ep *types.Endpoint, centivolts int)
	OnPercentage           func(eui types.EUI64, ep *types.Endpoint, percent int)
	OnChargeLow            func(eui types.EUI64, ep *types.Endpoint, low bool)
	OnBad                  func(eui types.EUI64, ep *types.Endpoint, bad bool)
	OnMissing              func(eui types.EUI64, ep *types.Endpoint, missing bool)
	OnHighTemperature      func(eui types.EUI64, ep *types.Endpoint, high bool)
	OnMainsPresent         func(eui types.EUI64, ep *types.Endpoint, present bool)
	OnRechargeCyclesChange func(eui types.EUI64, ep *types.Endpoint, cycles int)
}

// PowerConfiguration implements the Power Configuration cluster
// (spec.md §4.1).
type PowerConfiguration struct {
	mu    sync.Mutex
	hw    hal.HAL
	cb    PowerConfigCallbacks
	bound map[types.EUI64]bool
}

// NewPowerConfiguration constructs a PowerConfiguration cluster that reads
// attribute values through hw and notifies cb.
func NewPowerConfiguration(hw hal.HAL, cb PowerConfigCallbacks) *PowerConfiguration {
	return &PowerConfiguration{hw: hw, cb: cb, bound: make(map[types.EUI64]bool)}
}

// ClusterID implements Cluster.
func (*PowerConfiguration) ClusterID() uint16 { return IDPowerConfiguration }

// Priority implements Cluster.
func (*PowerConfiguration) Priority() Priority { return PriorityDefault }

// Configure implements Configurer.
func (p *PowerConfiguration) Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string) error {
	eui := discoveredEUI(discovered)
	voltageMax, _, err := configUint(desc, configMetadata, KeyPowerConfigVoltageMax)
	if err != nil {
		return err
	}
	if voltageMax == 0 {
		voltageMax = 0xFFFE
	}

	anyReporting := false
	if enabled, _, err := configBool(desc, configMetadata, KeyPowerConfigEnableAlarm); err != nil {
		return err
	} else if enabled {
		if err := hw.ConfigureAttributeReporting(ctx, eui, ep.Number, IDPowerConfiguration, attrBatteryAlarmState, 1, 0xFFFE, 1); err != nil {
			return err
		}
		anyReporting = true
	}
	if enabled, _, err := configBool(desc, configMetadata, KeyPowerConfigEnableVoltage); err != nil {
		return err
	} else if enabled {
		if err := hw.ConfigureAttributeReporting(ctx, eui, ep.Number, IDPowerConfiguration, attrBatteryVoltage, 1, uint16(voltageMax), 1); err != nil {
			return err
		}
		anyReporting = true
	}
	if enabled, _, err := configBool(desc, configMetadata, KeyPowerConfigEnablePercent); err != nil {
		return err
	} else if enabled {
		if err := hw.ConfigureAttributeReporting(ctx, eui, ep.Number, IDPowerConfiguration, attrBatteryPercentRemaining, 1, uint16(maxBatteryPercentMax), 1); err != nil {
			return err
		}
		anyReporting = true
	}
	if enabled, _, err := configBool(desc, configMetadata, KeyPowerConfigEnableRecharge); err != nil {
		return err
	} else if enabled {
		if err := hw.ConfigureAttributeReporting(ctx, eui, ep.Number, IDPowerConfiguration, attrBatteryRechargeCycles, 1, 0xFFFE, 1); err != nil {
			return err
		}
		anyReporting = true
	}

	if err := hw.WriteAttribute(ctx, eui, ep.Number, IDPowerConfiguration, attrMainsAlarmMask, hal.DataTypeBitmap8, int64(mainsAlarmMaskACMainsLow)); err != nil {
		return err
	}
	if err := hw.WriteAttribute(ctx, eui, ep.Number, IDPowerConfiguration, attrBatteryAlarmMask, hal.DataTypeBitmap8, int64(batteryAlarmMaskVoltageMin|batteryAlarmMaskPercentMin)); err != nil {
		return err
	}

	if anyReporting {
		if err := hw.SetBinding(ctx, eui, ep.Number, IDPowerConfiguration); err != nil {
			return err
		}
		p.mu.Lock()
		p.bound[eui] = true
		p.mu.Unlock()
	}
	return nil
}

// HandleAttributeReport implements AttributeReportHandler.
func (p *PowerConfiguration) HandleAttributeReport(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	for _, attr := range env.Attributes {
		switch attr.AttributeID {
		case attrBatteryVoltage:
			if p.cb.OnVoltage != nil {
				p.cb.OnVoltage(eui, ep, decodeCentivolts(attr.RawValue))
			}
		case attrBatteryPercentRemaining:
			if p.cb.OnPercentage != nil {
				p.cb.OnPercentage(eui, ep, decodeByteValue(attr.RawValue))
			}
		case attrBatteryRechargeCycles:
			if p.cb.OnRechargeCyclesChange != nil {
				p.cb.OnRechargeCyclesChange(eui, ep, decodeByteValue(attr.RawValue))
			}
		}
	}
	return nil
}

// HandlePollCheckin implements PollCheckinHandler: refresh battery voltage
// on demand during a vanilla check-in (spec.md §4.4).
func (p *PowerConfiguration) HandlePollCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint) error {
	v, err := p.hw.ReadAttributeAsNumber(ctx, eui, ep.Number, IDPowerConfiguration, attrBatteryVoltage)
	if err != nil {
		return err
	}
	if p.cb.OnVoltage != nil {
		p.cb.OnVoltage(eui, ep, int(v)*100)
	}
	return nil
}

// HandleAlarm implements AlarmHandler, mapping alarm codes per spec.md §4.1.
func (p *PowerConfiguration) HandleAlarm(ctx context.Context, eui types.EUI64, ep *types.Endpoint, sourceClusterID uint16, alarmCode byte) error {
	p.dispatchAlarm(eui, ep, alarmCode, true)
	return nil
}

// HandleAlarmCleared implements AlarmClearedHandler.
func (p *PowerConfiguration) HandleAlarmCleared(ctx context.Context, eui types.EUI64, ep *types.Endpoint, sourceClusterID uint16, alarmCode byte) error {
	p.dispatchAlarm(eui, ep, alarmCode, false)
	return nil
}

func (p *PowerConfiguration) dispatchAlarm(eui types.EUI64, ep *types.Endpoint, code byte, active bool) {
	switch code {
	case AlarmCodeACMainsLow:
		if p.cb.OnMainsPresent != nil {
			p.cb.OnMainsPresent(eui, ep, !active)
		}
	case AlarmCodeBatteryLowThreshold:
		if p.cb.OnChargeLow != nil {
			p.cb.OnChargeLow(eui, ep, active)
		}
	case AlarmCodeBatteryMissing:
		if p.cb.OnMissing != nil {
			p.cb.OnMissing(eui, ep, active)
		}
	case AlarmCodeBatteryBad:
		if p.cb.OnBad != nil {
			p.cb.OnBad(eui, ep, active)
		}
	case AlarmCodeBatteryHighTemp:
		if p.cb.OnHighTemperature != nil {
			p.cb.OnHighTemperature(eui, ep, active)
		}
	}
}

func decodeCentivolts(raw []byte) int {
	return decodeByteValue(raw) * 100
}

func decodeByteValue(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	return int(raw[0])
}
