package cluster

import (
	"context"
	"encoding/binary"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

const attrTempMeasuredValue uint16 = 0x0000

const maxTempReportableMax uint32 = 60 * 27

// Configuration metadata keys.
const (
	KeyTempMeasurementEnabled = "tempmeasurement.enabled"
)

// TemperatureMeasurement implements the Temperature Measurement cluster
// (spec.md §4.1).
type TemperatureMeasurement struct {
	hw hal.HAL
	cb func(eui types.EUI64, ep *types.Endpoint, centiDegrees int16)
}

// NewTemperatureMeasurement constructs a TemperatureMeasurement cluster
// that notifies cb with the decoded signed reading on every report or poll.
func NewTemperatureMeasurement(hw hal.HAL, cb func(eui types.EUI64, ep *types.Endpoint, centiDegrees int16)) *TemperatureMeasurement {
	return &TemperatureMeasurement{hw: hw, cb: cb}
}

// ClusterID implements Cluster.
func (*TemperatureMeasurement) ClusterID() uint16 { return IDTemperatureMeasurement }

// Priority implements Cluster.
func (*TemperatureMeasurement) Priority() Priority { return PriorityDefault }

// Configure implements Configurer. It only binds and configures reporting
// if enabled via descriptor/configuration metadata (spec.md §4.1,
// "On configure (if enabled)...").
func (t *TemperatureMeasurement) Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string) error {
	enabled, _, err := configBool(desc, configMetadata, KeyTempMeasurementEnabled)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	eui := discoveredEUI(discovered)
	if err := hw.SetBinding(ctx, eui, ep.Number, IDTemperatureMeasurement); err != nil {
		return err
	}
	return hw.ConfigureAttributeReporting(ctx, eui, ep.Number, IDTemperatureMeasurement, attrTempMeasuredValue, 1, uint16(maxTempReportableMax), 50)
}

// HandleAttributeReport implements AttributeReportHandler.
func (t *TemperatureMeasurement) HandleAttributeReport(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	for _, attr := range env.Attributes {
		if attr.AttributeID == attrTempMeasuredValue {
			t.notify(eui, ep, decodeInt16(attr.RawValue))
		}
	}
	return nil
}

// HandlePollCheckin implements PollCheckinHandler.
func (t *TemperatureMeasurement) HandlePollCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint) error {
	v, err := t.hw.ReadAttributeAsNumber(ctx, eui, ep.Number, IDTemperatureMeasurement, attrTempMeasuredValue)
	if err != nil {
		return err
	}
	t.notify(eui, ep, int16(v))
	return nil
}

func (t *TemperatureMeasurement) notify(eui types.EUI64, ep *types.Endpoint, v int16) {
	if t.cb != nil {
		t.cb(eui, ep, v)
	}
}

func decodeInt16(raw []byte) int16 {
	if len(raw) < 2 {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(raw))
}
