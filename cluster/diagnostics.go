package cluster

import (
	"context"
	"sync"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Diagnostics attribute ids.
const (
	attrLastMessageLQI  uint16 = 0x011C
	attrLastMessageRSSI uint16 = 0x011D
)

// Diagnostics implements the Diagnostics cluster (spec.md §4.1): it
// exposes the device's own last-message RSSI/LQI ("far-end" from the
// runtime's perspective) and notifies when either changes so they can be
// synchronized against the near-end metrics the dispatch path maintains.
type Diagnostics struct {
	hw hal.HAL
	cb func(eui types.EUI64, ep *types.Endpoint, rssi int32, lqi uint32)

	mu   sync.Mutex
	last map[types.EUI64]feSample
}

type feSample struct {
	rssi int32
	lqi  uint32
}

// NewDiagnostics constructs a Diagnostics cluster that reads values
// through hw and notifies cb whenever either far-end metric changes.
func NewDiagnostics(hw hal.HAL, cb func(eui types.EUI64, ep *types.Endpoint, rssi int32, lqi uint32)) *Diagnostics {
	return &Diagnostics{hw: hw, cb: cb, last: make(map[types.EUI64]feSample)}
}

// ClusterID implements Cluster.
func (*Diagnostics) ClusterID() uint16 { return IDDiagnostics }

// Priority implements Cluster.
func (*Diagnostics) Priority() Priority { return PriorityDefault }

// HandleAttributeReport implements AttributeReportHandler.
func (d *Diagnostics) HandleAttributeReport(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	var rssi *int32
	var lqi *uint32
	for _, attr := range env.Attributes {
		switch attr.AttributeID {
		case attrLastMessageRSSI:
			v := int32(decodeByteValue(attr.RawValue))
			rssi = &v
		case attrLastMessageLQI:
			v := uint32(decodeByteValue(attr.RawValue))
			lqi = &v
		}
	}
	if rssi != nil || lqi != nil {
		d.update(eui, ep, rssi, lqi)
	}
	return nil
}

// HandlePollCheckin implements PollCheckinHandler: read both far-end
// metrics on demand during a vanilla check-in (spec.md §4.4).
func (d *Diagnostics) HandlePollCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint) error {
	rssiVal, err := d.hw.ReadAttributeAsNumber(ctx, eui, ep.Number, IDDiagnostics, attrLastMessageRSSI)
	if err != nil {
		return err
	}
	lqiVal, err := d.hw.ReadAttributeAsNumber(ctx, eui, ep.Number, IDDiagnostics, attrLastMessageLQI)
	if err != nil {
		return err
	}
	r := int32(rssiVal)
	l := uint32(lqiVal)
	d.update(eui, ep, &r, &l)
	return nil
}

func (d *Diagnostics) update(eui types.EUI64, ep *types.Endpoint, rssi *int32, lqi *uint32) {
	d.mu.Lock()
	sample := d.last[eui]
	changed := false
	if rssi != nil && sample.rssi != *rssi {
		sample.rssi = *rssi
		changed = true
	}
	if lqi != nil && sample.lqi != *lqi {
		sample.lqi = *lqi
		changed = true
	}
	d.last[eui] = sample
	d.mu.Unlock()

	if changed && d.cb != nil {
		d.cb(eui, ep, sample.rssi, sample.lqi)
	}
}

// Destroy implements Destroyer.
func (d *Diagnostics) Destroy(eui types.EUI64) {
	d.mu.Lock()
	delete(d.last, eui)
	d.mu.Unlock()
}
