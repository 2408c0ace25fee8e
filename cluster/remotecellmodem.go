package cluster

import (
	"context"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Remote Cell Modem mfg-specific command codes (spec.md §4.1).
const (
	CmdRemoteCellModemOn             byte = 0x00
	CmdRemoteCellModemOff            byte = 0x01
	CmdRemoteCellModemEmergencyReset byte = 0x02
)

const attrRemoteCellModemPowerOnState uint16 = 0x0000

// RemoteCellModem implements the manufacturer-specific Remote Cell Modem
// cluster (spec.md §4.1). It reports power-on state and exposes on/off/
// emergency-reset commands.
type RemoteCellModem struct {
	hw    hal.HAL
	mfgID uint16
	cb    func(eui types.EUI64, ep *types.Endpoint, poweredOn bool)
}

// NewRemoteCellModem constructs a RemoteCellModem cluster. mfgID tags the
// commands this cluster issues as manufacturer-specific.
func NewRemoteCellModem(hw hal.HAL, mfgID uint16, cb func(eui types.EUI64, ep *types.Endpoint, poweredOn bool)) *RemoteCellModem {
	return &RemoteCellModem{hw: hw, mfgID: mfgID, cb: cb}
}

// ClusterID implements Cluster.
func (*RemoteCellModem) ClusterID() uint16 { return IDRemoteCellModem }

// Priority implements Cluster.
func (*RemoteCellModem) Priority() Priority { return PriorityDefault }

// HandleAttributeReport implements AttributeReportHandler.
func (r *RemoteCellModem) HandleAttributeReport(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	for _, attr := range env.Attributes {
		if attr.AttributeID == attrRemoteCellModemPowerOnState && r.cb != nil {
			r.cb(eui, ep, decodeByteValue(attr.RawValue) != 0)
		}
	}
	return nil
}

// On issues the power-on command.
func (r *RemoteCellModem) On(ctx context.Context, eui types.EUI64, endpoint byte) error {
	return r.hw.SendClusterCommand(ctx, eui, endpoint, IDRemoteCellModem, CmdRemoteCellModemOn, nil, true, r.mfgID)
}

// Off issues the power-off command.
func (r *RemoteCellModem) Off(ctx context.Context, eui types.EUI64, endpoint byte) error {
	return r.hw.SendClusterCommand(ctx, eui, endpoint, IDRemoteCellModem, CmdRemoteCellModemOff, nil, true, r.mfgID)
}

// EmergencyReset issues the emergency-reset command.
func (r *RemoteCellModem) EmergencyReset(ctx context.Context, eui types.EUI64, endpoint byte) error {
	return r.hw.SendClusterCommand(ctx, eui, endpoint, IDRemoteCellModem, CmdRemoteCellModemEmergencyReset, nil, true, r.mfgID)
}
