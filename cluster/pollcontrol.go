package cluster

import (
	"context"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Check-in command id and attribute ids for the Poll Control cluster.
const (
	cmdPollCheckin              byte   = 0x00
	attrCheckinInterval         uint16 = 0x0000
	attrLongPollInterval        uint16 = 0x0001
	attrShortPollInterval       uint16 = 0x0002
	attrFastPollTimeout         uint16 = 0x0003
	maxCheckinOrLongPollQS      uint32 = 0x006E0000
	maxShortOrFastPollQS        uint32 = 0xFFFF
)

// Configuration metadata keys consulted during Configure.
const (
	KeyPollControlBind               = "pollcontrol.bind"
	KeyPollControlCheckinInterval    = "pollcontrol.checkinInterval"
	KeyPollControlFastPollTimeout    = "pollcontrol.fastPollTimeout"
	KeyPollControlLongPollInterval   = "pollcontrol.longPollInterval"
	KeyPollControlShortPollInterval  = "pollcontrol.shortPollInterval"
)

// CheckinHandler receives forwarded Poll Control check-ins. It is
// implemented by the poll-control coordinator; PollControl holds one as a
// plain interface field to avoid an import cycle between this package and
// the coordinator package.
type CheckinHandler interface {
	// HandleCheckin processes one check-in. enhanced distinguishes a
	// mfg-specific enhanced check-in (opaque BatterySavingData payload)
	// from a vanilla one (spec.md §4.4). The handler holds its own HAL
	// reference for sending the check-in response.
	HandleCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte, enhanced bool) error
}

// PollControl implements the Poll Control cluster (spec.md §4.1). It
// configures check-in/poll timing at pairing time and forwards inbound
// check-in commands to the poll-control coordinator.
type PollControl struct {
	checkin CheckinHandler
}

// NewPollControl constructs a PollControl cluster forwarding check-ins to
// checkin.
func NewPollControl(checkin CheckinHandler) *PollControl {
	return &PollControl{checkin: checkin}
}

// ClusterID implements Cluster.
func (*PollControl) ClusterID() uint16 { return IDPollControl }

// Priority implements Cluster. Poll Control configures before every other
// common cluster since it governs how soon the device will next be awake
// to receive further configuration commands.
func (*PollControl) Priority() Priority { return PriorityHighest }

// Configure implements Configurer.
func (p *PollControl) Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string) error {
	bind, _, err := configBool(desc, configMetadata, KeyPollControlBind)
	if err != nil {
		return err
	}
	if bind {
		if err := hw.SetBinding(ctx, discoveredEUI(discovered), ep.Number, IDPollControl); err != nil {
			return err
		}
	}

	if err := p.writeQS(ctx, hw, discoveredEUI(discovered), ep, desc, configMetadata, KeyPollControlCheckinInterval, attrCheckinInterval, 0, maxCheckinOrLongPollQS); err != nil {
		return err
	}
	if err := p.writeQS(ctx, hw, discoveredEUI(discovered), ep, desc, configMetadata, KeyPollControlFastPollTimeout, attrFastPollTimeout, 1, maxShortOrFastPollQS); err != nil {
		return err
	}
	if err := p.writeQS(ctx, hw, discoveredEUI(discovered), ep, desc, configMetadata, KeyPollControlLongPollInterval, attrLongPollInterval, 4, maxCheckinOrLongPollQS); err != nil {
		return err
	}
	if err := p.writeQS(ctx, hw, discoveredEUI(discovered), ep, desc, configMetadata, KeyPollControlShortPollInterval, attrShortPollInterval, 1, maxShortOrFastPollQS); err != nil {
		return err
	}
	return nil
}

func (p *PollControl) writeQS(ctx context.Context, hw hal.HAL, eui types.EUI64, ep *types.Endpoint, desc descriptor.DeviceDescriptor, configMetadata map[string]string, key string, attrID uint16, min, max uint32) error {
	v, ok, err := configUint(desc, configMetadata, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := checkRange(key, v, min, max); err != nil {
		return err
	}
	return hw.WriteAttribute(ctx, eui, ep.Number, IDPollControl, attrID, hal.DataTypeUint32, int64(v))
}

// HandleCommand implements CommandHandler, forwarding check-ins to the
// poll-control coordinator (spec.md §4.1: "On inbound check-in command,
// forward to the runtime's coordinator").
func (p *PollControl) HandleCommand(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	if env.CommandID != cmdPollCheckin || p.checkin == nil {
		return nil
	}
	return p.checkin.HandleCheckin(ctx, eui, ep, env.Payload, env.MfgSpecific)
}

func discoveredEUI(d types.DiscoveredDeviceRecord) types.EUI64 {
	eui, _ := types.ParseEUI64(d.EUI64)
	return eui
}
