package cluster

import (
	"context"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Priority orders cluster configuration at pairing time: all PriorityHighest
// clusters configure before any PriorityDefault cluster; ties within a
// priority tier are unordered.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityHighest
)

// Cluster is the minimum every registered cluster implements: a stable
// cluster id and a configuration-ordering priority. Everything else is
// optional, probed via the capability interfaces below.
type Cluster interface {
	ClusterID() uint16
	Priority() Priority
}

// Configurer is implemented by clusters that run setup at pairing time:
// binding, attribute-reporting configuration, and writing configuration
// attributes from descriptor/configuration metadata.
type Configurer interface {
	Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string) error
}

// AttributeReportHandler is implemented by clusters that react to inbound
// attribute reports on their cluster id.
type AttributeReportHandler interface {
	HandleAttributeReport(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error
}

// CommandHandler is implemented by clusters that react to inbound cluster
// commands on their cluster id.
type CommandHandler interface {
	HandleCommand(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error
}

// AlarmHandler is implemented by clusters that decode alarm-table entries
// (the Alarms cluster dispatches these per originating cluster id).
type AlarmHandler interface {
	HandleAlarm(ctx context.Context, eui types.EUI64, ep *types.Endpoint, sourceClusterID uint16, alarmCode byte) error
}

// AlarmClearedHandler is the cleared-alarm counterpart to AlarmHandler.
type AlarmClearedHandler interface {
	HandleAlarmCleared(ctx context.Context, eui types.EUI64, ep *types.Endpoint, sourceClusterID uint16, alarmCode byte) error
}

// PollCheckinHandler is implemented by clusters the poll-control
// coordinator may ask to refresh data during a vanilla check-in
// (spec.md §4.4).
type PollCheckinHandler interface {
	HandlePollCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint) error
}

// Destroyer is implemented by clusters holding per-device state that must
// be released when a device is removed.
type Destroyer interface {
	Destroy(eui types.EUI64)
}
