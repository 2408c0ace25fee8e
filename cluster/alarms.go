package cluster

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Alarm table command ids, per spec.md §4.1: "Decodes alarm tables and
// dispatches per-cluster-id to handleAlarm/handleAlarmCleared on the
// respective cluster."
const (
	cmdAlarm        byte = 0x00
	cmdAlarmCleared byte = 0x01
)

// Alarms implements the Alarms cluster. It does not interpret alarm codes
// itself; it decodes the alarm-table entry {code, source cluster id} and
// dispatches to whichever registered cluster declares the source cluster
// id and implements AlarmHandler/AlarmClearedHandler.
type Alarms struct {
	mu       sync.RWMutex
	registry *Registry
}

// NewAlarms constructs an Alarms cluster. Call SetRegistry once the full
// Registry has been built, since Alarms dispatches to sibling clusters by
// id and the registry cannot reference itself during construction.
func NewAlarms() *Alarms {
	return &Alarms{}
}

// SetRegistry wires the registry used to resolve alarm source clusters.
func (a *Alarms) SetRegistry(r *Registry) {
	a.mu.Lock()
	a.registry = r
	a.mu.Unlock()
}

// ClusterID implements Cluster.
func (*Alarms) ClusterID() uint16 { return IDAlarms }

// Priority implements Cluster.
func (*Alarms) Priority() Priority { return PriorityDefault }

// HandleCommand implements CommandHandler.
func (a *Alarms) HandleCommand(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	if len(env.Payload) < 3 {
		return nil
	}
	alarmCode := env.Payload[0]
	sourceClusterID := binary.LittleEndian.Uint16(env.Payload[1:3])

	a.mu.RLock()
	registry := a.registry
	a.mu.RUnlock()
	if registry == nil {
		return nil
	}
	source, ok := registry.ByID(sourceClusterID)
	if !ok {
		return nil
	}

	switch env.CommandID {
	case cmdAlarm:
		if h, ok := source.(AlarmHandler); ok {
			return h.HandleAlarm(ctx, eui, ep, sourceClusterID, alarmCode)
		}
	case cmdAlarmCleared:
		if h, ok := source.(AlarmClearedHandler); ok {
			return h.HandleAlarmCleared(ctx, eui, ep, sourceClusterID, alarmCode)
		}
	}
	return nil
}
