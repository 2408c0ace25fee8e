package eventtracker

import "github.com/gwcore/zigbeedriver/cluster"

// cmdDeviceCheckin is the generic, cluster-independent check-in command
// id recognized regardless of which cluster carried it (spec.md §4.7
// classification rule (c), "a generic DEVICE_CHECKIN command id").
const cmdDeviceCheckin byte = 0x22

// cmdIASZoneStatusChangeNotification is the IAS Zone status-change
// notification command id.
const cmdIASZoneStatusChangeNotification byte = 0x00

// cmdPollCheckin is the Poll Control cluster's check-in command id.
const cmdPollCheckin byte = 0x00

// CommandFrame carries the fields of an inbound command the classifier
// needs; it mirrors the relevant subset of hal.Envelope.
type CommandFrame struct {
	ClusterID   uint16
	CommandID   byte
	MfgSpecific bool
	MfgID       uint16
}

// IsCheckin classifies an inbound command per spec.md §4.7: a Poll
// Control check-in, a Comcast-tagged IAS Zone status-change notification,
// or the generic DEVICE_CHECKIN command id.
func IsCheckin(f CommandFrame) bool {
	if f.ClusterID == cluster.IDPollControl && f.CommandID == cmdPollCheckin {
		return true
	}
	if f.ClusterID == cluster.IDIASZone && f.CommandID == cmdIASZoneStatusChangeNotification &&
		f.MfgSpecific && f.MfgID == cluster.MfgIDComcast {
		return true
	}
	return f.CommandID == cmdDeviceCheckin
}
