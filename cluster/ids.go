package cluster

// Cluster id constants for the clusters this runtime knows about, mirroring
// the ZCL assigned numbers. RemoteCellModem is a manufacturer-specific
// cluster (spec.md §4.1).
const (
	IDBasic                  uint16 = 0x0000
	IDPowerConfiguration     uint16 = 0x0001
	IDIdentify               uint16 = 0x0003
	IDPollControl            uint16 = 0x0020
	IDTemperatureMeasurement uint16 = 0x0402
	IDIASZone                uint16 = 0x0500
	IDAlarms                 uint16 = 0x0009
	IDOTAUpgrade             uint16 = 0x0019
	IDDiagnostics            uint16 = 0x0B05
	IDRemoteCellModem        uint16 = 0xFC00
)

// MfgIDComcast is the manufacturer id used to tag the enhanced check-in and
// the Comcast-flavored IAS-Zone status-change-notification recognized by
// the event tracker's check-in classifier (spec.md §4.7).
const MfgIDComcast uint16 = 0x111D

// AttributeInfo describes one attribute known to belong to a cluster,
// independent of any particular device's discovered inventory. It backs
// CapabilityFor, used when a driver wants to know the full attribute set a
// cluster id advertises in the abstract (e.g. documentation, diagnostics).
type AttributeInfo struct {
	AttributeID uint16
	Name        string
}

// Capability is the static description of a cluster: its human-readable
// name and the attribute ids it is known to expose. It has no behavior —
// behavior lives on the Cluster implementations themselves.
type Capability struct {
	ClusterID   uint16
	ClusterName string
	Attributes  []AttributeInfo
}

// capabilityTable maps the cluster ids this runtime describes to their
// static description. It is independent of the Registry: it lists Basic,
// IAS Zone and Remote Cell Modem, which the default registry does not
// hold, and has no entry for Identify.
var capabilityTable = map[uint16]Capability{
	IDBasic: {
		ClusterID: IDBasic, ClusterName: "Basic",
		Attributes: []AttributeInfo{
			{0x0000, "ZCLVersion"}, {0x0001, "ApplicationVersion"},
			{0x0004, "ManufacturerName"}, {0x0005, "ModelIdentifier"},
			{0x0007, "PowerSource"},
		},
	},
	IDPowerConfiguration: {
		ClusterID: IDPowerConfiguration, ClusterName: "Power Configuration",
		Attributes: []AttributeInfo{
			{0x0020, "BatteryVoltage"}, {0x0021, "BatteryPercentageRemaining"},
			{0x0033, "BatteryAlarmMask"}, {0x0035, "BatteryVoltageMinThreshold"},
			{0x0036, "BatteryPercentageMinThreshold"}, {0x0037, "BatteryAlarmState"},
			{0x003E, "BatteryRechargeCycles"},
		},
	},
	IDPollControl: {
		ClusterID: IDPollControl, ClusterName: "Poll Control",
		Attributes: []AttributeInfo{
			{0x0000, "CheckinInterval"}, {0x0001, "LongPollInterval"},
			{0x0002, "ShortPollInterval"}, {0x0003, "FastPollTimeout"},
		},
	},
	IDTemperatureMeasurement: {
		ClusterID: IDTemperatureMeasurement, ClusterName: "Temperature Measurement",
		Attributes: []AttributeInfo{
			{0x0000, "MeasuredValue"}, {0x0001, "MinMeasuredValue"}, {0x0002, "MaxMeasuredValue"},
		},
	},
	IDIASZone: {
		ClusterID: IDIASZone, ClusterName: "IAS Zone",
		Attributes: []AttributeInfo{
			{0x0000, "ZoneState"}, {0x0001, "ZoneType"}, {0x0002, "ZoneStatus"},
		},
	},
	IDAlarms: {
		ClusterID: IDAlarms, ClusterName: "Alarms",
		Attributes: []AttributeInfo{
			{0x0000, "AlarmCount"},
		},
	},
	IDOTAUpgrade: {
		ClusterID: IDOTAUpgrade, ClusterName: "OTA Upgrade",
		Attributes: []AttributeInfo{
			{0x0000, "UpgradeServerID"}, {0x0002, "CurrentFileVersion"},
		},
	},
	IDDiagnostics: {
		ClusterID: IDDiagnostics, ClusterName: "Diagnostics",
		Attributes: []AttributeInfo{
			{0x011C, "LastMessageLQI"}, {0x011D, "LastMessageRSSI"},
		},
	},
	IDRemoteCellModem: {
		ClusterID: IDRemoteCellModem, ClusterName: "Remote Cell Modem",
		Attributes: []AttributeInfo{
			{0x0000, "PowerOnState"},
		},
	},
}

// CapabilityFor returns the static capability description for a cluster id,
// or false if capabilityTable has no entry for it.
func CapabilityFor(clusterID uint16) (Capability, bool) {
	c, ok := capabilityTable[clusterID]
	return c, ok
}
