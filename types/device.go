package types

// PowerSource describes how a device is powered. Battery-powered devices
// are the ones that sleep between check-ins (see IsSleepy) and so are the
// primary audience of the poll-control coordinator.
type PowerSource int

const (
	// PowerSourceUnknown indicates the power source has not been determined.
	PowerSourceUnknown PowerSource = iota

	// PowerSourceMains indicates the device draws from mains power and is
	// always reachable.
	PowerSourceMains

	// PowerSourceBattery indicates a battery-only sleepy device.
	PowerSourceBattery

	// PowerSourceBatteryBacked indicates a mains device with a battery
	// backup (e.g. a smoke sensor).
	PowerSourceBatteryBacked
)

// String returns a human-readable description of the power source.
func (p PowerSource) String() string {
	switch p {
	case PowerSourceMains:
		return "mains"
	case PowerSourceBattery:
		return "battery"
	case PowerSourceBatteryBacked:
		return "battery_backed"
	default:
		return "unknown"
	}
}

// IsSleepy reports whether devices with this power source are expected to
// spend most of their time asleep and check in periodically.
func (p PowerSource) IsSleepy() bool {
	return p == PowerSourceBattery
}

// ClusterRole identifies which side of a Zigbee cluster an endpoint
// implements.
type ClusterRole int

const (
	// ClusterRoleServer indicates the endpoint hosts the cluster's server
	// side (it owns the attributes and responds to commands).
	ClusterRoleServer ClusterRole = iota

	// ClusterRoleClient indicates the endpoint consumes the cluster from
	// the client side.
	ClusterRoleClient
)

// String returns "server" or "client".
func (r ClusterRole) String() string {
	if r == ClusterRoleClient {
		return "client"
	}
	return "server"
}

// ClusterRecord describes one cluster advertised by an endpoint: its id,
// which role the endpoint plays, and the attribute ids it was discovered
// to support.
type ClusterRecord struct {
	AttributeIDs []uint16
	ClusterID    uint16
	Role         ClusterRole
}

// HasAttribute reports whether the cluster record advertises the given
// attribute id.
func (c ClusterRecord) HasAttribute(attrID uint16) bool {
	for _, id := range c.AttributeIDs {
		if id == attrID {
			return true
		}
	}
	return false
}

// Endpoint is a logical service address on a device (1..240). It carries
// its own stable textual id (assigned by the owning higher-level driver)
// independently from its Zigbee endpoint number, and advertises an
// application device id plus the server/client clusters it supports.
type Endpoint struct {
	ID             string
	ServerClusters []ClusterRecord
	ClientClusters []ClusterRecord
	AppDeviceID    uint16
	Number         byte
}

// Cluster looks up a cluster record by id on either side, server first.
// It returns the record and the role it was found under.
func (e *Endpoint) Cluster(clusterID uint16) (ClusterRecord, ClusterRole, bool) {
	for _, c := range e.ServerClusters {
		if c.ClusterID == clusterID {
			return c, ClusterRoleServer, true
		}
	}
	for _, c := range e.ClientClusters {
		if c.ClusterID == clusterID {
			return c, ClusterRoleClient, true
		}
	}
	return ClusterRecord{}, ClusterRoleServer, false
}

// HasCluster reports whether the endpoint advertises the cluster on
// either side.
func (e *Endpoint) HasCluster(clusterID uint16) bool {
	_, _, ok := e.Cluster(clusterID)
	return ok
}

// Device is a paired Zigbee end device, identified uniquely by its EUI.
// The textual id used by the store is EUI.String().
type Device struct {
	Manufacturer    string
	Model           string
	EUI             EUI64
	Endpoints       []*Endpoint
	HardwareVersion int
	FirmwareVersion uint32
	PowerSource     PowerSource
	CommFail        bool
}

// Endpoint returns the endpoint with the given Zigbee endpoint number, or
// nil if the device has no such endpoint.
func (d *Device) Endpoint(number byte) *Endpoint {
	for _, ep := range d.Endpoints {
		if ep.Number == number {
			return ep
		}
	}
	return nil
}

// FirstEndpoint returns the device's first endpoint, or nil if it has none.
// This is the fallback target for device-wide operations like OTA
// image-notify when no endpoint is specified.
func (d *Device) FirstEndpoint() *Endpoint {
	if len(d.Endpoints) == 0 {
		return nil
	}
	return d.Endpoints[0]
}
