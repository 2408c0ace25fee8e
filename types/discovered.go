package types

import "encoding/json"

// DiscoveredCluster is the wire/JSON shape of one cluster entry inside a
// discovered-device record, matching the persisted discoveredDetails
// metadata format from spec.md §6.
type DiscoveredCluster struct {
	ClusterID    uint16   `json:"clusterId"`
	IsServer     bool     `json:"isServer"`
	AttributeIDs []uint16 `json:"attributeIds"`
}

// DiscoveredEndpoint is the JSON shape of one endpoint inside a
// discovered-device record.
type DiscoveredEndpoint struct {
	EndpointID     byte                `json:"endpointId"`
	AppDeviceID    uint16              `json:"appDeviceId"`
	ServerClusters []DiscoveredCluster `json:"serverClusters"`
	ClientClusters []DiscoveredCluster `json:"clientClusters"`
}

// DiscoveredDeviceRecord is the structural inventory of a device's
// endpoints, clusters, and attributes captured at pairing time. Its JSON
// encoding is persisted verbatim under the MetadataDiscoveredDetails
// metadata key and must round-trip by structural equality (spec.md §8.10).
type DiscoveredDeviceRecord struct {
	EUI64           string               `json:"eui64"`
	Manufacturer    string               `json:"manufacturer"`
	Model           string               `json:"model"`
	PowerSource     string               `json:"powerSource"`
	Endpoints       []DiscoveredEndpoint `json:"endpoints"`
	HardwareVersion int                  `json:"hardwareVersion"`
	FirmwareVersion uint32               `json:"firmwareVersion"`
}

// FromDevice builds a DiscoveredDeviceRecord snapshot of a device's current
// endpoint/cluster inventory. It does not mutate the device.
func FromDevice(d *Device) DiscoveredDeviceRecord {
	rec := DiscoveredDeviceRecord{
		EUI64:           d.EUI.String(),
		Manufacturer:    d.Manufacturer,
		Model:           d.Model,
		HardwareVersion: d.HardwareVersion,
		FirmwareVersion: d.FirmwareVersion,
		PowerSource:     d.PowerSource.String(),
		Endpoints:       make([]DiscoveredEndpoint, 0, len(d.Endpoints)),
	}
	for _, ep := range d.Endpoints {
		rec.Endpoints = append(rec.Endpoints, DiscoveredEndpoint{
			EndpointID:     ep.Number,
			AppDeviceID:    ep.AppDeviceID,
			ServerClusters: toDiscoveredClusters(ep.ServerClusters, true),
			ClientClusters: toDiscoveredClusters(ep.ClientClusters, false),
		})
	}
	return rec
}

func toDiscoveredClusters(records []ClusterRecord, isServer bool) []DiscoveredCluster {
	out := make([]DiscoveredCluster, 0, len(records))
	for _, r := range records {
		attrs := make([]uint16, len(r.AttributeIDs))
		copy(attrs, r.AttributeIDs)
		out = append(out, DiscoveredCluster{
			ClusterID:    r.ClusterID,
			IsServer:     isServer,
			AttributeIDs: attrs,
		})
	}
	return out
}

// MarshalMetadata JSON-encodes the record for storage under
// MetadataDiscoveredDetails.
func (r DiscoveredDeviceRecord) MarshalMetadata() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseDiscoveredDetails decodes the discoveredDetails metadata value back
// into a DiscoveredDeviceRecord.
func ParseDiscoveredDetails(raw string) (DiscoveredDeviceRecord, error) {
	var rec DiscoveredDeviceRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return DiscoveredDeviceRecord{}, err
	}
	return rec, nil
}

// Clone returns a deep copy of the record, used whenever ownership of a
// discovered-device record needs to transfer to a caller (e.g. the
// discovered-device cache, or a firmware upgrade job's descriptor clone).
func (r DiscoveredDeviceRecord) Clone() DiscoveredDeviceRecord {
	out := r
	out.Endpoints = make([]DiscoveredEndpoint, len(r.Endpoints))
	for i, ep := range r.Endpoints {
		out.Endpoints[i] = ep
		out.Endpoints[i].ServerClusters = cloneDiscoveredClusters(ep.ServerClusters)
		out.Endpoints[i].ClientClusters = cloneDiscoveredClusters(ep.ClientClusters)
	}
	return out
}

func cloneDiscoveredClusters(clusters []DiscoveredCluster) []DiscoveredCluster {
	out := make([]DiscoveredCluster, len(clusters))
	for i, c := range clusters {
		out[i] = c
		out[i].AttributeIDs = make([]uint16, len(c.AttributeIDs))
		copy(out[i].AttributeIDs, c.AttributeIDs)
	}
	return out
}
