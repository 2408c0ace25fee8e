package driver

import (
	"context"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// buildDevice converts a discovered-device record into the persisted
// Device shape, once attribute inventory discovery has populated its
// cluster records.
func buildDevice(discovered types.DiscoveredDeviceRecord) (*types.Device, error) {
	eui, err := types.ParseEUI64(discovered.EUI64)
	if err != nil {
		return nil, err
	}
	dev := &types.Device{
		Manufacturer:    discovered.Manufacturer,
		Model:           discovered.Model,
		EUI:             eui,
		HardwareVersion: discovered.HardwareVersion,
		FirmwareVersion: discovered.FirmwareVersion,
		PowerSource:     parsePowerSource(discovered.PowerSource),
	}
	for _, de := range discovered.Endpoints {
		dev.Endpoints = append(dev.Endpoints, &types.Endpoint{
			ID:             discovered.EUI64,
			Number:         de.EndpointID,
			AppDeviceID:    de.AppDeviceID,
			ServerClusters: toClusterRecords(de.ServerClusters, types.ClusterRoleServer),
			ClientClusters: toClusterRecords(de.ClientClusters, types.ClusterRoleClient),
		})
	}
	return dev, nil
}

func toClusterRecords(clusters []types.DiscoveredCluster, role types.ClusterRole) []types.ClusterRecord {
	out := make([]types.ClusterRecord, len(clusters))
	for i, c := range clusters {
		out[i] = types.ClusterRecord{
			ClusterID:    c.ClusterID,
			AttributeIDs: append([]uint16(nil), c.AttributeIDs...),
			Role:         role,
		}
	}
	return out
}

func parsePowerSource(s string) types.PowerSource {
	switch s {
	case "mains":
		return types.PowerSourceMains
	case "battery":
		return types.PowerSourceBattery
	case "battery_backed":
		return types.PowerSourceBatteryBacked
	default:
		return types.PowerSourceUnknown
	}
}

func deviceHasCluster(device *types.Device, clusterID uint16) bool {
	for _, ep := range device.Endpoints {
		if ep.HasCluster(clusterID) {
			return true
		}
	}
	return false
}

// discoverAttributes walks every endpoint/cluster pair through the HAL's
// attribute enumeration and writes the discovered attribute ids back into
// the record in place (spec.md §4.2 step 6). HAL errors are non-fatal: a
// cluster whose attributes could not be enumerated keeps whatever
// attribute ids the record already lists, rather than failing the whole
// pairing attempt.
func discoverAttributes(ctx context.Context, hw hal.HAL, eui types.EUI64, discovered types.DiscoveredDeviceRecord) types.DiscoveredDeviceRecord {
	for i := range discovered.Endpoints {
		ep := &discovered.Endpoints[i]
		discoverClusterAttrs(ctx, hw, eui, ep.EndpointID, ep.ServerClusters)
		discoverClusterAttrs(ctx, hw, eui, ep.EndpointID, ep.ClientClusters)
	}
	return discovered
}

func discoverClusterAttrs(ctx context.Context, hw hal.HAL, eui types.EUI64, epNum byte, clusters []types.DiscoveredCluster) {
	for i := range clusters {
		infos, err := hw.EnumerateAttributeInfos(ctx, eui, epNum, clusters[i].ClusterID)
		if err != nil {
			continue
		}
		ids := make([]uint16, len(infos))
		for j, info := range infos {
			ids[j] = info.AttributeID
		}
		clusters[i].AttributeIDs = ids
	}
}

// defaultLabel builds the fallback device label used when neither the
// upper driver nor the descriptor supplies one: the manufacturer name
// followed by the last four hex digits of the device's EUI.
func defaultLabel(manufacturer string, eui types.EUI64) string {
	id := eui.String()
	suffix := id
	if len(id) > 4 {
		suffix = id[len(id)-4:]
	}
	return manufacturer + suffix
}
