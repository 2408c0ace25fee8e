package cluster

import (
	"context"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// cmdImageNotify is the OTA Upgrade cluster's Image Notify command id.
const cmdImageNotify byte = 0x04

// OTAUpgrade implements the OTA Upgrade cluster (spec.md §4.1). Its sole
// behavior from the runtime's side is sending an image-notify; it is
// quietly acceptable if the device ignores it, so ImageNotify's error is
// only ever a HAL transport failure, never a protocol rejection.
type OTAUpgrade struct{}

// NewOTAUpgrade constructs an OTAUpgrade cluster.
func NewOTAUpgrade() *OTAUpgrade { return &OTAUpgrade{} }

// ClusterID implements Cluster.
func (*OTAUpgrade) ClusterID() uint16 { return IDOTAUpgrade }

// Priority implements Cluster.
func (*OTAUpgrade) Priority() Priority { return PriorityDefault }

// ImageNotify sends an OTA image-notify command to a device endpoint,
// prompting it to query for new firmware (spec.md §4.6 step 4).
func (*OTAUpgrade) ImageNotify(ctx context.Context, hw hal.HAL, eui types.EUI64, endpoint byte) error {
	return hw.SendClusterCommand(ctx, eui, endpoint, IDOTAUpgrade, cmdImageNotify, nil, false, 0)
}
