package cluster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Registry owns every registered cluster handler. It is built once at
// startup and read-only afterward (spec.md §5 "Shared state and locks"),
// so the mutex here only guards the construction window.
type Registry struct {
	mu       sync.RWMutex
	byID     map[uint16]Cluster
	ordered  []Cluster
	built    bool
}

// NewRegistry constructs a registry from the given clusters. Duplicate
// cluster ids are not rejected: the last cluster given for an id replaces
// the earlier ones, and no warning is raised.
func NewRegistry(clusters ...Cluster) *Registry {
	r := &Registry{byID: make(map[uint16]Cluster, len(clusters))}
	for _, c := range clusters {
		r.byID[c.ClusterID()] = c
	}
	r.rebuildOrdered()
	return r
}

func (r *Registry) rebuildOrdered() {
	ordered := make([]Cluster, 0, len(r.byID))
	for _, c := range r.byID {
		ordered = append(ordered, c)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})
	r.ordered = ordered
	r.built = true
}

// ByID returns the cluster registered under id, if any.
func (r *Registry) ByID(id uint16) (Cluster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}

// Ordered returns every registered cluster, highest priority first, ties
// unordered within a tier.
func (r *Registry) Ordered() []Cluster {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Cluster, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// VetoFunc lets the upper driver veto a particular cluster's configuration
// for a particular endpoint (spec.md §4.1's "pre-configure hook").
type VetoFunc func(ep *types.Endpoint, clusterID uint16) bool

// Configure runs cluster configuration for one endpoint in priority order.
// For each registered cluster advertised by the endpoint (server or client
// side) that is not vetoed, it invokes Configure if the cluster implements
// Configurer. The first failure aborts the whole endpoint's configuration,
// matching spec.md §4.1 ("Failure of any configure aborts the whole device
// configuration and fails the pairing").
func (r *Registry) Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string, veto VetoFunc) error {
	for _, c := range r.Ordered() {
		if !ep.HasCluster(c.ClusterID()) {
			continue
		}
		if veto != nil && veto(ep, c.ClusterID()) {
			continue
		}
		configurer, ok := c.(Configurer)
		if !ok {
			continue
		}
		if err := configurer.Configure(ctx, hw, ep, desc, discovered, configMetadata); err != nil {
			return fmt.Errorf("cluster 0x%04x configure: %w", c.ClusterID(), err)
		}
	}
	return nil
}

// Dispatch routes one inbound envelope to the cluster registered under its
// cluster id, per spec.md §4.3 step 2: an unknown cluster id causes no
// handler invocation (the caller is still responsible for the unconditional
// upper-driver forward in step 3).
func (r *Registry) Dispatch(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	c, ok := r.ByID(env.ClusterID)
	if !ok {
		return nil
	}
	if env.IsAttributeReport {
		if h, ok := c.(AttributeReportHandler); ok {
			return h.HandleAttributeReport(ctx, eui, ep, env)
		}
		return nil
	}
	if h, ok := c.(CommandHandler); ok {
		return h.HandleCommand(ctx, eui, ep, env)
	}
	return nil
}

// Destroy releases per-device state on every registered cluster that
// implements Destroyer, used when a device is removed.
func (r *Registry) Destroy(eui types.EUI64) {
	for _, c := range r.Ordered() {
		if d, ok := c.(Destroyer); ok {
			d.Destroy(eui)
		}
	}
}
