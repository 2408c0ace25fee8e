package cluster

import (
	"context"
	"testing"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

type stubCluster struct {
	id       uint16
	priority Priority
	reports  int
}

func (s *stubCluster) ClusterID() uint16  { return s.id }
func (s *stubCluster) Priority() Priority { return s.priority }
func (s *stubCluster) HandleAttributeReport(ctx context.Context, eui types.EUI64, ep *types.Endpoint, env hal.Envelope) error {
	s.reports++
	return nil
}

func TestRegistryDispatchRouting(t *testing.T) {
	known := &stubCluster{id: 0x1234}
	r := NewRegistry(known)

	ep := &types.Endpoint{Number: 1, ServerClusters: []types.ClusterRecord{{ClusterID: 0x1234}}}

	if err := r.Dispatch(context.Background(), 1, ep, hal.Envelope{ClusterID: 0x1234, IsAttributeReport: true}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if known.reports != 1 {
		t.Fatalf("known cluster invocation count = %d, want 1", known.reports)
	}

	if err := r.Dispatch(context.Background(), 1, ep, hal.Envelope{ClusterID: 0x9999, IsAttributeReport: true}); err != nil {
		t.Fatalf("Dispatch unknown cluster: %v", err)
	}
	if known.reports != 1 {
		t.Fatalf("unknown cluster id invoked a handler; count = %d", known.reports)
	}
}

type orderRecorder struct {
	id       uint16
	priority Priority
	order    *[]uint16
}

func (o *orderRecorder) ClusterID() uint16  { return o.id }
func (o *orderRecorder) Priority() Priority { return o.priority }
func (o *orderRecorder) Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string) error {
	*o.order = append(*o.order, o.id)
	return nil
}

func TestRegistryConfigureOrdering(t *testing.T) {
	var order []uint16
	highest := &orderRecorder{id: 1, priority: PriorityHighest, order: &order}
	defaultA := &orderRecorder{id: 2, priority: PriorityDefault, order: &order}
	defaultB := &orderRecorder{id: 3, priority: PriorityDefault, order: &order}

	r := NewRegistry(defaultA, highest, defaultB)

	ep := &types.Endpoint{
		Number: 1,
		ServerClusters: []types.ClusterRecord{
			{ClusterID: 1}, {ClusterID: 2}, {ClusterID: 3},
		},
	}

	if err := r.Configure(context.Background(), nil, ep, descriptor.DeviceDescriptor{}, types.DiscoveredDeviceRecord{}, nil, nil); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(order) != 3 || order[0] != 1 {
		t.Fatalf("configure order = %v, want highest-priority cluster (1) first", order)
	}
}

func TestRegistryConfigureAbortsOnFailure(t *testing.T) {
	failing := &failingConfigurer{id: 1}
	r := NewRegistry(failing)
	ep := &types.Endpoint{Number: 1, ServerClusters: []types.ClusterRecord{{ClusterID: 1}}}

	if err := r.Configure(context.Background(), nil, ep, descriptor.DeviceDescriptor{}, types.DiscoveredDeviceRecord{}, nil, nil); err == nil {
		t.Fatal("expected Configure to propagate cluster failure")
	}
}

type failingConfigurer struct{ id uint16 }

func (f *failingConfigurer) ClusterID() uint16  { return f.id }
func (f *failingConfigurer) Priority() Priority { return PriorityDefault }
func (f *failingConfigurer) Configure(ctx context.Context, hw hal.HAL, ep *types.Endpoint, desc descriptor.DeviceDescriptor, discovered types.DiscoveredDeviceRecord, configMetadata map[string]string) error {
	return errConfigureFailed
}

var errConfigureFailed = &configureError{"configure failed"}

type configureError struct{ msg string }

func (e *configureError) Error() string { return e.msg }
