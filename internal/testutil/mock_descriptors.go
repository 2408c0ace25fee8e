package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/gwcore/zigbeedriver/descriptor"
)

// MockDescriptors implements descriptor.Descriptors over an in-memory
// table keyed by manufacturer/model/hardware version. Firmware version is
// not part of the key: a real repository may vary the descriptor by
// installed firmware, but tests register one descriptor per
// manufacturer/model/hardware tuple unless they need otherwise.
type MockDescriptors struct {
	mu    sync.Mutex
	byKey map[string]descriptor.DeviceDescriptor
}

// NewMockDescriptors constructs an empty MockDescriptors.
func NewMockDescriptors() *MockDescriptors {
	return &MockDescriptors{byKey: make(map[string]descriptor.DeviceDescriptor)}
}

func descriptorKey(manufacturer, model string, hardwareVersion int) string {
	return fmt.Sprintf("%s/%s/%d", manufacturer, model, hardwareVersion)
}

// Add registers a descriptor for a manufacturer/model/hardware tuple.
func (m *MockDescriptors) Add(manufacturer, model string, hardwareVersion int, desc descriptor.DeviceDescriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[descriptorKey(manufacturer, model, hardwareVersion)] = desc
}

// Lookup implements descriptor.Descriptors.
func (m *MockDescriptors) Lookup(ctx context.Context, manufacturer, model string, hardwareVersion int, firmwareVersion uint32) (descriptor.DeviceDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byKey[descriptorKey(manufacturer, model, hardwareVersion)]
	if !ok {
		return descriptor.DeviceDescriptor{}, descriptor.ErrNotFound
	}
	return d, nil
}
