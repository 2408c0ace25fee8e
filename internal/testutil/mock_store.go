package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// MockStore implements store.Store over plain in-memory maps.
type MockStore struct {
	mu sync.Mutex

	devices   map[types.EUI64]*types.Device
	resources map[string]map[string]types.ResourceSpec
	setAt     map[string]map[string]time.Time
	metadata  map[string]map[string]string

	// AcceptDeviceFound, when non-nil, overrides the default "always
	// accept" EmitDeviceFound behavior.
	AcceptDeviceFound func(store.DeviceFoundDetails) bool
	FoundDetails      []store.DeviceFoundDetails

	now func() time.Time
}

// NewMockStore constructs an empty MockStore that accepts every
// EmitDeviceFound call by default.
func NewMockStore() *MockStore {
	return &MockStore{
		devices:   make(map[types.EUI64]*types.Device),
		resources: make(map[string]map[string]types.ResourceSpec),
		setAt:     make(map[string]map[string]time.Time),
		metadata:  make(map[string]map[string]string),
		now:       time.Now,
	}
}

// SetClock overrides the store's time source, used to test resource-age
// staleness without depending on wall-clock time.
func (s *MockStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// GetDevice implements store.Store.
func (s *MockStore) GetDevice(ctx context.Context, eui types.EUI64) (*types.Device, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[eui]
	return d, ok, nil
}

// SetDevice implements store.Store.
func (s *MockStore) SetDevice(ctx context.Context, device *types.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[device.EUI] = device
	return nil
}

// ListDevices implements store.Store.
func (s *MockStore) ListDevices(ctx context.Context) ([]*types.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out, nil
}

// RemoveDevice implements store.Store.
func (s *MockStore) RemoveDevice(ctx context.Context, eui types.EUI64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, eui)
	delete(s.resources, eui.String())
	delete(s.setAt, eui.String())
	delete(s.metadata, eui.String())
	return nil
}

// GetResource implements store.Store.
func (s *MockStore) GetResource(ctx context.Context, id, name string) (types.ResourceSpec, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName, ok := s.resources[id]
	if !ok {
		return types.ResourceSpec{}, false, nil
	}
	v, ok := byName[name]
	return v, ok, nil
}

// SetResource implements store.Store.
func (s *MockStore) SetResource(ctx context.Context, id, name, value string, origin store.ChangeOrigin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resources[id] == nil {
		s.resources[id] = make(map[string]types.ResourceSpec)
	}
	spec := s.resources[id][name]
	spec.Name = name
	spec.Value = value
	s.resources[id][name] = spec
	if s.setAt[id] == nil {
		s.setAt[id] = make(map[string]time.Time)
	}
	s.setAt[id][name] = s.now()
	return nil
}

// ListResources implements store.Store.
func (s *MockStore) ListResources(ctx context.Context, id string) ([]types.ResourceSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName := s.resources[id]
	out := make([]types.ResourceSpec, 0, len(byName))
	for _, v := range byName {
		out = append(out, v)
	}
	return out, nil
}

// ResourceAge implements store.Store.
func (s *MockStore) ResourceAge(ctx context.Context, id, name string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName, ok := s.setAt[id]
	if !ok {
		return 0, nil
	}
	t, ok := byName[name]
	if !ok {
		return 0, nil
	}
	return s.now().Sub(t), nil
}

// GetMetadata implements store.Store.
func (s *MockStore) GetMetadata(ctx context.Context, id, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey, ok := s.metadata[id]
	if !ok {
		return "", false, nil
	}
	v, ok := byKey[key]
	return v, ok, nil
}

// SetMetadata implements store.Store.
func (s *MockStore) SetMetadata(ctx context.Context, id, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metadata[id] == nil {
		s.metadata[id] = make(map[string]string)
	}
	s.metadata[id][key] = value
	return nil
}

// ListMetadata implements store.Store.
func (s *MockStore) ListMetadata(ctx context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.metadata[id]))
	for k, v := range s.metadata[id] {
		out[k] = v
	}
	return out, nil
}

// EmitDeviceFound implements store.Store.
func (s *MockStore) EmitDeviceFound(ctx context.Context, details store.DeviceFoundDetails) (bool, error) {
	s.mu.Lock()
	s.FoundDetails = append(s.FoundDetails, details)
	accept := s.AcceptDeviceFound
	s.mu.Unlock()
	if accept != nil {
		return accept(details), nil
	}
	return true, nil
}
