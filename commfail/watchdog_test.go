package commfail

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

type recordingStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{values: make(map[string]string)}
}
func (r *recordingStore) SetResource(ctx context.Context, id, name, value string, origin store.ChangeOrigin) error {
	r.mu.Lock()
	r.values[id+"/"+name] = value
	r.mu.Unlock()
	return nil
}
func (r *recordingStore) get(id, name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[id+"/"+name]
}

func (r *recordingStore) GetDevice(ctx context.Context, eui types.EUI64) (*types.Device, bool, error) {
	return nil, false, nil
}
func (r *recordingStore) SetDevice(ctx context.Context, device *types.Device) error { return nil }
func (r *recordingStore) ListDevices(ctx context.Context) ([]*types.Device, error)  { return nil, nil }
func (r *recordingStore) RemoveDevice(ctx context.Context, eui types.EUI64) error   { return nil }
func (r *recordingStore) GetResource(ctx context.Context, id, name string) (types.ResourceSpec, bool, error) {
	return types.ResourceSpec{}, false, nil
}
func (r *recordingStore) ListResources(ctx context.Context, id string) ([]types.ResourceSpec, error) {
	return nil, nil
}
func (r *recordingStore) ResourceAge(ctx context.Context, id, name string) (time.Duration, error) {
	return 0, nil
}
func (r *recordingStore) GetMetadata(ctx context.Context, id, key string) (string, bool, error) {
	return "", false, nil
}
func (r *recordingStore) SetMetadata(ctx context.Context, id, key, value string) error { return nil }
func (r *recordingStore) ListMetadata(ctx context.Context, id string) (map[string]string, error) {
	return nil, nil
}
func (r *recordingStore) EmitDeviceFound(ctx context.Context, details store.DeviceFoundDetails) (bool, error) {
	return true, nil
}

func TestWatchdogExpiryAndRestore(t *testing.T) {
	st := newRecordingStore()
	eui := types.EUI64(1)
	var failedCalled, restoredCalled int
	var mu sync.Mutex
	w := New(st, 20*time.Millisecond, Hooks{
		CommunicationFailed:   func(types.EUI64) { mu.Lock(); failedCalled++; mu.Unlock() },
		CommunicationRestored: func(types.EUI64) { mu.Lock(); restoredCalled++; mu.Unlock() },
	})

	w.Arm(eui)
	time.Sleep(60 * time.Millisecond)

	if !w.IsFailed(eui) {
		t.Fatal("expected device to be in comm-fail after timeout")
	}
	if st.get(eui.String(), types.ResourceCommFailure) != "true" {
		t.Fatalf("commFailure resource = %q, want true", st.get(eui.String(), types.ResourceCommFailure))
	}

	w.Received(context.Background(), eui)
	if w.IsFailed(eui) {
		t.Fatal("expected device to leave comm-fail on received frame")
	}
	if st.get(eui.String(), types.ResourceCommFailure) != "false" {
		t.Fatalf("commFailure resource = %q, want false", st.get(eui.String(), types.ResourceCommFailure))
	}

	mu.Lock()
	defer mu.Unlock()
	if failedCalled != 1 || restoredCalled != 1 {
		t.Fatalf("failedCalled=%d restoredCalled=%d, want 1 and 1", failedCalled, restoredCalled)
	}
}

func TestWatchdogDisabledWhenZero(t *testing.T) {
	st := newRecordingStore()
	eui := types.EUI64(2)
	w := New(st, 0, Hooks{})
	w.Arm(eui)
	time.Sleep(20 * time.Millisecond)
	if w.IsFailed(eui) {
		t.Fatal("duration 0 must disable the watchdog")
	}
}
