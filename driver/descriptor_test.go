package driver

import (
	"context"
	"testing"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/internal/testutil"
	"github.com/gwcore/zigbeedriver/types"
)

// TestApplyDescriptorSchedulesUpgrade confirms a newer firmware version
// schedules a pending upgrade job for the device's first endpoint.
func TestApplyDescriptorSchedulesUpgrade(t *testing.T) {
	d, _, _, eui := pairedS1Driver(t)

	err := d.ApplyDescriptor(context.Background(), eui, descriptor.DeviceDescriptor{
		LatestFirmware: descriptor.FirmwareMetadata{Version: 0x00000099, Filenames: []string{"img.bin"}},
	})
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, d.firmware.Pending(eui))
}

// TestReconfigureUsesCachedDiscoveredRecord confirms Reconfigure sources
// the discovered-device record from the in-memory cache when present.
func TestReconfigureUsesCachedDiscoveredRecord(t *testing.T) {
	d, _, _, eui := pairedS1Driver(t)

	err := d.Reconfigure(context.Background(), eui)
	testutil.AssertNoError(t, err)
}

// TestReconfigureFallsBackToPersistedMetadata confirms Reconfigure still
// works once the device has been evicted from the discovered-device cache,
// by falling back to the persisted discoveredDetails metadata.
func TestReconfigureFallsBackToPersistedMetadata(t *testing.T) {
	d, _, _, eui := pairedS1Driver(t)

	d.cache.evict(eui)
	_, found := d.cache.get(eui)
	testutil.AssertFalse(t, found)

	err := d.Reconfigure(context.Background(), eui)
	testutil.AssertNoError(t, err)
}

// TestReconfigureMissingMetadataErrors confirms a device with neither a
// cache entry nor persisted discoveredDetails metadata surfaces an
// explicit error rather than silently skipping reconfiguration.
func TestReconfigureMissingMetadataErrors(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()
	d := New(hw, st, descs, types.MapProperties{}, Hooks{})

	eui := types.EUI64(777)
	_ = st.SetDevice(context.Background(), &types.Device{EUI: eui})

	err := d.Reconfigure(context.Background(), eui)
	testutil.AssertErrorContains(t, err, "missing discovered-details metadata")
}

// TestReconfigureVetoedByHook confirms a DeviceNeedsReconfiguring hook
// returning false skips reconfiguration entirely.
func TestReconfigureVetoedByHook(t *testing.T) {
	d, _, _, eui := pairedS1Driver(t)

	called := false
	d.hooks.DeviceNeedsReconfiguring = func(ctx context.Context, e types.EUI64) bool {
		called = true
		return false
	}

	err := d.Reconfigure(context.Background(), eui)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, called)
}
