package driver

import (
	"context"
	"testing"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/internal/testutil"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

func s1Record() types.DiscoveredDeviceRecord {
	return types.DiscoveredDeviceRecord{
		EUI64:           "000d6f0001234567",
		Manufacturer:    "A",
		Model:           "B",
		HardwareVersion: 2,
		FirmwareVersion: 0x00000010,
		Endpoints: []types.DiscoveredEndpoint{
			{
				EndpointID:  1,
				AppDeviceID: 0x0402,
				ServerClusters: []types.DiscoveredCluster{
					{ClusterID: 0x0000, IsServer: true},
					{ClusterID: 0x0001, IsServer: true},
					{ClusterID: 0x0020, IsServer: true},
					{ClusterID: 0x0500, IsServer: true},
				},
			},
		},
	}
}

func newTestDriver(t *testing.T, st *testutil.MockStore, hw *testutil.MockHAL, descs *testutil.MockDescriptors, hooks Hooks, opts ...Option) *Driver {
	t.Helper()
	return New(hw, st, descs, types.MapProperties{}, hooks, opts...)
}

// TestPairAndPersist implements scenario S1: a discovered record claimed by
// application device id ends up persisted with its firmware version
// resource and per-endpoint Zigbee endpoint-id metadata.
func TestPairAndPersist(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()
	descs.Add("A", "B", 2, descriptor.DeviceDescriptor{
		Manufacturer:    "A",
		Model:           "B",
		HardwareVersion: 2,
		LatestFirmware:  descriptor.FirmwareMetadata{Version: 0x00000010},
	})

	d := newTestDriver(t, st, hw, descs, Hooks{}, WithAppDeviceIDs(0x0402))

	accepted, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, accepted)

	eui, err := types.ParseEUI64("000d6f0001234567")
	testutil.AssertNoError(t, err)

	device, found, err := st.GetDevice(context.Background(), eui)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, "A", device.Manufacturer)
	testutil.AssertEqual(t, "B", device.Model)

	fwRes, found, err := st.GetResource(context.Background(), eui.String(), types.ResourceFirmwareVersion)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, "0x00000010", fwRes.Value)

	epID := eui.String() + "/1"
	epidValue, found, err := st.GetMetadata(context.Background(), epID, types.MetadataZigbeeEndpointID)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, "1", epidValue)

	details, found, err := st.GetMetadata(context.Background(), eui.String(), types.MetadataDiscoveredDetails)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertTrue(t, len(details) > 0)

	testutil.AssertLen(t, st.FoundDetails, 1)
	testutil.AssertEqual(t, "000d6f0001234567", st.FoundDetails[0].ID)
}

// TestPairIgnoredWhenInactive confirms an inactive, non-migrating discovery
// record never reaches the claim step at all.
func TestPairIgnoredWhenInactive(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()

	d := newTestDriver(t, st, hw, descs, Hooks{}, WithAppDeviceIDs(0x0402))

	accepted, err := d.Pair(context.Background(), s1Record(), false, false)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, accepted)
	testutil.AssertLen(t, st.FoundDetails, 0)
}

// TestPairUnclaimedDeviceIDDeclines confirms a device whose application
// device id is not in the driver's configured set, and which the Claim hook
// does not accept, is declined without ever reaching the store.
func TestPairUnclaimedDeviceIDDeclines(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()

	d := newTestDriver(t, st, hw, descs, Hooks{}, WithAppDeviceIDs(0x0051))

	accepted, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, accepted)
	testutil.AssertLen(t, st.FoundDetails, 0)
}

// TestPairClaimHookOverridesAppDeviceIDs confirms the upper driver's Claim
// hook can accept a device the configured application device id set would
// otherwise decline.
func TestPairClaimHookOverridesAppDeviceIDs(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()
	descs.Add("A", "B", 2, descriptor.DeviceDescriptor{
		Manufacturer:    "A",
		Model:           "B",
		HardwareVersion: 2,
		LatestFirmware:  descriptor.FirmwareMetadata{Version: 0x00000010},
	})

	claimed := false
	hooks := Hooks{
		Claim: func(discovered types.DiscoveredDeviceRecord) bool {
			claimed = true
			return true
		},
	}
	d := newTestDriver(t, st, hw, descs, hooks, WithAppDeviceIDs(0x0051))

	accepted, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, accepted)
	testutil.AssertTrue(t, claimed)
}

// TestPairRejectedByStoreEvictsAndLeaves confirms a rejection by
// EmitDeviceFound evicts the discovered-device cache entry without
// persisting a device. The best-effort network leave runs on a background
// goroutine and is not checked here.
func TestPairRejectedByStoreEvictsAndLeaves(t *testing.T) {
	st := testutil.NewMockStore()
	st.AcceptDeviceFound = func(store.DeviceFoundDetails) bool { return false }
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()

	d := newTestDriver(t, st, hw, descs, Hooks{}, WithAppDeviceIDs(0x0402))

	accepted, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, accepted)

	eui, _ := types.ParseEUI64("000d6f0001234567")
	_, found := d.cache.get(eui)
	testutil.AssertFalse(t, found)

	_, found, err = st.GetDevice(context.Background(), eui)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, found)
}

// TestPairRejectedDuringMigrationSkipsLeave confirms a migration replay
// does not trigger the reset-and-leave on rejection.
func TestPairRejectedDuringMigrationSkipsLeave(t *testing.T) {
	st := testutil.NewMockStore()
	st.AcceptDeviceFound = func(store.DeviceFoundDetails) bool { return false }
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()

	d := newTestDriver(t, st, hw, descs, Hooks{}, WithAppDeviceIDs(0x0402))

	accepted, err := d.Pair(context.Background(), s1Record(), false, true)
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, accepted)
	testutil.AssertLen(t, hw.LeaveRequests, 0)
}

// TestPairDescriptorLookupFailureRejects confirms a descriptor-lookup
// failure aborts the pairing attempt and runs the rejection path.
func TestPairDescriptorLookupFailureRejects(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors() // no descriptor registered

	d := newTestDriver(t, st, hw, descs, Hooks{}, WithAppDeviceIDs(0x0402))

	accepted, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertError(t, err)
	testutil.AssertFalse(t, accepted)

	eui, _ := types.ParseEUI64("000d6f0001234567")
	_, found, _ := st.GetDevice(context.Background(), eui)
	testutil.AssertFalse(t, found)
}

// TestPairDevicePersistedHookFires confirms DevicePersisted runs only after
// the device has actually been persisted.
func TestPairDevicePersistedHookFires(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()
	descs.Add("A", "B", 2, descriptor.DeviceDescriptor{
		Manufacturer:    "A",
		Model:           "B",
		HardwareVersion: 2,
		LatestFirmware:  descriptor.FirmwareMetadata{Version: 0x00000010},
	})

	var persistedEUI types.EUI64
	hooks := Hooks{
		DevicePersisted: func(ctx context.Context, eui types.EUI64) {
			persistedEUI = eui
		},
	}
	d := newTestDriver(t, st, hw, descs, hooks, WithAppDeviceIDs(0x0402))

	_, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertNoError(t, err)

	eui, _ := types.ParseEUI64("000d6f0001234567")
	testutil.AssertEqual(t, eui, persistedEUI)
}

// TestRegisterResourcesMergesDriverOverrides confirms driver-supplied
// resource specs win over the common set on name conflict.
func TestRegisterResourcesMergesDriverOverrides(t *testing.T) {
	st := testutil.NewMockStore()
	hw := testutil.NewMockHAL()
	descs := testutil.NewMockDescriptors()
	descs.Add("A", "B", 2, descriptor.DeviceDescriptor{
		Manufacturer:    "A",
		Model:           "B",
		HardwareVersion: 2,
		LatestFirmware:  descriptor.FirmwareMetadata{Version: 0x00000010},
	})

	hooks := Hooks{
		RegisterResources: func(ctx context.Context, eui types.EUI64) []types.ResourceSpec {
			return []types.ResourceSpec{{Name: types.ResourceLabel, Value: "custom-label", Mode: types.ResourceReadable}}
		},
	}
	d := newTestDriver(t, st, hw, descs, hooks, WithAppDeviceIDs(0x0402))

	_, err := d.Pair(context.Background(), s1Record(), true, false)
	testutil.AssertNoError(t, err)

	eui, _ := types.ParseEUI64("000d6f0001234567")
	label, found, err := st.GetResource(context.Background(), eui.String(), types.ResourceLabel)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, "custom-label", label.Value)
}
