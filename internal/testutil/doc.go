// Package testutil provides shared test doubles and assertion helpers for
// the driver runtime's test suites.
//
// This package is internal and not intended for use outside this module's
// own tests.
//
// # Mock collaborators
//
// MockHAL, MockStore, and MockDescriptors implement the hal.HAL,
// store.Store, and descriptor.Descriptors interfaces respectively, backed
// by plain maps guarded by a mutex:
//
//	hw := testutil.NewMockHAL()
//	st := testutil.NewMockStore()
//	ds := testutil.NewMockDescriptors()
//	ds.Add("Acme", "Widget", 1, descriptor.DeviceDescriptor{...})
//
// # Helper functions
//
// Plain assertion helpers mirror the style used throughout this module's
// own _test.go files:
//
//	testutil.AssertEqual(t, want, got)
//	testutil.AssertNoError(t, err)
package testutil
