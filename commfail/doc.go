// Package commfail implements the per-device communication-failure
// watchdog: a timer restarted on every received frame from a device,
// whose expiry marks the device as unreachable until the next frame
// arrives (spec.md §4.5).
package commfail
