// Package driver wires the cluster registry, poll-control coordinator,
// comm-fail watchdog, firmware orchestrator, and event tracker into a
// single runtime: the pairing pipeline that turns a HAL-discovered device
// into a persisted one, the dispatch path that routes inbound frames, and
// device removal (spec.md §4.2-§4.3).
package driver
