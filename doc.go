// Package zigbeedriver is the documentation root of a Zigbee
// device-management runtime for a home gateway. It holds no code; all
// functionality lives in the subpackages:
//
//   - types: devices, endpoints, cluster records, resources, metadata, the
//     discovered-device record, and the Logger and Properties abstractions
//   - hal: the HAL interface the runtime drives the Zigbee stack through,
//     plus its envelope types
//   - descriptor: the Descriptors lookup and DeviceDescriptor
//   - store: the Store persistence interface
//   - cluster: the Cluster capability interface, the Registry, and the
//     common clusters
//   - pollcoordinator: the poll-control / battery-saving check-in
//     coordinator
//   - commfail: the per-device comm-fail watchdog
//   - firmware: the firmware upgrade orchestrator and image downloader
//   - events: the publish-subscribe EventBus
//   - eventtracker: per-device activity ring buffers and counters, and the
//     channel energy scanner
//   - driver: the Driver that wires the subsystems together and exposes
//     the pairing pipeline and dispatch path
//   - telemetry: optional MQTT and WebSocket exporters fed from an
//     EventBus
package zigbeedriver
