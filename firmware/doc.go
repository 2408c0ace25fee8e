// Package firmware implements the firmware upgrade orchestrator: it
// compares installed versus latest firmware per device, downloads image
// files (deduplicated across devices), schedules delayed initiation,
// retries on failure, and blocks process shutdown while critical
// upgrades are in flight (spec.md §4.6).
package firmware
