// Package cluster provides the cluster registry and configuration engine:
// it receives attribute reports and cluster commands from the HAL and
// routes them to per-cluster handlers, and drives per-cluster
// configuration during pairing in a deterministic priority order.
//
// Each cluster is a polymorphic object implementing a subset of a
// capability set (configure, attribute-report handling, command handling,
// alarm handling, poll-checkin handling, destroy); the Registry dispatches
// over whichever subset a given cluster implements rather than requiring
// every cluster to implement every hook.
package cluster
