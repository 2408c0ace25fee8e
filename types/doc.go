// Package types defines the core domain values shared by every subsystem of
// the Zigbee device-management runtime: devices, endpoints, clusters,
// resources, metadata, and the discovered-device record captured during
// pairing. It also carries the ambient logging abstraction used throughout
// the module.
//
// Nothing in this package talks to the network or to persistent storage;
// see the hal, descriptor, and store packages for those collaborators.
package types
