// Package hal declares the lower interface the driver runtime consumes:
// the byte-level Zigbee hardware abstraction layer responsible for sending
// and receiving ZCL frames, binding, attribute reporting configuration,
// and channel energy scanning. Implementing the wire format itself is out
// of scope for this module (spec.md §1); only the interface the core
// depends on lives here.
package hal
