// Package descriptor declares the device-descriptor repository the driver
// runtime consumes: given a manufacturer/model/hardware/firmware tuple, it
// returns the descriptor driving cluster configuration defaults and
// firmware-upgrade comparison. This module never implements the
// repository, only the boundary the core calls across (spec.md §1).
package descriptor
