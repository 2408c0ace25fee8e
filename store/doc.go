// Package store declares the persistence layer the driver runtime
// consumes: the device-service store that exclusively owns persisted
// device, endpoint, resource, and metadata records (spec.md §3
// "Ownership"). This module never implements persistence, only the Store
// boundary the core calls across.
package store
