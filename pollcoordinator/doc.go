// Package pollcoordinator implements the poll-control / battery-saving
// coordinator: on each sleepy-device check-in, it decides which clusters
// must refresh data, optionally requests fast-poll, and releases the
// device back to sleep as quickly as possible.
package pollcoordinator
