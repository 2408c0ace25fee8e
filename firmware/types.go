package firmware

import (
	"errors"
	"time"

	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/types"
)

// Common errors.
var (
	// ErrNoUpdate indicates the compare predicate found no upgrade
	// warranted: the installed firmware is not older than the descriptor's
	// latest version (equal or newer).
	ErrNoUpdate = errors.New("firmware: no update available")

	// ErrUpgradeInProgress indicates a job is already pending for this
	// device (spec.md §3: "at most one firmware upgrade job is pending
	// at a time").
	ErrUpgradeInProgress = errors.New("firmware: upgrade already pending")

	// ErrDownloadIncomplete indicates not every file in the descriptor
	// was successfully obtained.
	ErrDownloadIncomplete = errors.New("firmware: not all files available")
)

// Configuration property keys, per spec.md §6.
const (
	PropUpgradeDelaySecs      = "firmware.upgrade.delaySecs"
	PropUpgradeRetryDelaySecs = "firmware.upgrade.retryDelaySecs"
	PropUpgradeNoDelay        = "zigbee.fw.upgrade.no.delay"
)

// Defaults, per spec.md §4.6 and §6.
const (
	DefaultDelaySecs      = 7200
	DefaultRetryDelaySecs = 3600
	NoDelaySecs           = 1
)

// Job is a pending firmware upgrade for one device, owned exclusively by
// the Orchestrator (spec.md §3 "Firmware upgrade job").
type Job struct {
	EUI         types.EUI64
	Endpoint    byte
	Descriptor  descriptor.DeviceDescriptor
	ScheduledAt time.Time
}
