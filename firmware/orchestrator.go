package firmware

import (
	"context"
	"sync"
	"time"

	"github.com/gwcore/zigbeedriver/cluster"
	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger installs a logger.
func WithLogger(l types.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTimer overrides the delayed-execution primitive; tests use this to
// avoid depending on wall-clock time.
func WithTimer(timer func(d time.Duration, f func()) *time.Timer) Option {
	return func(o *Orchestrator) { o.afterFunc = timer }
}

// WithUpgradeHook overrides the default OTA image-notify kickoff with an
// upper-driver-supplied upgrade initiation (spec.md §4.6 step 4,
// "otherwise send an OTA image-notify").
func WithUpgradeHook(hook func(ctx context.Context, eui types.EUI64, endpoint byte, desc descriptor.DeviceDescriptor) error) Option {
	return func(o *Orchestrator) { o.upgradeHook = hook }
}

// WithManualShutdownBlocking disables the default behavior of blocking
// process shutdown for every scheduled job, leaving BlockShutdownFor as
// the only way to mark a given upgrade as shutdown-blocking (spec.md §9).
func WithManualShutdownBlocking() Option {
	return func(o *Orchestrator) { o.manualBlocking = true }
}

// WithFailureHook installs a callback invoked whenever a download or
// image-notify attempt fails, before the job is rescheduled.
func WithFailureHook(hook func(eui types.EUI64, err error)) Option {
	return func(o *Orchestrator) { o.failureHook = hook }
}

// ComparePredicate reports whether latest warrants replacing installed,
// given the persisted and catalog firmware version strings (spec.md §4.6
// step 2, "an upper-driver-provided predicate or a default lexicographic
// compare"). Both arguments are the ten-character "0x"-prefixed hex form
// produced by types.FormatFirmwareVersion.
type ComparePredicate func(installed, latest string) bool

func defaultComparePredicate(installed, latest string) bool {
	return installed < latest
}

// WithComparePredicate overrides the default lexicographic installed-vs-
// latest firmware comparison with predicate.
func WithComparePredicate(predicate ComparePredicate) Option {
	return func(o *Orchestrator) { o.comparePredicate = predicate }
}

// Orchestrator compares installed against latest firmware, downloads
// image files, and schedules delayed upgrade attempts with retry,
// blocking shutdown while a critical upgrade is in flight (spec.md
// §4.6). At most one job is pending per device.
type Orchestrator struct {
	hw               hal.HAL
	st               store.Store
	ota              *cluster.OTAUpgrade
	downloader       *Downloader
	properties       types.Properties
	logger           types.Logger
	afterFunc        func(d time.Duration, f func()) *time.Timer
	upgradeHook      func(ctx context.Context, eui types.EUI64, endpoint byte, desc descriptor.DeviceDescriptor) error
	failureHook      func(eui types.EUI64, err error)
	comparePredicate ComparePredicate
	manualBlocking   bool

	mu   sync.Mutex
	jobs map[types.EUI64]*Job

	shutdownMu sync.Mutex
	shutdownCv *sync.Cond
	blocking   map[types.EUI64]bool
}

// New constructs an Orchestrator. downloader may be shared across
// multiple device descriptors since its singleflight group deduplicates
// by filename.
func New(hw hal.HAL, st store.Store, ota *cluster.OTAUpgrade, downloader *Downloader, properties types.Properties, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		hw:               hw,
		st:               st,
		ota:              ota,
		downloader:       downloader,
		properties:       properties,
		logger:           types.NopLogger{},
		afterFunc:        func(d time.Duration, f func()) *time.Timer { return time.AfterFunc(d, f) },
		comparePredicate: defaultComparePredicate,
		jobs:             make(map[types.EUI64]*Job),
		blocking:         make(map[types.EUI64]bool),
	}
	o.shutdownCv = sync.NewCond(&o.shutdownMu)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CompareAndSchedule compares desc's latest firmware version against the
// device's installed version and, if an upgrade is warranted, schedules a
// delayed job (spec.md §4.6 steps 1-2). It returns ErrNoUpdate when
// already current and ErrUpgradeInProgress when a job is already pending.
func (o *Orchestrator) CompareAndSchedule(ctx context.Context, eui types.EUI64, endpoint byte, desc descriptor.DeviceDescriptor) error {
	o.mu.Lock()
	if _, pending := o.jobs[eui]; pending {
		o.mu.Unlock()
		return ErrUpgradeInProgress
	}
	o.mu.Unlock()

	installed, found, err := o.st.GetResource(ctx, eui.String(), types.ResourceFirmwareVersion)
	if err == nil && found {
		latest := types.FormatFirmwareVersion(desc.LatestFirmware.Version)
		if !o.comparePredicate(installed.Value, latest) {
			_ = o.st.SetResource(ctx, eui.String(), types.ResourceFirmwareUpdateStatus, types.FirmwareStatusUpToDate, store.ChangeOriginDriver)
			return ErrNoUpdate
		}
	}

	clone, err := desc.Clone()
	if err != nil {
		return err
	}

	job := &Job{
		EUI:        eui,
		Endpoint:   endpoint,
		Descriptor: clone,
	}
	o.mu.Lock()
	o.jobs[eui] = job
	o.mu.Unlock()

	_ = o.st.SetResource(ctx, eui.String(), types.ResourceFirmwareUpdateStatus, types.FirmwareStatusPending, store.ChangeOriginDriver)

	delay := o.delayFor()
	job.ScheduledAt = time.Now().Add(delay)
	if !o.manualBlocking {
		o.block(eui)
	}
	o.afterFunc(delay, func() { o.run(ctx, job) })
	return nil
}

func (o *Orchestrator) delayFor() time.Duration {
	if o.properties.GetInt(PropUpgradeNoDelay, 0) != 0 {
		return NoDelaySecs * time.Second
	}
	return time.Duration(o.properties.GetInt(PropUpgradeDelaySecs, DefaultDelaySecs)) * time.Second
}

func (o *Orchestrator) retryDelay() time.Duration {
	return time.Duration(o.properties.GetInt(PropUpgradeRetryDelaySecs, DefaultRetryDelaySecs)) * time.Second
}

func (o *Orchestrator) run(ctx context.Context, job *Job) {
	defer o.unblock(job.EUI)

	_ = o.st.SetResource(ctx, job.EUI.String(), types.ResourceFirmwareUpdateStatus, types.FirmwareStatusStarted, store.ChangeOriginDriver)

	if err := o.downloader.EnsureAll(ctx, job.Descriptor.LatestFirmware.Filenames); err != nil {
		o.logger.Warnf("firmware: download incomplete for %s: %v, retrying", job.EUI, err)
		if o.failureHook != nil {
			o.failureHook(job.EUI, err)
		}
		o.reschedule(ctx, job)
		return
	}

	initiate := o.defaultUpgrade
	if o.upgradeHook != nil {
		initiate = o.upgradeHook
	}
	if err := initiate(ctx, job.EUI, job.Endpoint, job.Descriptor); err != nil {
		o.logger.Warnf("firmware: upgrade initiation failed for %s: %v, retrying", job.EUI, err)
		if o.failureHook != nil {
			o.failureHook(job.EUI, err)
		}
		o.reschedule(ctx, job)
		return
	}

	_ = o.st.SetResource(ctx, job.EUI.String(), types.ResourceFirmwareUpdateStatus, types.FirmwareStatusCompleted, store.ChangeOriginDriver)
	o.mu.Lock()
	delete(o.jobs, job.EUI)
	o.mu.Unlock()
}

// defaultUpgrade sends an OTA image-notify to the device's endpoint; it is
// the fallback used when no upgradeHook is installed (spec.md §4.6 step 4).
func (o *Orchestrator) defaultUpgrade(ctx context.Context, eui types.EUI64, endpoint byte, _ descriptor.DeviceDescriptor) error {
	return o.ota.ImageNotify(ctx, o.hw, eui, endpoint)
}

func (o *Orchestrator) reschedule(ctx context.Context, job *Job) {
	delay := o.retryDelay()
	job.ScheduledAt = time.Now().Add(delay)
	if !o.manualBlocking {
		o.block(job.EUI)
	}
	o.afterFunc(delay, func() { o.run(ctx, job) })
}

// Cancel drops any pending job for eui without running it, used when a
// device leaves the network (spec.md §4.4 "reset on leave").
func (o *Orchestrator) Cancel(eui types.EUI64) {
	o.mu.Lock()
	delete(o.jobs, eui)
	o.mu.Unlock()
	o.unblock(eui)
}

// Pending reports whether a job is currently scheduled or running for eui.
func (o *Orchestrator) Pending(eui types.EUI64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.jobs[eui]
	return ok
}

func (o *Orchestrator) block(eui types.EUI64) {
	o.shutdownMu.Lock()
	o.blocking[eui] = true
	o.shutdownMu.Unlock()
}

func (o *Orchestrator) unblock(eui types.EUI64) {
	o.shutdownMu.Lock()
	delete(o.blocking, eui)
	if len(o.blocking) == 0 {
		o.shutdownCv.Broadcast()
	}
	o.shutdownMu.Unlock()
}

// BlockShutdownFor marks eui as blocking process shutdown, independent of
// whether a job is scheduled for it (spec.md §9 blockShutdownFor). Jobs
// scheduled through CompareAndSchedule block automatically unless the
// Orchestrator was built with WithManualShutdownBlocking.
func (o *Orchestrator) BlockShutdownFor(eui types.EUI64) {
	o.block(eui)
}

// UnblockShutdownFor releases a shutdown block on eui previously set via
// BlockShutdownFor or automatic job scheduling (spec.md §9 unblock).
func (o *Orchestrator) UnblockShutdownFor(eui types.EUI64) {
	o.unblock(eui)
}

// WaitForShutdown blocks until every in-flight upgrade job has completed
// or failed out, so the process does not exit mid-upgrade (spec.md §4.6
// "blocks process shutdown while critical upgrades are in flight").
func (o *Orchestrator) WaitForShutdown() {
	o.shutdownMu.Lock()
	defer o.shutdownMu.Unlock()
	for len(o.blocking) > 0 {
		o.shutdownCv.Wait()
	}
}

// AwaitQuiescent blocks until every blocked EUI has cleared or deadline
// elapses, reporting whether it returned because the blocking set drained
// (true) rather than timing out (false) (spec.md §9 awaitQuiescent).
func (o *Orchestrator) AwaitQuiescent(deadline time.Time) bool {
	done := make(chan struct{})
	go func() {
		o.shutdownMu.Lock()
		defer o.shutdownMu.Unlock()
		for len(o.blocking) > 0 {
			o.shutdownCv.Wait()
		}
		close(done)
	}()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
