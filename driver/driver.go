package driver

import (
	"context"
	"sync"
	"time"

	"github.com/gwcore/zigbeedriver/cluster"
	"github.com/gwcore/zigbeedriver/commfail"
	"github.com/gwcore/zigbeedriver/descriptor"
	"github.com/gwcore/zigbeedriver/events"
	"github.com/gwcore/zigbeedriver/eventtracker"
	"github.com/gwcore/zigbeedriver/firmware"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/pollcoordinator"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// Driver is the top-level runtime: it wires the cluster registry,
// poll-control coordinator, comm-fail watchdog, firmware orchestrator, and
// event tracker together and exposes the pairing pipeline and dispatch
// path (spec.md §4.2-§4.3).
type Driver struct {
	hw          hal.HAL
	st          store.Store
	descriptors descriptor.Descriptors
	props       types.Properties
	logger      types.Logger
	hooks       Hooks

	registry *cluster.Registry
	poll     *pollcoordinator.Coordinator
	commfail *commfail.Watchdog
	firmware *firmware.Orchestrator
	tracker  *eventtracker.Tracker
	scanner  *eventtracker.ChannelScanner
	bus      *events.EventBus

	appDeviceIDs       map[uint16]bool
	deviceClass        string
	deviceClassVersion int

	cache *discoveredCache
}

// Option configures a Driver at construction time.
type Option func(*options)

type options struct {
	logger           types.Logger
	extraClusters    []cluster.Cluster
	appDeviceIDs     []uint16
	deviceClass      string
	classVersion     int
	commFailDuration time.Duration
	firmwareDir      string
	firmwareBaseURL  string
	bus              *events.EventBus
	trackerProps     types.Properties
	pollOpts         []pollcoordinator.Option
	firmwareOpts     []firmware.Option
}

// WithLogger installs a shared diagnostic logger for the Driver, its
// poll-control coordinator and its firmware orchestrator. A WithLogger
// passed through WithPollCoordinatorOptions or WithFirmwareOptions takes
// precedence for that subsystem. The comm-fail watchdog, event tracker and
// cluster registry take no logger.
func WithLogger(l types.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClusters registers additional per-device-type clusters alongside the
// always-registered common set (spec.md §4.1, "Per-device-type drivers
// may add more").
func WithClusters(clusters ...cluster.Cluster) Option {
	return func(o *options) { o.extraClusters = append(o.extraClusters, clusters...) }
}

// WithAppDeviceIDs sets the application device ids this driver claims a
// discovered device by, when the upper driver's Claim hook declines or is
// absent (spec.md §4.2 step 2).
func WithAppDeviceIDs(ids ...uint16) Option {
	return func(o *options) { o.appDeviceIDs = ids }
}

// WithDeviceClass sets the device-class name and version reported in
// DeviceFoundDetails (spec.md §4.2 step 4).
func WithDeviceClass(class string, version int) Option {
	return func(o *options) { o.deviceClass, o.classVersion = class, version }
}

// WithCommFailDuration overrides the comm-fail watchdog timeout
// (spec.md §4.5); a duration of 0 disables the watchdog.
func WithCommFailDuration(d time.Duration) Option {
	return func(o *options) { o.commFailDuration = d }
}

// WithFirmwareStorage sets the local directory firmware images are
// downloaded into and the base URL images are fetched from
// (spec.md §4.6 step 3).
func WithFirmwareStorage(dir, baseURL string) Option {
	return func(o *options) { o.firmwareDir, o.firmwareBaseURL = dir, baseURL }
}

// WithEventBus attaches an event bus every tracked event and firmware
// completion is also published to, for telemetry export.
func WithEventBus(bus *events.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// WithTrackerProperties sets the properties source gating event-tracker
// collection (spec.md §6).
func WithTrackerProperties(props types.Properties) Option {
	return func(o *options) { o.trackerProps = props }
}

// WithPollCoordinatorOptions passes through options to the underlying
// pollcoordinator.Coordinator.
func WithPollCoordinatorOptions(opts ...pollcoordinator.Option) Option {
	return func(o *options) { o.pollOpts = append(o.pollOpts, opts...) }
}

// WithFirmwareOptions passes through options to the underlying
// firmware.Orchestrator.
func WithFirmwareOptions(opts ...firmware.Option) Option {
	return func(o *options) { o.firmwareOpts = append(o.firmwareOpts, opts...) }
}

// New wires every subsystem together and returns a ready-to-use Driver.
// hooks is the upper, device-type-specific driver's callback set.
func New(hw hal.HAL, st store.Store, descriptors descriptor.Descriptors, props types.Properties, hooks Hooks, opts ...Option) *Driver {
	o := &options{
		logger:           types.NopLogger{},
		commFailDuration: commfail.DefaultDuration,
		firmwareDir:      "firmware",
		trackerProps:     props,
	}
	for _, opt := range opts {
		opt(o)
	}

	forwarder := &checkinForwarder{}
	pollControl := cluster.NewPollControl(forwarder)
	alarms := cluster.NewAlarms()

	d := &Driver{
		hw:                 hw,
		st:                 st,
		descriptors:        descriptors,
		props:              props,
		logger:             o.logger,
		hooks:              hooks,
		appDeviceIDs:       toSet(o.appDeviceIDs),
		deviceClass:        o.deviceClass,
		deviceClassVersion: o.classVersion,
		bus:                o.bus,
		cache:              newDiscoveredCache(),
	}

	diagnostics := cluster.NewDiagnostics(hw, d.onDiagnostics)
	powerConfig := cluster.NewPowerConfiguration(hw, cluster.PowerConfigCallbacks{
		OnVoltage:              d.onBatteryVoltage,
		OnPercentage:           d.onBatteryPercentage,
		OnChargeLow:            d.onBatteryLow,
		OnBad:                  d.onBatteryBad,
		OnMissing:              d.onBatteryMissing,
		OnHighTemperature:      d.onBatteryHighTemperature,
		OnMainsPresent:         d.onMainsPresent,
		OnRechargeCyclesChange: nil,
	})
	tempMeasurement := cluster.NewTemperatureMeasurement(hw, d.onTemperature)
	ota := cluster.NewOTAUpgrade()

	clusters := append([]cluster.Cluster{
		pollControl, alarms, diagnostics, powerConfig, tempMeasurement, ota,
	}, o.extraClusters...)
	d.registry = cluster.NewRegistry(clusters...)
	alarms.SetRegistry(d.registry)

	d.tracker = eventtracker.New(o.trackerProps, eventtracker.WithEventBus(o.bus))
	d.scanner = eventtracker.NewChannelScanner(hw, o.trackerProps, d.tracker.RecordChannelSample)

	pollOpts := append([]pollcoordinator.Option{pollcoordinator.WithLogger(o.logger)}, o.pollOpts...)
	d.poll = pollcoordinator.New(hw, st, d.registry, d.onEnhancedCheckin, pollOpts...)
	forwarder.setTarget(d.poll)

	d.commfail = commfail.New(st, o.commFailDuration, commfail.Hooks{
		CommunicationFailed:   d.onCommunicationFailed,
		CommunicationRestored: d.onCommunicationRestored,
	})

	downloader := firmware.NewDownloader(o.firmwareDir, o.firmwareBaseURL)
	firmwareOpts := append([]firmware.Option{firmware.WithLogger(o.logger)}, o.firmwareOpts...)
	if hooks.InitiateFirmwareUpgrade != nil {
		firmwareOpts = append(firmwareOpts, firmware.WithUpgradeHook(hooks.InitiateFirmwareUpgrade))
	}
	if hooks.FirmwareUpgradeFailed != nil {
		firmwareOpts = append(firmwareOpts, firmware.WithFailureHook(hooks.FirmwareUpgradeFailed))
	}
	d.firmware = firmware.New(hw, st, ota, downloader, props, firmwareOpts...)

	if hooks.SubsystemInitialized != nil {
		hooks.SubsystemInitialized()
	}

	return d
}

// Registry returns the driver's cluster registry, for tests and for
// per-device-type drivers that need to inspect registered clusters.
func (d *Driver) Registry() *cluster.Registry { return d.registry }

// Tracker returns the driver's process-wide event tracker.
func (d *Driver) Tracker() *eventtracker.Tracker { return d.tracker }

// Firmware returns the driver's firmware upgrade orchestrator.
func (d *Driver) Firmware() *firmware.Orchestrator { return d.firmware }

// CommFail returns the driver's comm-fail watchdog.
func (d *Driver) CommFail() *commfail.Watchdog { return d.commfail }

func toSet(ids []uint16) map[uint16]bool {
	out := make(map[uint16]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// checkinForwarder breaks the construction-order cycle between PollControl
// (which needs a CheckinHandler) and the pollcoordinator.Coordinator
// (which needs the fully-built Registry PollControl is registered in).
// Mirrors cluster.Alarms' SetRegistry indirection for the same reason.
type checkinForwarder struct {
	mu     sync.RWMutex
	target cluster.CheckinHandler
}

func (f *checkinForwarder) setTarget(t cluster.CheckinHandler) {
	f.mu.Lock()
	f.target = t
	f.mu.Unlock()
}

func (f *checkinForwarder) HandleCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte, enhanced bool) error {
	f.mu.RLock()
	target := f.target
	f.mu.RUnlock()
	if target == nil {
		return nil
	}
	return target.HandleCheckin(ctx, eui, ep, payload, enhanced)
}
