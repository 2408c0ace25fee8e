package pollcoordinator

import (
	"context"
	"encoding/binary"

	"github.com/gwcore/zigbeedriver/cluster"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/store"
	"github.com/gwcore/zigbeedriver/types"
)

// Poll Control check-in response command ids.
const (
	cmdCheckinResponse byte = 0x01
	cmdFastPollStop    byte = 0x02
)

const defaultFastPollTimeoutQS uint16 = 40 // 10 seconds, in quarter-seconds

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator's diagnostic logger.
func WithLogger(l types.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithThresholds overrides the default staleness thresholds.
func WithThresholds(t Thresholds) Option {
	return func(c *Coordinator) { c.thresholds = t }
}

// WithFastPollTimeout overrides the fast-poll timeout advertised in a
// start-fast-poll check-in response.
func WithFastPollTimeout(qs uint16) Option {
	return func(c *Coordinator) { c.fastPollTimeoutQS = qs }
}

// EnhancedCheckinHandler is an optional hook invoked for mfg-specific
// enhanced check-ins bearing an opaque BatterySavingData payload
// (spec.md §4.4). The coordinator still sends the custom check-in
// response and skips fast-poll regardless of what this hook does.
type EnhancedCheckinHandler func(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte)

// Coordinator implements cluster.CheckinHandler, the runtime's
// poll-control / battery-saving coordinator (spec.md §4.4).
type Coordinator struct {
	hw       hal.HAL
	st       store.Store
	registry *cluster.Registry

	thresholds        Thresholds
	fastPollTimeoutQS uint16
	logger            types.Logger
	onEnhanced        EnhancedCheckinHandler
}

// New constructs a Coordinator. registry is consulted to find which
// registered cluster (if any) handles a given refresh candidate's
// PollCheckinHandler hook.
func New(hw hal.HAL, st store.Store, registry *cluster.Registry, onEnhanced EnhancedCheckinHandler, opts ...Option) *Coordinator {
	c := &Coordinator{
		hw:                hw,
		st:                st,
		registry:          registry,
		thresholds:        DefaultThresholds(),
		fastPollTimeoutQS: defaultFastPollTimeoutQS,
		logger:            types.NopLogger{},
		onEnhanced:        onEnhanced,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleCheckin implements cluster.CheckinHandler.
func (c *Coordinator) HandleCheckin(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte, enhanced bool) error {
	if enhanced {
		return c.handleEnhanced(ctx, eui, ep, payload)
	}
	return c.handleVanilla(ctx, eui, ep)
}

func (c *Coordinator) handleEnhanced(ctx context.Context, eui types.EUI64, ep *types.Endpoint, payload []byte) error {
	if c.onEnhanced != nil {
		c.onEnhanced(ctx, eui, ep, payload)
	}
	return c.sendCheckinResponse(ctx, eui, ep, true, payload)
}

func (c *Coordinator) handleVanilla(ctx context.Context, eui types.EUI64, ep *types.Endpoint) error {
	deviceID := eui.String()
	th := c.thresholds.resolved(ctx, c.st, deviceID)

	feRSSIStale := stale(ctx, c.st, deviceID, types.ResourceFeRSSI, th.FeRSSIRefreshMinSecs)
	feLQIStale := stale(ctx, c.st, deviceID, types.ResourceFeLQI, th.FeLQIRefreshMinSecs)
	voltageStale := stale(ctx, c.st, deviceID, types.ResourceBatteryVoltage, th.BatteryVoltageRefreshMinSecs)
	tempStale := stale(ctx, c.st, deviceID, types.ResourceTemperature, th.TempRefreshMinSecs)

	var needed []uint16
	if feRSSIStale || feLQIStale {
		needed = append(needed, cluster.IDDiagnostics)
	}
	if voltageStale {
		needed = append(needed, cluster.IDPowerConfiguration)
	}
	if tempStale {
		needed = append(needed, cluster.IDTemperatureMeasurement)
	}

	if len(needed) == 0 {
		c.logger.Debugf("pollcoordinator: %s all resources fresh, stay asleep", deviceID)
		return c.sendCheckinResponse(ctx, eui, ep, false, nil)
	}

	if err := c.sendCheckinResponse(ctx, eui, ep, true, nil); err != nil {
		return err
	}
	for _, clusterID := range needed {
		cl, ok := c.registry.ByID(clusterID)
		if !ok {
			continue
		}
		handler, ok := cl.(cluster.PollCheckinHandler)
		if !ok {
			continue
		}
		if err := handler.HandlePollCheckin(ctx, eui, ep); err != nil {
			c.logger.Warnf("pollcoordinator: %s cluster 0x%04x poll checkin: %v", deviceID, clusterID, err)
		}
	}
	return c.hw.SendClusterCommand(ctx, eui, ep.Number, cluster.IDPollControl, cmdFastPollStop, nil, false, 0)
}

func (c *Coordinator) sendCheckinResponse(ctx context.Context, eui types.EUI64, ep *types.Endpoint, startFastPoll bool, enhancedPayload []byte) error {
	if enhancedPayload != nil {
		return c.hw.SendClusterCommand(ctx, eui, ep.Number, cluster.IDPollControl, cmdCheckinResponse, enhancedPayload, true, cluster.MfgIDComcast)
	}
	payload := make([]byte, 3)
	if startFastPoll {
		payload[0] = 1
	}
	binary.LittleEndian.PutUint16(payload[1:], c.fastPollTimeoutQS)
	return c.hw.SendClusterCommand(ctx, eui, ep.Number, cluster.IDPollControl, cmdCheckinResponse, payload, false, 0)
}
