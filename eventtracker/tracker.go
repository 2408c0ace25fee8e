package eventtracker

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gwcore/zigbeedriver/events"
	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Property keys gating tracker activity (spec.md §6).
const (
	PropReportDeviceInfoEnabled = "cpe.zigbee.reportDeviceInfo.enabled"
	PropEnergyScanEnabled       = "cpe.diagnostics.zigBeeData.enabled"
)

// Counters is a snapshot of one device's integer counters.
type Counters struct {
	RejoinsTotal    int
	RejoinsSecure   int
	RejoinsInsecure int
	APSAckFailures  int
	DuplicateSeqNum int
}

// Tracker is the process-wide event recorder (spec.md §4.7). All state is
// guarded by a single mutex, matching the teacher's EventBus discipline of
// one lock per shared structure.
type Tracker struct {
	mu       sync.Mutex
	holders  map[types.EUI64]*holder
	channels map[byte]hal.EnergyScanSample
	bus      *events.EventBus
	props    types.Properties
	nowUnix  func() int64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEventBus attaches a bus that every recorded event is also published
// to, for telemetry export.
func WithEventBus(bus *events.EventBus) Option {
	return func(t *Tracker) { t.bus = bus }
}

// WithClock overrides the tracker's time source; tests use this to avoid
// depending on wall-clock time.
func WithClock(now func() int64) Option {
	return func(t *Tracker) { t.nowUnix = now }
}

// New constructs a Tracker. props gates collection per spec.md §6; a nil
// props treats every gate as disabled.
func New(props types.Properties, opts ...Option) *Tracker {
	t := &Tracker{
		holders:  make(map[types.EUI64]*holder),
		channels: make(map[byte]hal.EnergyScanSample),
		props:    props,
		nowUnix:  func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) reportingEnabled() bool {
	return t.props != nil && t.props.GetBool(PropReportDeviceInfoEnabled, false)
}

func (t *Tracker) energyScanEnabled() bool {
	return t.props != nil && t.props.GetBool(PropEnergyScanEnabled, false)
}

func (t *Tracker) holderFor(eui types.EUI64) *holder {
	h, ok := t.holders[eui]
	if !ok {
		h = newHolder()
		t.holders[eui] = h
	}
	return h
}

// RecordAttributeReport inserts an attribute report, ignoring sensor-class
// devices and no-op when report collection is disabled (spec.md §4.7).
func (t *Tracker) RecordAttributeReport(eui types.EUI64, isSensorClass bool, clusterID uint16, sourceEndpoint byte, raw []byte) {
	if !t.reportingEnabled() || isSensorClass {
		return
	}
	t.mu.Lock()
	h := t.holderFor(eui)
	rec := AttributeReportRecord{
		TimestampUnix: t.nowUnix(),
		ClusterID:     clusterID,
		AttributeID:   uint16(sourceEndpoint),
		RawValue:      bracketedDecimal(raw),
	}
	h.recordAttributeReport(rec)
	t.mu.Unlock()

	t.publish(events.NewAttributeReportEvent(eui.String(), clusterID, uint16(sourceEndpoint), raw))
}

// RecordRejoin records a device rejoin.
func (t *Tracker) RecordRejoin(eui types.EUI64, secure bool) {
	t.mu.Lock()
	h := t.holderFor(eui)
	h.recordRejoin(secure, t.nowUnix())
	t.mu.Unlock()

	t.publish(events.NewRejoinEvent(eui.String(), secure))
}

// RecordCommand observes an inbound command for duplicate-sequence-number
// tracking and, when it classifies as a check-in, records it.
func (t *Tracker) RecordCommand(eui types.EUI64, seq byte, frame CommandFrame) {
	t.mu.Lock()
	h := t.holderFor(eui)
	h.observeSeqNum(seq)
	isCheckin := IsCheckin(frame)
	if isCheckin {
		h.recordCheckin(t.nowUnix())
	}
	t.mu.Unlock()

	if isCheckin {
		t.publish(events.NewCheckinEvent(eui.String(), false))
	}
}

// RecordAPSAckFailure records an APS-level acknowledgment failure.
func (t *Tracker) RecordAPSAckFailure(eui types.EUI64) {
	t.mu.Lock()
	t.holderFor(eui).recordAPSAckFailure()
	t.mu.Unlock()
}

// RecordChannelSample stores the latest energy-scan sample for a channel,
// replacing any prior sample for that channel (spec.md §4.7 "latest-only,
// not an accumulating history").
func (t *Tracker) RecordChannelSample(sample hal.EnergyScanSample) {
	t.mu.Lock()
	t.channels[sample.Channel] = sample
	t.mu.Unlock()

	t.publish(events.NewEnergyScanEvent(sample.Channel, sample.MinRSSI, sample.MaxRSSI, sample.MeanRSSI))
}

// CollectChannelSamples returns a deep clone of every channel's latest
// energy-scan sample, keyed by channel number.
func (t *Tracker) CollectChannelSamples() map[byte]hal.EnergyScanSample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[byte]hal.EnergyScanSample, len(t.channels))
	for ch, s := range t.channels {
		out[ch] = s
	}
	return out
}

func (t *Tracker) publish(e events.Event) {
	if t.bus != nil {
		t.bus.PublishAsync(e)
	}
}

// CollectAttributeReports returns a deep clone of eui's attribute-report
// ring buffer (spec.md §4.7 "Collection functions return deep clones").
func (t *Tracker) CollectAttributeReports(eui types.EUI64) []AttributeReportRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.holders[eui]
	if !ok {
		return nil
	}
	return h.attributeReports.snapshot()
}

// CollectRejoins returns a deep clone of eui's rejoin ring buffer.
func (t *Tracker) CollectRejoins(eui types.EUI64) []RejoinRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.holders[eui]
	if !ok {
		return nil
	}
	return h.rejoins.snapshot()
}

// CollectCheckins returns a deep clone of eui's check-in timestamp ring
// buffer.
func (t *Tracker) CollectCheckins(eui types.EUI64) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.holders[eui]
	if !ok {
		return nil
	}
	return h.checkins.snapshot()
}

// CollectCounters returns a snapshot of eui's integer counters.
func (t *Tracker) CollectCounters(eui types.EUI64) Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.holders[eui]
	if !ok {
		return Counters{}
	}
	return Counters{
		RejoinsTotal:    h.rejoinsTotal(),
		RejoinsSecure:   h.rejoinsSecure,
		RejoinsInsecure: h.rejoinsInsecure,
		APSAckFailures:  h.apsAckFailures,
		DuplicateSeqNum: h.duplicateSeqNum,
	}
}

// bracketedDecimal renders raw as the bracketed comma-separated decimal
// encoding spec.md §4.7 specifies, e.g. []byte{1,2,255} -> "[1,2,255]".
func bracketedDecimal(raw []byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = strconv.Itoa(int(b))
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ","))
}
