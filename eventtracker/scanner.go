package eventtracker

import (
	"context"
	"sync"
	"time"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

// Channel scan property keys and defaults (spec.md §4.7, §6).
const (
	PropScanPeriodMinutes   = "cpe.diagnostics.zigBeeData.collection.delay.min"
	PropScansPerChannel     = "cpe.diagnostics.zigBeeData.per.channel.number.of.scans"
	PropScanDurationMs      = "cpe.diagnostics.zigBeeData.channel.scan.duration.ms"
	PropInterChannelDelayMs = "cpe.diagnostics.zigBeeData.channel.scan.delay.ms"

	DefaultScanPeriodMinutes   = 60
	DefaultScansPerChannel     = 10
	DefaultScanDurationMs      = 100
	DefaultInterChannelDelayMs = 1000

	firstChannel byte = 11
	lastChannel  byte = 25
)

// ChannelScanner periodically sweeps channels 11-25 for RF energy and
// records the latest sample per channel (spec.md §4.7). Its sleeps are
// cooperative: a call to Reschedule wakes any in-flight sleep immediately,
// re-evaluating the gating property and period on the next loop pass.
type ChannelScanner struct {
	hw    hal.HAL
	props types.Properties
	sink  func(hal.EnergyScanSample)

	mu      sync.Mutex
	cond    *sync.Cond
	epoch   int
	stopped bool
}

// NewChannelScanner constructs a scanner. sink receives every completed
// per-channel sample; callers typically pass Tracker.RecordChannelSample.
func NewChannelScanner(hw hal.HAL, props types.Properties, sink func(hal.EnergyScanSample)) *ChannelScanner {
	s := &ChannelScanner{hw: hw, props: props, sink: sink}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Reschedule wakes any in-flight sleep so the scanner re-evaluates its
// enabled state and period immediately, per spec.md §4.7 "a property
// change reschedules immediately and cancels in-flight sleeps".
func (s *ChannelScanner) Reschedule() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Stop halts the scanner; a currently running channel pass completes
// naturally and the next between-channel or between-pass sleep exits
// immediately.
func (s *ChannelScanner) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Run drives the scan loop until ctx is canceled or Stop is called. It
// blocks the calling goroutine; callers run it in its own goroutine.
func (s *ChannelScanner) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()
	defer close(done)

	for {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}

		if !s.enabled() {
			s.sleep(time.Minute)
			continue
		}

		period := time.Duration(s.props.GetInt(PropScanPeriodMinutes, DefaultScanPeriodMinutes)) * time.Minute
		// A sleep cut short by Reschedule starts the pass at once; one cut
		// short by Stop makes runOnce return before scanning.
		s.sleep(period)
		s.runOnce(ctx)
	}
}

func (s *ChannelScanner) enabled() bool {
	return s.props != nil && s.props.GetBool(PropEnergyScanEnabled, false)
}

func (s *ChannelScanner) runOnce(ctx context.Context) {
	scansPerChannel := s.props.GetInt(PropScansPerChannel, DefaultScansPerChannel)
	scanDurationMs := s.props.GetInt(PropScanDurationMs, DefaultScanDurationMs)
	interChannelDelay := time.Duration(s.props.GetInt(PropInterChannelDelayMs, DefaultInterChannelDelayMs)) * time.Millisecond

	for ch := firstChannel; ch <= lastChannel; ch++ {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if stopped || !s.enabled() {
			return
		}

		sample, err := s.hw.PerformEnergyScan(ctx, ch, 1, scanDurationMs, scansPerChannel)
		if err == nil {
			sample.Channel = ch
			s.sink(sample)
		}

		if ch != lastChannel {
			if !s.sleep(interChannelDelay) {
				return
			}
		}
	}
}

// sleep blocks for d, or until Reschedule or Stop wakes it, whichever
// comes first. It reports whether the sleep ran to completion.
func (s *ChannelScanner) sleep(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	epoch := s.epoch
	deadline := time.Now().Add(d)

	timer := time.AfterFunc(d, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer timer.Stop()

	for !s.stopped && s.epoch == epoch && time.Now().Before(deadline) {
		s.cond.Wait()
	}
	return !s.stopped && s.epoch == epoch
}
