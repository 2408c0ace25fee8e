package eventtracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gwcore/zigbeedriver/hal"
	"github.com/gwcore/zigbeedriver/types"
)

type scanCall struct {
	channel byte
}

type mockEnergyHAL struct {
	mu    sync.Mutex
	calls []scanCall
}

func (m *mockEnergyHAL) SendClusterCommand(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16, commandID byte, payload []byte, mfgSpecific bool, mfgID uint16) error {
	return nil
}
func (m *mockEnergyHAL) ReadAttributeAsNumber(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16) (int64, error) {
	return 0, nil
}
func (m *mockEnergyHAL) WriteAttribute(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16, dataType hal.AttributeDataType, value int64) error {
	return nil
}
func (m *mockEnergyHAL) ConfigureAttributeReporting(ctx context.Context, eui types.EUI64, endpoint byte, clusterID, attributeID uint16, minIntervalSecs, maxIntervalSecs uint16, reportableChange int64) error {
	return nil
}
func (m *mockEnergyHAL) SetBinding(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16) error {
	return nil
}
func (m *mockEnergyHAL) RequestLeave(ctx context.Context, eui types.EUI64, endpoint byte) error {
	return nil
}
func (m *mockEnergyHAL) PerformEnergyScan(ctx context.Context, channel byte, scanCount, scanDurationMs, scansPerChannel int) (hal.EnergyScanSample, error) {
	m.mu.Lock()
	m.calls = append(m.calls, scanCall{channel: channel})
	m.mu.Unlock()
	return hal.EnergyScanSample{MinRSSI: -80, MaxRSSI: -40, MeanRSSI: -60}, nil
}
func (m *mockEnergyHAL) RefreshFirmwareIndex(ctx context.Context) error { return nil }
func (m *mockEnergyHAL) EnumerateAttributeInfos(ctx context.Context, eui types.EUI64, endpoint byte, clusterID uint16) ([]hal.AttributeInfo, error) {
	return nil, nil
}

func (m *mockEnergyHAL) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestChannelScannerDisabledNeverScans(t *testing.T) {
	hw := &mockEnergyHAL{}
	props := types.MapProperties{}
	s := NewChannelScanner(hw, props, func(hal.EnergyScanSample) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
	if hw.callCount() != 0 {
		t.Fatalf("expected no scans while disabled, got %d", hw.callCount())
	}
}

func TestChannelScannerRescheduleTriggersImmediateRun(t *testing.T) {
	hw := &mockEnergyHAL{}
	props := types.MapProperties{
		PropEnergyScanEnabled:   "true",
		PropScanPeriodMinutes:   "60",
		PropInterChannelDelayMs: "0",
		PropScansPerChannel:     "1",
		PropScanDurationMs:      "1",
	}
	var mu sync.Mutex
	samples := make(map[byte]hal.EnergyScanSample)
	s := NewChannelScanner(hw, props, func(sample hal.EnergyScanSample) {
		mu.Lock()
		samples[sample.Channel] = sample
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Without a reschedule the scanner would sleep a full 60 minutes
	// before its first pass; Reschedule wakes the initial sleep
	// immediately so the test completes without waiting on that period.
	time.Sleep(10 * time.Millisecond)
	s.Reschedule()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(samples)
		mu.Unlock()
		if n == int(lastChannel-firstChannel+1) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for all channels to be scanned, got %d", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	for ch := firstChannel; ch <= lastChannel; ch++ {
		sample, ok := samples[ch]
		if !ok {
			t.Fatalf("missing sample for channel %d", ch)
		}
		if sample.MeanRSSI != -60 {
			t.Fatalf("channel %d mean RSSI = %v, want -60", ch, sample.MeanRSSI)
		}
	}
}

func TestChannelScannerStopInterruptsSleep(t *testing.T) {
	hw := &mockEnergyHAL{}
	props := types.MapProperties{PropEnergyScanEnabled: "false"}
	s := NewChannelScanner(hw, props, func(hal.EnergyScanSample) {})

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after Stop")
	}
}

func TestTrackerRecordChannelSampleLatestOnly(t *testing.T) {
	tr := New(types.MapProperties{})
	tr.RecordChannelSample(hal.EnergyScanSample{Channel: 15, MinRSSI: -90, MaxRSSI: -50, MeanRSSI: -70})
	tr.RecordChannelSample(hal.EnergyScanSample{Channel: 15, MinRSSI: -80, MaxRSSI: -40, MeanRSSI: -60})

	got := tr.CollectChannelSamples()
	sample, ok := got[15]
	if !ok {
		t.Fatal("expected a sample for channel 15")
	}
	if sample.MeanRSSI != -60 {
		t.Fatalf("MeanRSSI = %v, want -60 (latest sample only)", sample.MeanRSSI)
	}
}
