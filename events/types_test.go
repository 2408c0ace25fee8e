package events

import (
	"testing"
	"time"
)

func TestBaseEvent(t *testing.T) {
	base := BaseEvent{
		eventType: EventTypeCheckin,
		deviceID:  "000d6f0001234567",
		timestamp: time.Now(),
	}

	if base.Type() != EventTypeCheckin {
		t.Errorf("Type() = %v, want %v", base.Type(), EventTypeCheckin)
	}
	if base.DeviceID() != "000d6f0001234567" {
		t.Errorf("DeviceID() = %v, want %v", base.DeviceID(), "000d6f0001234567")
	}
	if base.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestNewAttributeReportEvent(t *testing.T) {
	event := NewAttributeReportEvent("device1", 0x0402, 0x0000, []byte{0x10, 0x00})

	if event.Type() != EventTypeAttributeReport {
		t.Errorf("Type() = %v, want %v", event.Type(), EventTypeAttributeReport)
	}
	if event.DeviceID() != "device1" {
		t.Errorf("DeviceID() = %v, want device1", event.DeviceID())
	}
	if event.ClusterID != 0x0402 {
		t.Errorf("ClusterID = %#x, want 0x0402", event.ClusterID)
	}
	if event.AttributeID != 0x0000 {
		t.Errorf("AttributeID = %#x, want 0x0000", event.AttributeID)
	}
	if len(event.RawValue) != 2 {
		t.Errorf("len(RawValue) = %v, want 2", len(event.RawValue))
	}
}

func TestNewRejoinEvent(t *testing.T) {
	event := NewRejoinEvent("device1", true)

	if event.Type() != EventTypeRejoin {
		t.Errorf("Type() = %v, want %v", event.Type(), EventTypeRejoin)
	}
	if !event.Secure {
		t.Error("Secure = false, want true")
	}
}

func TestNewCheckinEvent(t *testing.T) {
	event := NewCheckinEvent("device1", true)

	if event.Type() != EventTypeCheckin {
		t.Errorf("Type() = %v, want %v", event.Type(), EventTypeCheckin)
	}
	if !event.Enhanced {
		t.Error("Enhanced = false, want true")
	}
}

func TestNewEnergyScanEvent(t *testing.T) {
	event := NewEnergyScanEvent(15, -90, -30, -55.5)

	if event.Type() != EventTypeEnergyScan {
		t.Errorf("Type() = %v, want %v", event.Type(), EventTypeEnergyScan)
	}
	if event.DeviceID() != "" {
		t.Errorf("DeviceID() = %v, want empty (process-wide event)", event.DeviceID())
	}
	if event.Channel != 15 {
		t.Errorf("Channel = %v, want 15", event.Channel)
	}
	if event.MinRSSI != -90 || event.MaxRSSI != -30 {
		t.Errorf("MinRSSI/MaxRSSI = %v/%v, want -90/-30", event.MinRSSI, event.MaxRSSI)
	}
	if event.MeanRSSI != -55.5 {
		t.Errorf("MeanRSSI = %v, want -55.5", event.MeanRSSI)
	}
}
