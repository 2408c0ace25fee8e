package events

import (
	"testing"
)

func TestWithDeviceID(t *testing.T) {
	filter := WithDeviceID("device1")

	event1 := NewCheckinEvent("device1", false)
	event2 := NewCheckinEvent("device2", false)

	if !filter(event1) {
		t.Error("filter should match device1")
	}
	if filter(event2) {
		t.Error("filter should not match device2")
	}
}

func TestWithDeviceIDs(t *testing.T) {
	filter := WithDeviceIDs("device1", "device3")

	tests := []struct {
		deviceID string
		want     bool
	}{
		{"device1", true},
		{"device2", false},
		{"device3", true},
		{"device4", false},
	}

	for _, tt := range tests {
		t.Run(tt.deviceID, func(t *testing.T) {
			event := NewCheckinEvent(tt.deviceID, false)
			if got := filter(event); got != tt.want {
				t.Errorf("filter(%v) = %v, want %v", tt.deviceID, got, tt.want)
			}
		})
	}
}

func TestWithEventType(t *testing.T) {
	filter := WithEventType(EventTypeCheckin)

	checkin := NewCheckinEvent("device1", false)
	rejoin := NewRejoinEvent("device1", true)

	if !filter(checkin) {
		t.Error("filter should match Checkin")
	}
	if filter(rejoin) {
		t.Error("filter should not match Rejoin")
	}
}

func TestWithEventTypes(t *testing.T) {
	filter := WithEventTypes(EventTypeCheckin, EventTypeRejoin)

	checkin := NewCheckinEvent("device1", false)
	rejoin := NewRejoinEvent("device1", true)
	report := NewAttributeReportEvent("device1", 0x0001, 0x0020, nil)

	if !filter(checkin) {
		t.Error("filter should match Checkin")
	}
	if !filter(rejoin) {
		t.Error("filter should match Rejoin")
	}
	if filter(report) {
		t.Error("filter should not match AttributeReport")
	}
}

func TestAnd(t *testing.T) {
	filter := And(
		WithDeviceID("device1"),
		WithEventType(EventTypeRejoin),
	)

	tests := []struct {
		event Event
		name  string
		want  bool
	}{
		{name: "device1 + rejoin", event: NewRejoinEvent("device1", true), want: true},
		{name: "device2 + rejoin", event: NewRejoinEvent("device2", true), want: false},
		{name: "device1 + checkin", event: NewCheckinEvent("device1", false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter(tt.event); got != tt.want {
				t.Errorf("filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnd_Empty(t *testing.T) {
	filter := And()

	if !filter(NewCheckinEvent("device1", false)) {
		t.Error("empty And should match all events")
	}
}

func TestOr(t *testing.T) {
	filter := Or(
		WithDeviceID("device1"),
		WithDeviceID("device2"),
	)

	tests := []struct {
		deviceID string
		want     bool
	}{
		{"device1", true},
		{"device2", true},
		{"device3", false},
	}

	for _, tt := range tests {
		t.Run(tt.deviceID, func(t *testing.T) {
			event := NewCheckinEvent(tt.deviceID, false)
			if got := filter(event); got != tt.want {
				t.Errorf("filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOr_Empty(t *testing.T) {
	filter := Or()

	if filter(NewCheckinEvent("device1", false)) {
		t.Error("empty Or should not match any events")
	}
}

func TestNot(t *testing.T) {
	filter := Not(WithDeviceID("device1"))

	device1 := NewCheckinEvent("device1", false)
	device2 := NewCheckinEvent("device2", false)

	if filter(device1) {
		t.Error("Not filter should not match device1")
	}
	if !filter(device2) {
		t.Error("Not filter should match device2")
	}
}

func TestAttributeReports_Shorthand(t *testing.T) {
	filter := AttributeReports()

	report := NewAttributeReportEvent("d1", 0x0001, 0x0020, nil)
	checkin := NewCheckinEvent("d1", false)

	if !filter(report) {
		t.Error("AttributeReports() should match attribute report events")
	}
	if filter(checkin) {
		t.Error("AttributeReports() should not match check-in events")
	}
}

func TestRejoins_Shorthand(t *testing.T) {
	filter := Rejoins()

	rejoin := NewRejoinEvent("d1", true)
	checkin := NewCheckinEvent("d1", false)

	if !filter(rejoin) {
		t.Error("Rejoins() should match rejoin events")
	}
	if filter(checkin) {
		t.Error("Rejoins() should not match check-in events")
	}
}

func TestCheckins_Shorthand(t *testing.T) {
	filter := Checkins()

	checkin := NewCheckinEvent("d1", false)
	rejoin := NewRejoinEvent("d1", true)

	if !filter(checkin) {
		t.Error("Checkins() should match check-in events")
	}
	if filter(rejoin) {
		t.Error("Checkins() should not match rejoin events")
	}
}

func TestEnergyScans_Shorthand(t *testing.T) {
	filter := EnergyScans()

	scan := NewEnergyScanEvent(11, -80, -40, -60.0)
	checkin := NewCheckinEvent("d1", false)

	if !filter(scan) {
		t.Error("EnergyScans() should match energy scan events")
	}
	if filter(checkin) {
		t.Error("EnergyScans() should not match check-in events")
	}
}

func TestComplexFilter(t *testing.T) {
	// Match rejoins from device1 or device2 that are secure.
	filter := And(
		Or(WithDeviceID("device1"), WithDeviceID("device2")),
		Rejoins(),
	)

	tests := []struct {
		event Event
		name  string
		want  bool
	}{
		{name: "device1 rejoin", event: NewRejoinEvent("device1", true), want: true},
		{name: "device2 rejoin", event: NewRejoinEvent("device2", false), want: true},
		{name: "device3 rejoin", event: NewRejoinEvent("device3", true), want: false},
		{name: "device1 checkin", event: NewCheckinEvent("device1", false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter(tt.event); got != tt.want {
				t.Errorf("filter() = %v, want %v", got, tt.want)
			}
		})
	}
}
