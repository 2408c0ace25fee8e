package events

import (
	"testing"
)

func TestNewHandlerRegistry(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	registry := NewHandlerRegistry(bus)
	if registry == nil {
		t.Fatal("NewHandlerRegistry() returned nil")
	}
	if registry.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %v, want 0", registry.SubscriptionCount())
	}
}

func TestHandlerRegistry_OnAttributeReport(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var received *AttributeReportEvent
	registry.OnAttributeReport(func(e *AttributeReportEvent) {
		received = e
	})

	bus.Publish(NewAttributeReportEvent("device1", 0x0001, 0x0020, []byte{1, 2}))
	bus.Publish(NewCheckinEvent("device1", false)) // should not trigger

	if received == nil {
		t.Fatal("handler was not called")
	}
	if received.ClusterID != 0x0001 {
		t.Errorf("ClusterID = %#x, want 0x0001", received.ClusterID)
	}
}

func TestHandlerRegistry_OnAttributeReportFor(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var count int
	registry.OnAttributeReportFor("device1", func(e *AttributeReportEvent) {
		count++
	})

	bus.Publish(NewAttributeReportEvent("device1", 0x0001, 0x0020, nil))
	bus.Publish(NewAttributeReportEvent("device2", 0x0001, 0x0020, nil)) // should not trigger
	bus.Publish(NewAttributeReportEvent("device1", 0x0402, 0x0000, nil))

	if count != 2 {
		t.Errorf("count = %v, want 2", count)
	}
}

func TestHandlerRegistry_OnRejoin(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var received *RejoinEvent
	registry.OnRejoin(func(e *RejoinEvent) {
		received = e
	})

	bus.Publish(NewRejoinEvent("device1", true))
	bus.Publish(NewCheckinEvent("device1", false)) // should not trigger

	if received == nil {
		t.Fatal("handler was not called")
	}
	if !received.Secure {
		t.Error("Secure = false, want true")
	}
}

func TestHandlerRegistry_OnRejoinFor(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var count int
	registry.OnRejoinFor("device1", func(e *RejoinEvent) {
		count++
	})

	bus.Publish(NewRejoinEvent("device1", true))
	bus.Publish(NewRejoinEvent("device2", true)) // should not trigger
	bus.Publish(NewRejoinEvent("device1", false))

	if count != 2 {
		t.Errorf("count = %v, want 2", count)
	}
}

func TestHandlerRegistry_OnCheckin(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var received *CheckinEvent
	registry.OnCheckin(func(e *CheckinEvent) {
		received = e
	})

	bus.Publish(NewCheckinEvent("device1", true))
	bus.Publish(NewRejoinEvent("device1", true)) // should not trigger

	if received == nil {
		t.Fatal("handler was not called")
	}
	if !received.Enhanced {
		t.Error("Enhanced = false, want true")
	}
}

func TestHandlerRegistry_OnCheckinFor(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var count int
	registry.OnCheckinFor("device1", func(e *CheckinEvent) {
		count++
	})

	bus.Publish(NewCheckinEvent("device1", false))
	bus.Publish(NewCheckinEvent("device2", false)) // should not trigger
	bus.Publish(NewCheckinEvent("device1", true))

	if count != 2 {
		t.Errorf("count = %v, want 2", count)
	}
}

func TestHandlerRegistry_OnEnergyScan(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var received *EnergyScanEvent
	registry.OnEnergyScan(func(e *EnergyScanEvent) {
		received = e
	})

	bus.Publish(NewEnergyScanEvent(11, -80, -40, -60.0))
	bus.Publish(NewCheckinEvent("device1", false)) // should not trigger

	if received == nil {
		t.Fatal("handler was not called")
	}
	if received.Channel != 11 {
		t.Errorf("Channel = %v, want 11", received.Channel)
	}
}

func TestHandlerRegistry_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var count int
	id := registry.OnCheckin(func(e *CheckinEvent) {
		count++
	})

	bus.Publish(NewCheckinEvent("device1", false))
	if count != 1 {
		t.Fatalf("count = %v, want 1", count)
	}

	if !registry.Unsubscribe(id) {
		t.Error("Unsubscribe() returned false")
	}
	if registry.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %v, want 0", registry.SubscriptionCount())
	}

	bus.Publish(NewCheckinEvent("device1", false))
	if count != 1 {
		t.Errorf("count = %v after unsubscribe, want 1", count)
	}
}

func TestHandlerRegistry_UnsubscribeAll(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()
	registry := NewHandlerRegistry(bus)

	var count int
	registry.OnCheckin(func(e *CheckinEvent) { count++ })
	registry.OnRejoin(func(e *RejoinEvent) { count++ })

	if registry.SubscriptionCount() != 2 {
		t.Fatalf("SubscriptionCount() = %v, want 2", registry.SubscriptionCount())
	}

	registry.UnsubscribeAll()
	if registry.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %v, want 0", registry.SubscriptionCount())
	}

	bus.Publish(NewCheckinEvent("device1", false))
	bus.Publish(NewRejoinEvent("device1", true))
	if count != 0 {
		t.Errorf("count = %v after UnsubscribeAll, want 0", count)
	}
}
