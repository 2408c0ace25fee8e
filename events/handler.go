package events

import "sync"

// AttributeReportHandler handles attribute report events.
type AttributeReportHandler func(*AttributeReportEvent)

// RejoinHandler handles rejoin events.
type RejoinHandler func(*RejoinEvent)

// CheckinHandler handles check-in events.
type CheckinHandler func(*CheckinEvent)

// EnergyScanHandler handles channel energy scan events.
type EnergyScanHandler func(*EnergyScanEvent)

// FirmwareUpgradeHandler handles firmware upgrade completion events.
type FirmwareUpgradeHandler func(*FirmwareUpgradeEvent)

// HandlerRegistry provides typed event handler registration.
type HandlerRegistry struct {
	bus           *EventBus
	subscriptions []uint64
	mu            sync.Mutex
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(bus *EventBus) *HandlerRegistry {
	return &HandlerRegistry{
		bus:           bus,
		subscriptions: make([]uint64, 0),
	}
}

// track records a subscription ID for later cleanup.
func (r *HandlerRegistry) track(id uint64) {
	r.mu.Lock()
	r.subscriptions = append(r.subscriptions, id)
	r.mu.Unlock()
}

// OnAttributeReport registers a handler for attribute report events.
func (r *HandlerRegistry) OnAttributeReport(handler AttributeReportHandler) uint64 {
	id := r.bus.SubscribeFiltered(AttributeReports(), func(e Event) {
		if evt, ok := e.(*AttributeReportEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnAttributeReportFor registers a handler for attribute report events
// from a specific device.
func (r *HandlerRegistry) OnAttributeReportFor(deviceID string, handler AttributeReportHandler) uint64 {
	filter := And(AttributeReports(), WithDeviceID(deviceID))
	id := r.bus.SubscribeFiltered(filter, func(e Event) {
		if evt, ok := e.(*AttributeReportEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnRejoin registers a handler for rejoin events.
func (r *HandlerRegistry) OnRejoin(handler RejoinHandler) uint64 {
	id := r.bus.SubscribeFiltered(Rejoins(), func(e Event) {
		if evt, ok := e.(*RejoinEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnRejoinFor registers a handler for rejoin events from a specific device.
func (r *HandlerRegistry) OnRejoinFor(deviceID string, handler RejoinHandler) uint64 {
	filter := And(Rejoins(), WithDeviceID(deviceID))
	id := r.bus.SubscribeFiltered(filter, func(e Event) {
		if evt, ok := e.(*RejoinEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnCheckin registers a handler for check-in events.
func (r *HandlerRegistry) OnCheckin(handler CheckinHandler) uint64 {
	id := r.bus.SubscribeFiltered(Checkins(), func(e Event) {
		if evt, ok := e.(*CheckinEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnCheckinFor registers a handler for check-in events from a specific
// device.
func (r *HandlerRegistry) OnCheckinFor(deviceID string, handler CheckinHandler) uint64 {
	filter := And(Checkins(), WithDeviceID(deviceID))
	id := r.bus.SubscribeFiltered(filter, func(e Event) {
		if evt, ok := e.(*CheckinEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnEnergyScan registers a handler for channel energy scan events.
func (r *HandlerRegistry) OnEnergyScan(handler EnergyScanHandler) uint64 {
	id := r.bus.SubscribeFiltered(EnergyScans(), func(e Event) {
		if evt, ok := e.(*EnergyScanEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// OnFirmwareUpgrade registers a handler for firmware upgrade completion
// events.
func (r *HandlerRegistry) OnFirmwareUpgrade(handler FirmwareUpgradeHandler) uint64 {
	id := r.bus.SubscribeFiltered(FirmwareUpgrades(), func(e Event) {
		if evt, ok := e.(*FirmwareUpgradeEvent); ok {
			handler(evt)
		}
	})
	r.track(id)
	return id
}

// Unsubscribe removes a specific subscription.
func (r *HandlerRegistry) Unsubscribe(id uint64) bool {
	r.mu.Lock()
	for i, subID := range r.subscriptions {
		if subID == id {
			r.subscriptions[i] = r.subscriptions[len(r.subscriptions)-1]
			r.subscriptions = r.subscriptions[:len(r.subscriptions)-1]
			break
		}
	}
	r.mu.Unlock()
	return r.bus.Unsubscribe(id)
}

// UnsubscribeAll removes all subscriptions registered through this registry.
func (r *HandlerRegistry) UnsubscribeAll() {
	r.mu.Lock()
	subs := make([]uint64, len(r.subscriptions))
	copy(subs, r.subscriptions)
	r.subscriptions = r.subscriptions[:0]
	r.mu.Unlock()

	for _, id := range subs {
		r.bus.Unsubscribe(id)
	}
}

// SubscriptionCount returns the number of subscriptions in this registry.
func (r *HandlerRegistry) SubscriptionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscriptions)
}
