package events

// Filter is a function that determines if an event should be processed.
type Filter func(Event) bool

// WithDeviceID creates a filter that matches events from a specific device.
func WithDeviceID(deviceID string) Filter {
	return func(e Event) bool {
		return e.DeviceID() == deviceID
	}
}

// WithDeviceIDs creates a filter that matches events from any of the specified devices.
func WithDeviceIDs(deviceIDs ...string) Filter {
	idSet := make(map[string]bool, len(deviceIDs))
	for _, id := range deviceIDs {
		idSet[id] = true
	}
	return func(e Event) bool {
		return idSet[e.DeviceID()]
	}
}

// WithEventType creates a filter that matches events of a specific type.
func WithEventType(eventType EventType) Filter {
	return func(e Event) bool {
		return e.Type() == eventType
	}
}

// WithEventTypes creates a filter that matches events of any of the specified types.
func WithEventTypes(eventTypes ...EventType) Filter {
	typeSet := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeSet[t] = true
	}
	return func(e Event) bool {
		return typeSet[e.Type()]
	}
}

// And combines multiple filters with AND logic.
// All filters must match for the event to be accepted.
func And(filters ...Filter) Filter {
	return func(e Event) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// Or combines multiple filters with OR logic.
// At least one filter must match for the event to be accepted.
func Or(filters ...Filter) Filter {
	return func(e Event) bool {
		for _, f := range filters {
			if f(e) {
				return true
			}
		}
		return false
	}
}

// Not negates a filter.
func Not(filter Filter) Filter {
	return func(e Event) bool {
		return !filter(e)
	}
}

// AttributeReports is a shorthand filter for attribute report events.
func AttributeReports() Filter {
	return WithEventType(EventTypeAttributeReport)
}

// Rejoins is a shorthand filter for rejoin events.
func Rejoins() Filter {
	return WithEventType(EventTypeRejoin)
}

// Checkins is a shorthand filter for check-in events.
func Checkins() Filter {
	return WithEventType(EventTypeCheckin)
}

// EnergyScans is a shorthand filter for channel energy scan events.
func EnergyScans() Filter {
	return WithEventType(EventTypeEnergyScan)
}

// FirmwareUpgrades is a shorthand filter for firmware upgrade events.
func FirmwareUpgrades() Filter {
	return WithEventType(EventTypeFirmwareUpgrade)
}
