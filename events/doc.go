// Package events provides a typed publish-subscribe bus used to fan out
// runtime observations (attribute reports, rejoins, check-ins, channel
// energy scans) to interested listeners such as the telemetry exporters,
// without coupling the event tracker to any particular sink.
//
// # Event Bus
//
// The EventBus is the central hub for event distribution:
//
//	bus := events.NewEventBus()
//	defer bus.Close()
//
//	bus.Subscribe(func(e events.Event) {
//	    fmt.Printf("event: %s from %s\n", e.Type(), e.DeviceID())
//	})
//
//	bus.Publish(events.NewCheckinEvent(eui.String(), false))
//
// # Filtered Subscriptions
//
// Use filters to receive only relevant events:
//
//	bus.SubscribeFiltered(events.Rejoins(), func(e events.Event) {
//	    // handle rejoin events only
//	})
//
//	bus.SubscribeFiltered(
//	    events.And(events.Checkins(), events.WithDeviceID(eui.String())),
//	    func(e events.Event) {
//	        // handle check-ins from one device
//	    },
//	)
//
// # Handler Registration
//
// For more structured event handling, use the HandlerRegistry:
//
//	registry := events.NewHandlerRegistry(bus)
//	registry.OnRejoin(func(e *events.RejoinEvent) {
//	    fmt.Printf("rejoin: %s secure=%v\n", e.DeviceID(), e.Secure)
//	})
//
// # Thread Safety
//
// The EventBus is fully thread-safe. Subscribers are invoked synchronously
// in the order they were registered via Publish, or concurrently via
// PublishAsync. Handlers should stay fast; offload heavy processing to
// their own goroutines.
package events
