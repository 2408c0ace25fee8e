// Package telemetry exports event-tracker activity (spec.md §4.7) to
// external observers: an MQTT broker for upstream gateway collection, and a
// WebSocket stream for a local diagnostics UI.
//
// Both exporters subscribe to the same *events.EventBus the driver is
// constructed with (driver.WithEventBus); neither is required for the
// driver to function.
//
//	bus := events.NewEventBus()
//	d := driver.New(hw, store, descriptors, props, hooks, driver.WithEventBus(bus))
//
//	exporter := telemetry.NewMQTTExporter(bus, "tcp://broker:1883",
//	    telemetry.WithMQTTTopicPrefix("gateway/zigbee"))
//	if err := exporter.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer exporter.Close()
//
//	diag := telemetry.NewDiagnosticsServer(bus)
//	http.Handle("/diagnostics", diag)
package telemetry
