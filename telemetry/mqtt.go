package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gwcore/zigbeedriver/events"
)

// snapshot is the wire shape published for every event: the event's own
// exported fields flattened in beside the common envelope fields, since
// events.Event keeps Type/DeviceID/Timestamp behind accessor methods rather
// than exported struct fields.
type snapshot struct {
	Type      events.EventType `json:"type"`
	DeviceID  string           `json:"deviceId,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Event     events.Event     `json:"event"`
}

// MQTTExporter publishes event-tracker activity to an MQTT broker,
// one topic per event type under a configurable prefix. It never blocks
// the caller publishing to the subscribed bus: publish failures are
// swallowed, matching the fire-and-forget nature of telemetry export.
type MQTTExporter struct {
	bus        *events.EventBus
	client     mqtt.Client
	opts       *options
	broker     string
	subID      uint64
	published  atomic.Uint64
	publishErr atomic.Uint64
	mu         sync.Mutex
	connected  bool
}

// NewMQTTExporter creates an exporter that will publish to broker once
// Connect is called. It does not subscribe to bus until Connect succeeds.
func NewMQTTExporter(bus *events.EventBus, broker string, opts ...Option) *MQTTExporter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &MQTTExporter{
		bus:    bus,
		broker: broker,
		opts:   o,
	}
}

// Connect dials the broker and subscribes to the event bus. Calling
// Connect twice is a no-op once already connected.
func (e *MQTTExporter) Connect(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.connected {
		return nil
	}

	clientID := e.opts.clientID
	if clientID == "" {
		clientID = fmt.Sprintf("zigbeedriver-telemetry-%d", time.Now().UnixNano())
	}

	mqttOpts := mqtt.NewClientOptions().
		AddBroker(e.broker).
		SetClientID(clientID).
		SetConnectTimeout(e.opts.connTimeout).
		SetAutoReconnect(true)

	if e.opts.username != "" {
		mqttOpts.SetUsername(e.opts.username)
		mqttOpts.SetPassword(e.opts.password)
	}
	if e.opts.tlsConfig != nil {
		mqttOpts.SetTLSConfig(e.opts.tlsConfig)
	}

	client := mqtt.NewClient(mqttOpts)
	token := client.Connect()

	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if token.Error() != nil {
			return fmt.Errorf("telemetry: mqtt connect: %w", token.Error())
		}
	}

	e.client = client
	e.connected = true
	e.subID = e.bus.Subscribe(e.onEvent)
	return nil
}

// onEvent is the bus subscription handler: it never blocks the bus's
// PublishAsync goroutine longer than the publish call itself takes, and
// never returns an error since it has no caller to report to.
func (e *MQTTExporter) onEvent(ev events.Event) {
	e.mu.Lock()
	client := e.client
	e.mu.Unlock()
	if client == nil || !client.IsConnected() {
		return
	}

	snap := snapshot{
		Type:      ev.Type(),
		DeviceID:  ev.DeviceID(),
		Timestamp: ev.Timestamp(),
		Event:     ev,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		e.publishErr.Add(1)
		return
	}

	topic := fmt.Sprintf("%s/%s", e.opts.topicPrefix, ev.Type())
	token := client.Publish(topic, e.opts.qos, false, data)
	go func() {
		token.Wait()
		if token.Error() != nil {
			e.publishErr.Add(1)
			return
		}
		e.published.Add(1)
	}()
}

// Published returns the number of snapshots successfully published.
func (e *MQTTExporter) Published() uint64 {
	return e.published.Load()
}

// PublishErrors returns the number of snapshots that failed to marshal or
// publish.
func (e *MQTTExporter) PublishErrors() uint64 {
	return e.publishErr.Load()
}

// Close unsubscribes from the event bus and disconnects from the broker.
func (e *MQTTExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.connected {
		return nil
	}
	e.connected = false

	e.bus.Unsubscribe(e.subID)
	if e.client != nil {
		e.client.Disconnect(250)
		e.client = nil
	}
	return nil
}
