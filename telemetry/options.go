package telemetry

import (
	"crypto/tls"
	"time"
)

// Option configures an MQTTExporter.
type Option func(*options)

type options struct {
	tlsConfig   *tls.Config
	topicPrefix string
	clientID    string
	username    string
	password    string
	connTimeout time.Duration
	qos         byte
}

func defaultOptions() *options {
	return &options{
		topicPrefix: "zigbeedriver/events",
		connTimeout: 10 * time.Second,
		qos:         0,
	}
}

// WithMQTTTopicPrefix sets the topic prefix events are published under.
// Each event is published to "<prefix>/<eventType>". Default
// "zigbeedriver/events".
func WithMQTTTopicPrefix(prefix string) Option {
	return func(o *options) { o.topicPrefix = prefix }
}

// WithMQTTClientID sets the MQTT client identifier. If unset, a unique id
// is generated at connect time.
func WithMQTTClientID(id string) Option {
	return func(o *options) { o.clientID = id }
}

// WithMQTTAuth sets broker username/password credentials.
func WithMQTTAuth(username, password string) Option {
	return func(o *options) { o.username, o.password = username, password }
}

// WithMQTTQoS sets the publish QoS level (0, 1, or 2). Default 0.
func WithMQTTQoS(qos byte) Option {
	return func(o *options) { o.qos = qos }
}

// WithMQTTTLS sets the TLS configuration used to connect to the broker.
func WithMQTTTLS(config *tls.Config) Option {
	return func(o *options) { o.tlsConfig = config }
}

// WithMQTTConnectTimeout overrides the broker connect timeout. Default 10s.
func WithMQTTConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connTimeout = d }
}
