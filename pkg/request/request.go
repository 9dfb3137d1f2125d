package request

import (
	"encoding/json"
	"strings"

	"github.com/getmockd/omnisend/pkg/protocol"
)

// Request is one outbound operation. The concrete type is one of HTTP, MQTT,
// MQTTSN or CoAP.
type Request interface {
	// Protocol returns the discriminator tag of the variant.
	Protocol() protocol.Protocol

	// Validate performs the structural checks that need no I/O.
	Validate() error

	sealed()
}

// Interface compliance checks.
var (
	_ Request = HTTP{}
	_ Request = MQTT{}
	_ Request = MQTTSN{}
	_ Request = CoAP{}
)

// HTTP describes one HTTP request/response cycle.
type HTTP struct {
	Method  string  `json:"method"`
	URL     string  `json:"url"`
	Headers Headers `json:"headers,omitempty"`
	Body    *string `json:"body,omitempty"`
}

// Protocol returns protocol.ProtocolHTTP.
func (HTTP) Protocol() protocol.Protocol { return protocol.ProtocolHTTP }

// Validate checks that a URL is present. The method is parsed by the sender.
func (r HTTP) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return protocol.Validation(protocol.ProtocolHTTP, "validate", "url is required")
	}
	return nil
}

// MarshalJSON writes the tagged form.
func (r HTTP) MarshalJSON() ([]byte, error) {
	type plain HTTP
	return json.Marshal(struct {
		Protocol protocol.Protocol `json:"protocol"`
		plain
	}{r.Protocol(), plain(r)})
}

func (HTTP) sealed() {}

// MQTT describes one publish to a broker.
type MQTT struct {
	Broker  string `json:"broker"`
	Port    uint16 `json:"port"`
	Topic   string `json:"topic"`
	QoS     uint8  `json:"qos"`
	Message string `json:"message"`
}

// Protocol returns protocol.ProtocolMQTT.
func (MQTT) Protocol() protocol.Protocol { return protocol.ProtocolMQTT }

// Validate checks the broker and the publish topic. Topics must be non-empty
// and must not contain wildcards. QoS is never rejected.
func (r MQTT) Validate() error {
	if strings.TrimSpace(r.Broker) == "" {
		return protocol.Validation(protocol.ProtocolMQTT, "validate", "broker is required")
	}
	if r.Topic == "" {
		return protocol.Validation(protocol.ProtocolMQTT, "validate", "topic is required")
	}
	if strings.ContainsAny(r.Topic, "+#") {
		return protocol.Validation(protocol.ProtocolMQTT, "validate", "invalid topic %q: wildcards are not allowed in a publish", r.Topic)
	}
	return nil
}

// Addr returns the broker address as host:port.
func (r MQTT) Addr() string {
	return joinHostPort(r.Broker, r.Port)
}

// MarshalJSON writes the tagged form.
func (r MQTT) MarshalJSON() ([]byte, error) {
	type plain MQTT
	return json.Marshal(struct {
		Protocol protocol.Protocol `json:"protocol"`
		plain
	}{r.Protocol(), plain(r)})
}

func (MQTT) sealed() {}

// MQTTSN describes one datagram sent to an MQTT-SN gateway.
type MQTTSN struct {
	Gateway string `json:"gateway"`
	Port    uint16 `json:"port"`
	Data    string `json:"data"`
}

// Protocol returns protocol.ProtocolMQTTSN.
func (MQTTSN) Protocol() protocol.Protocol { return protocol.ProtocolMQTTSN }

// Validate checks that a gateway is present.
func (r MQTTSN) Validate() error {
	if strings.TrimSpace(r.Gateway) == "" {
		return protocol.Validation(protocol.ProtocolMQTTSN, "validate", "gateway is required")
	}
	return nil
}

// Addr returns the gateway address as host:port.
func (r MQTTSN) Addr() string {
	return joinHostPort(r.Gateway, r.Port)
}

// MarshalJSON writes the tagged form.
func (r MQTTSN) MarshalJSON() ([]byte, error) {
	type plain MQTTSN
	return json.Marshal(struct {
		Protocol protocol.Protocol `json:"protocol"`
		plain
	}{r.Protocol(), plain(r)})
}

func (MQTTSN) sealed() {}

// CoAP describes one CoAP request and its single reply.
type CoAP struct {
	Method  string  `json:"method"`
	Host    string  `json:"host"`
	Path    string  `json:"path"`
	Payload *string `json:"payload,omitempty"`
}

// Protocol returns protocol.ProtocolCoAP.
func (CoAP) Protocol() protocol.Protocol { return protocol.ProtocolCoAP }

// Validate checks that a host is present. Method support and host resolution
// are checked by the exchanger.
func (r CoAP) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return protocol.Validation(protocol.ProtocolCoAP, "validate", "host is required")
	}
	return nil
}

// PayloadBytes returns the payload, or nil when none was given.
func (r CoAP) PayloadBytes() []byte {
	if r.Payload == nil {
		return nil
	}
	return []byte(*r.Payload)
}

// MarshalJSON writes the tagged form.
func (r CoAP) MarshalJSON() ([]byte, error) {
	type plain CoAP
	return json.Marshal(struct {
		Protocol protocol.Protocol `json:"protocol"`
		plain
	}{r.Protocol(), plain(r)})
}

func (CoAP) sealed() {}

// String returns a pointer to s, for the optional text fields.
func String(s string) *string {
	return &s
}
