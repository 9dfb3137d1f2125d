package protocol

import "strings"

// Protocol identifies the protocol of a request. The values are the
// discriminator tags of the JSON request schema.
type Protocol string

// Protocol constants for the supported protocols.
const (
	ProtocolHTTP   Protocol = "HTTP"
	ProtocolMQTT   Protocol = "MQTT"
	ProtocolMQTTSN Protocol = "MQTT_SN"
	ProtocolCoAP   Protocol = "COAP"
)

// All returns every supported protocol in a stable order.
func All() []Protocol {
	return []Protocol{ProtocolHTTP, ProtocolMQTT, ProtocolMQTTSN, ProtocolCoAP}
}

// String returns the string representation of the protocol.
func (p Protocol) String() string {
	return string(p)
}

// Label returns the lowercase form used for metric labels and log fields.
func (p Protocol) Label() string {
	return strings.ToLower(string(p))
}

// Valid reports whether p is one of the supported protocols.
func (p Protocol) Valid() bool {
	for _, known := range All() {
		if p == known {
			return true
		}
	}
	return false
}

// Parse resolves a protocol tag. Matching is case-insensitive and accepts
// "MQTTSN" and "MQTT-SN" as aliases for MQTT_SN.
func Parse(s string) (Protocol, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HTTP":
		return ProtocolHTTP, true
	case "MQTT":
		return ProtocolMQTT, true
	case "MQTT_SN", "MQTTSN", "MQTT-SN":
		return ProtocolMQTTSN, true
	case "COAP":
		return ProtocolCoAP, true
	default:
		return "", false
	}
}

// TransportType indicates the underlying transport mechanism.
type TransportType string

// TransportType constants.
const (
	TransportTCP TransportType = "tcp"
	TransportUDP TransportType = "udp"
)

// ConnectionModel describes the connection lifecycle of one operation.
type ConnectionModel string

// ConnectionModel constants.
const (
	ConnectionModelConnection     ConnectionModel = "connection"     // One connection per request
	ConnectionModelSession        ConnectionModel = "session"        // Broker session kept alive by a worker
	ConnectionModelConnectionless ConnectionModel = "connectionless" // Bare datagrams
)

// CommunicationPattern describes the message flow of one operation.
type CommunicationPattern string

// CommunicationPattern constants.
const (
	PatternRequestResponse CommunicationPattern = "request_response"
	PatternFireAndForget   CommunicationPattern = "fire_and_forget"
)

// Metadata describes how a protocol is carried.
type Metadata struct {
	Protocol             Protocol             `json:"protocol"`
	Name                 string               `json:"name"`
	TransportType        TransportType        `json:"transportType"`
	ConnectionModel      ConnectionModel      `json:"connectionModel"`
	CommunicationPattern CommunicationPattern `json:"communicationPattern"`
	DefaultPort          int                  `json:"defaultPort,omitempty"`
}

// Describe returns the metadata for p. The second return value is false for
// unknown protocols.
func Describe(p Protocol) (Metadata, bool) {
	switch p {
	case ProtocolHTTP:
		return Metadata{
			Protocol:             p,
			Name:                 "HTTP",
			TransportType:        TransportTCP,
			ConnectionModel:      ConnectionModelConnection,
			CommunicationPattern: PatternRequestResponse,
			DefaultPort:          80,
		}, true
	case ProtocolMQTT:
		return Metadata{
			Protocol:             p,
			Name:                 "MQTT",
			TransportType:        TransportTCP,
			ConnectionModel:      ConnectionModelSession,
			CommunicationPattern: PatternFireAndForget,
			DefaultPort:          1883,
		}, true
	case ProtocolMQTTSN:
		return Metadata{
			Protocol:             p,
			Name:                 "MQTT-SN",
			TransportType:        TransportUDP,
			ConnectionModel:      ConnectionModelConnectionless,
			CommunicationPattern: PatternFireAndForget,
			DefaultPort:          10000,
		}, true
	case ProtocolCoAP:
		return Metadata{
			Protocol:             p,
			Name:                 "CoAP",
			TransportType:        TransportUDP,
			ConnectionModel:      ConnectionModelConnectionless,
			CommunicationPattern: PatternRequestResponse,
			DefaultPort:          5683,
		}, true
	default:
		return Metadata{}, false
	}
}
