package request

import "github.com/getmockd/omnisend/pkg/protocol"

// Fixed status texts of the fire-and-forget protocols.
const (
	StatusPublished = "published"
	StatusSent      = "sent"
)

// Response is the normalized success value of one request. The concrete type
// is HTTPResult, StatusResult or CoAPResult.
type Response interface {
	// Protocol returns the protocol that produced the response.
	Protocol() protocol.Protocol

	response()
}

// Interface compliance checks.
var (
	_ Response = HTTPResult{}
	_ Response = StatusResult{}
	_ Response = CoAPResult{}
)

// HTTPResult is the outcome of an HTTP request. Body is returned as text and
// never interpreted.
type HTTPResult struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// Protocol returns protocol.ProtocolHTTP.
func (HTTPResult) Protocol() protocol.Protocol { return protocol.ProtocolHTTP }

func (HTTPResult) response() {}

// StatusResult is the outcome of a fire-and-forget send.
type StatusResult struct {
	Status string `json:"status"`

	proto protocol.Protocol
}

// Published is the MQTT result.
func Published() StatusResult {
	return StatusResult{Status: StatusPublished, proto: protocol.ProtocolMQTT}
}

// Sent is the MQTT-SN result.
func Sent() StatusResult {
	return StatusResult{Status: StatusSent, proto: protocol.ProtocolMQTTSN}
}

// Protocol returns the protocol the status belongs to.
func (r StatusResult) Protocol() protocol.Protocol { return r.proto }

func (StatusResult) response() {}

// CoAPResult carries the reply datagram decoded as text.
type CoAPResult struct {
	Response string `json:"response"`
}

// Protocol returns protocol.ProtocolCoAP.
func (CoAPResult) Protocol() protocol.Protocol { return protocol.ProtocolCoAP }

func (CoAPResult) response() {}
