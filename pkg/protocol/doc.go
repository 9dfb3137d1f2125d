// Package protocol defines the closed set of protocols omnisend can speak
// and the error taxonomy shared by every sender.
//
// # Protocols
//
// Four protocols are supported, each identified by the tag used on the wire:
//
//	HTTP     connection-oriented request/response over TCP or TLS
//	MQTT     publish over a broker session (fire-and-forget)
//	MQTT_SN  single datagram to a gateway (fire-and-forget)
//	COAP     single datagram exchange (request, one reply)
//
// All returns the set in a stable order. Code that must handle every protocol
// should iterate All in its tests so a new tag cannot be added silently.
//
// # Errors
//
// Senders return *Error values carrying a Kind:
//
//	err := protocol.Validation(protocol.ProtocolCoAP, "send", "unsupported CoAP method %q", m)
//	if protocol.IsKind(err, protocol.KindValidation) {
//	    // rejected before any I/O
//	}
//
// Error() renders the text shown to users, so the boundary can pass it through
// verbatim while callers inside the process branch on the kind.
package protocol
