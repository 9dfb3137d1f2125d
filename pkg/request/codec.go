package request

import (
	"encoding/json"

	"github.com/getmockd/omnisend/pkg/protocol"
)

// Decode parses the tagged JSON form of a request. The input is validated
// against the request schema first; every failure is a validation error.
func Decode(data []byte) (Request, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}

	var envelope struct {
		Protocol protocol.Protocol `json:"protocol"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, protocol.Validation("", "decode", "invalid request JSON: %v", err)
	}

	var (
		req Request
		err error
	)
	switch envelope.Protocol {
	case protocol.ProtocolHTTP:
		var r HTTP
		err = json.Unmarshal(data, &r)
		req = r
	case protocol.ProtocolMQTT:
		var r MQTT
		err = json.Unmarshal(data, &r)
		req = r
	case protocol.ProtocolMQTTSN:
		var r MQTTSN
		err = json.Unmarshal(data, &r)
		req = r
	case protocol.ProtocolCoAP:
		var r CoAP
		err = json.Unmarshal(data, &r)
		req = r
	default:
		return nil, protocol.Validation("", "decode", "unknown protocol %q", envelope.Protocol)
	}
	if err != nil {
		return nil, protocol.Validation(envelope.Protocol, "decode", "invalid %s request: %v", envelope.Protocol, err)
	}
	return req, nil
}

// Encode writes the tagged JSON form of req.
func Encode(req Request) ([]byte, error) {
	return json.Marshal(req)
}
