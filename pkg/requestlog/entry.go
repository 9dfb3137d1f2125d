package requestlog

import (
	"encoding/json"
	"time"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/request"
	"github.com/getmockd/omnisend/pkg/util"
)

// MaxResponseSize bounds the response text kept per entry.
const MaxResponseSize = 4096

// OutcomeOK marks a successful dispatch.
const OutcomeOK = "ok"

// Entry captures one dispatched request.
type Entry struct {
	// ID is the request id assigned by the dispatcher.
	ID string `json:"id"`

	// Timestamp is when the dispatch started.
	Timestamp time.Time `json:"timestamp"`

	// Protocol is the request tag.
	Protocol protocol.Protocol `json:"protocol"`

	// Method is the HTTP or CoAP method; empty for MQTT and MQTT-SN.
	Method string `json:"method,omitempty"`

	// Target is where the request went: URL, broker or gateway address, or
	// CoAP host and path.
	Target string `json:"target"`

	// PayloadSize is the size of the body, message, data or payload in bytes.
	PayloadSize int `json:"payloadSize"`

	// Outcome is "ok" or the error kind.
	Outcome string `json:"outcome"`

	// Error is the error text of a failed dispatch.
	Error string `json:"error,omitempty"`

	// Response is the encoded response document, truncated to MaxResponseSize.
	Response string `json:"response,omitempty"`

	// DurationMs is the dispatch time in milliseconds.
	DurationMs int64 `json:"durationMs"`

	// MQTT is set for MQTT requests only.
	MQTT *MQTTMeta `json:"mqtt,omitempty"`
}

// MQTTMeta holds MQTT-specific details.
type MQTTMeta struct {
	Topic string `json:"topic"`
	QoS   uint8  `json:"qos"`
}

// NewEntry describes a finished dispatch of req.
func NewEntry(rid string, req request.Request, resp request.Response, err error, start time.Time, d time.Duration) *Entry {
	e := &Entry{
		ID:         rid,
		Timestamp:  start,
		Outcome:    OutcomeOK,
		DurationMs: d.Milliseconds(),
	}
	if req != nil {
		e.Protocol = req.Protocol()
	}

	switch r := req.(type) {
	case request.HTTP:
		e.Method = r.Method
		e.Target = r.URL
		if r.Body != nil {
			e.PayloadSize = len(*r.Body)
		}
	case request.MQTT:
		e.Target = r.Addr()
		e.PayloadSize = len(r.Message)
		e.MQTT = &MQTTMeta{Topic: r.Topic, QoS: r.QoS}
	case request.MQTTSN:
		e.Target = r.Addr()
		e.PayloadSize = len(r.Data)
	case request.CoAP:
		e.Method = r.Method
		e.Target = r.Host + "/" + r.Path
		e.PayloadSize = len(r.PayloadBytes())
	}

	if err != nil {
		e.Outcome = protocol.KindOf(err).String()
		e.Error = err.Error()
		return e
	}
	if resp != nil {
		if data, mErr := json.Marshal(resp); mErr == nil {
			e.Response = util.TruncateBody(string(data), MaxResponseSize)
		}
	}
	return e
}
