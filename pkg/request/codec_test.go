package request

import (
	"encoding/json"
	"testing"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Variants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Request
	}{
		{
			name:  "http with nulls",
			input: `{"protocol":"HTTP","method":"GET","url":"http://example.test/ping","headers":null,"body":null}`,
			want:  HTTP{Method: "GET", URL: "http://example.test/ping"},
		},
		{
			name:  "http with headers and body",
			input: `{"protocol":"HTTP","method":"POST","url":"http://example.test","headers":{"X-B":"2","x-a":"1"},"body":"{}"}`,
			want: HTTP{
				Method:  "POST",
				URL:     "http://example.test",
				Headers: Headers{{Name: "X-B", Value: "2"}, {Name: "x-a", Value: "1"}},
				Body:    String("{}"),
			},
		},
		{
			name:  "mqtt",
			input: `{"protocol":"MQTT","broker":"localhost","port":1883,"topic":"sensors/temp","qos":255,"message":"21.5"}`,
			want:  MQTT{Broker: "localhost", Port: 1883, Topic: "sensors/temp", QoS: 255, Message: "21.5"},
		},
		{
			name:  "mqtt-sn",
			input: `{"protocol":"MQTT_SN","gateway":"127.0.0.1","port":10000,"data":"hello"}`,
			want:  MQTTSN{Gateway: "127.0.0.1", Port: 10000, Data: "hello"},
		},
		{
			name:  "coap without payload",
			input: `{"protocol":"COAP","method":"GET","host":"127.0.0.1:5683","path":"sensor/temp","payload":null}`,
			want:  CoAP{Method: "GET", Host: "127.0.0.1:5683", Path: "sensor/temp"},
		},
		{
			name:  "coap with payload",
			input: `{"protocol":"COAP","method":"POST","host":"127.0.0.1:5683","path":"x","payload":"on"}`,
			want:  CoAP{Method: "POST", Host: "127.0.0.1:5683", Path: "x", Payload: String("on")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Protocol(), got.Protocol())
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"not json", `{"protocol":`, "invalid request JSON"},
		{"array", `[]`, "invalid request"},
		{"missing tag", `{"method":"GET","url":"http://x"}`, "protocol"},
		{"unknown tag", `{"protocol":"AMQP"}`, "/protocol"},
		{"lowercase tag", `{"protocol":"http","method":"GET","url":"http://x"}`, "/protocol"},
		{"missing url", `{"protocol":"HTTP","method":"GET"}`, "url"},
		{"port too large", `{"protocol":"MQTT_SN","gateway":"g","port":70000,"data":""}`, "/port"},
		{"negative port", `{"protocol":"MQTT","broker":"b","port":-1,"topic":"t","qos":0,"message":""}`, "/port"},
		{"qos too large", `{"protocol":"MQTT","broker":"b","port":1883,"topic":"t","qos":256,"message":""}`, "/qos"},
		{"header not string", `{"protocol":"HTTP","method":"GET","url":"http://x","headers":{"a":1}}`, "/headers/a"},
		{"missing coap path", `{"protocol":"COAP","method":"GET","host":"h:1"}`, "path"},
		{"trailing data", `{"protocol":"MQTT_SN","gateway":"g","port":1,"data":""} {}`, "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, protocol.IsKind(err, protocol.KindValidation), "kind = %s", protocol.KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDecode_ValidationErrorCarriesProtocol(t *testing.T) {
	_, err := Decode([]byte(`{"protocol":"MQTT_SN","gateway":"g","port":70000,"data":""}`))
	require.Error(t, err)

	var pe *protocol.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, protocol.ProtocolMQTTSN, pe.Protocol)
}

func TestEncode_RoundTrip(t *testing.T) {
	reqs := []Request{
		HTTP{Method: "PATCH", URL: "http://example.test/a", Headers: Headers{{"Z", "1"}, {"A", "2"}}, Body: String("body")},
		HTTP{Method: "GET", URL: "http://example.test/a"},
		MQTT{Broker: "broker", Port: 8883, Topic: "a/b", QoS: 2, Message: "m"},
		MQTTSN{Gateway: "gw", Port: 1884, Data: "raw"},
		CoAP{Method: "GET", Host: "h:5683", Path: "sensor/temp"},
		CoAP{Method: "POST", Host: "h:5683", Path: "x", Payload: String("")},
	}

	for _, req := range reqs {
		t.Run(string(req.Protocol()), func(t *testing.T) {
			data, err := Encode(req)
			require.NoError(t, err)

			var tagged map[string]any
			require.NoError(t, json.Unmarshal(data, &tagged))
			assert.Equal(t, string(req.Protocol()), tagged["protocol"])

			back, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, req, back)
		})
	}
}

func TestEncode_HeaderOrderPreserved(t *testing.T) {
	data, err := Encode(HTTP{Method: "GET", URL: "u", Headers: Headers{{"b", "1"}, {"a", "2"}, {"C", "3"}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"headers":{"b":"1","a":"2","C":"3"}`)
}
