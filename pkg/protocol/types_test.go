package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Protocol
		ok       bool
	}{
		{"HTTP", ProtocolHTTP, true},
		{"http", ProtocolHTTP, true},
		{"MQTT", ProtocolMQTT, true},
		{"MQTT_SN", ProtocolMQTTSN, true},
		{"mqtt-sn", ProtocolMQTTSN, true},
		{"MQTTSN", ProtocolMQTTSN, true},
		{"COAP", ProtocolCoAP, true},
		{" coap ", ProtocolCoAP, true},
		{"", "", false},
		{"AMQP", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestAll_EveryProtocolDescribed(t *testing.T) {
	seen := make(map[Protocol]bool)
	for _, p := range All() {
		assert.False(t, seen[p], "duplicate protocol %s", p)
		seen[p] = true

		assert.True(t, p.Valid())
		meta, ok := Describe(p)
		assert.True(t, ok, "no metadata for %s", p)
		assert.Equal(t, p, meta.Protocol)
		assert.NotEmpty(t, meta.TransportType)
		assert.NotEmpty(t, meta.ConnectionModel)
		assert.NotEmpty(t, meta.CommunicationPattern)
	}
	assert.Len(t, seen, 4)
}

func TestDescribe_Unknown(t *testing.T) {
	_, ok := Describe(Protocol("AMQP"))
	assert.False(t, ok)
	assert.False(t, Protocol("AMQP").Valid())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "mqtt_sn", ProtocolMQTTSN.Label())
	assert.Equal(t, "coap", ProtocolCoAP.Label())
}
