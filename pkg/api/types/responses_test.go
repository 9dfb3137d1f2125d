package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(ErrorResponse{Error: "timeout", Message: "no reply within 5s"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"timeout","message":"no reply within 5s"}`, string(data))
}

func TestHealthResponse(t *testing.T) {
	t.Parallel()

	t.Run("omits empty fields", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(HealthResponse{Status: "ok"})
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(data, &result))
		assert.Equal(t, "ok", result["status"])
		assert.NotContains(t, result, "version")
		assert.NotContains(t, result, "uptime")
	})

	t.Run("includes timestamp", func(t *testing.T) {
		t.Parallel()
		ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		data, err := json.Marshal(HealthResponse{Status: "ok", Version: "1.0.0", Uptime: 42, Timestamp: ts})
		require.NoError(t, err)

		var result HealthResponse
		require.NoError(t, json.Unmarshal(data, &result))
		assert.Equal(t, ts, result.Timestamp)
		assert.Equal(t, 42, result.Uptime)
	})
}

func TestNewProtocolListResponse(t *testing.T) {
	t.Parallel()

	resp := NewProtocolListResponse()
	require.Equal(t, len(protocol.All()), resp.Count)
	require.Len(t, resp.Protocols, resp.Count)

	for i, p := range protocol.All() {
		assert.Equal(t, p, resp.Protocols[i].Protocol)
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"protocol":"MQTT_SN"`)
	assert.Contains(t, string(data), `"transportType":"udp"`)
}
