package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		data := map[string]string{"foo": "bar"}

		WriteJSON(rec, http.StatusOK, data)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		err := json.Unmarshal(rec.Body.Bytes(), &result)
		require.NoError(t, err)
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteRawJSON(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteRawJSON(rec, http.StatusOK, []byte(`{"status":"sent"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"status":"sent"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusBadRequest, "invalid_input", "Name is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var result map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "invalid_input", result["error"])
	assert.Equal(t, "Name is required", result["message"])
}

func TestStatusForKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind protocol.Kind
		want int
	}{
		{protocol.KindValidation, http.StatusBadRequest},
		{protocol.KindProtocol, http.StatusBadRequest},
		{protocol.KindTransport, http.StatusBadGateway},
		{protocol.KindSerialization, http.StatusBadGateway},
		{protocol.KindTimeout, http.StatusGatewayTimeout},
		{protocol.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForKind(tt.kind), tt.kind.String())
	}
}

func TestWriteProtocolError(t *testing.T) {
	t.Parallel()

	t.Run("typed error", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteProtocolError(rec, protocol.Errorf(protocol.KindTimeout, protocol.ProtocolCoAP, "receive", "no reply within 5s"))

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "timeout", result["error"])
		assert.Equal(t, "no reply within 5s", result["message"])
	})

	t.Run("plain error is internal", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteProtocolError(rec, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "internal", result["error"])
		assert.Equal(t, "boom", result["message"])
	})
}

func TestWriteOK(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteOK(rec, map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestWriteBadRequest(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteBadRequest(rec, "bad", "nope")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
