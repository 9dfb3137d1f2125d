// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/getmockd/omnisend/pkg/protocol"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteRawJSON writes an already encoded JSON document.
func WriteRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes a JSON error response with the given status code.
// The error response includes an error code and a human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteProtocolError writes err with the status of its kind. The error code
// is the kind and the message is the error text, unchanged.
func WriteProtocolError(w http.ResponseWriter, err error) {
	kind := protocol.KindOf(err)
	WriteError(w, StatusForKind(kind), kind.String(), err.Error())
}

// StatusForKind maps an error kind to an HTTP status.
func StatusForKind(kind protocol.Kind) int {
	switch kind {
	case protocol.KindValidation, protocol.KindProtocol:
		return http.StatusBadRequest
	case protocol.KindTransport, protocol.KindSerialization:
		return http.StatusBadGateway
	case protocol.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 Bad Request error response.
func WriteBadRequest(w http.ResponseWriter, errCode, message string) {
	WriteError(w, http.StatusBadRequest, errCode, message)
}
