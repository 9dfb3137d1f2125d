// Package types provides the JSON types of the HTTP API.
package types

import (
	"time"

	"github.com/getmockd/omnisend/pkg/protocol"
	"github.com/getmockd/omnisend/pkg/requestlog"
)

// ErrorResponse is the body of every failed API call. Error is the error
// kind; Message is the error text, unchanged.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is a simple health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    int       `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ProtocolListResponse lists the supported protocols.
type ProtocolListResponse struct {
	Protocols []protocol.Metadata `json:"protocols"`
	Count     int                 `json:"count"`
}

// NewProtocolListResponse describes every supported protocol in tag order.
func NewProtocolListResponse() ProtocolListResponse {
	all := protocol.All()
	out := make([]protocol.Metadata, 0, len(all))
	for _, p := range all {
		if md, ok := protocol.Describe(p); ok {
			out = append(out, md)
		}
	}
	return ProtocolListResponse{Protocols: out, Count: len(out)}
}

// RequestListResponse is a page of dispatch history, newest first. Total is
// the number of entries matching the filter, before limit and offset apply.
type RequestListResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	Total    int                 `json:"total"`
}
