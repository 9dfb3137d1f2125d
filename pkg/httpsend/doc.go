// Package httpsend performs one HTTP request/response cycle per call.
//
// Every call builds its own client and transport, so nothing is shared
// between concurrent calls. The response body is returned as text and never
// interpreted; callers that expect JSON decode it themselves.
package httpsend
