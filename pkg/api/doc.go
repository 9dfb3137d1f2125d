// Package api exposes the dispatcher over HTTP.
//
// Routes:
//
//	POST /v1/send       tagged request in, normalized response out
//	GET  /v1/protocols  supported protocols and how each is carried
//	GET  /v1/schema     JSON Schema of the request document
//	GET  /healthz       liveness
//	GET  /metrics       Prometheus exposition
//
// With Options.History set, recent dispatches are also served:
//
//	GET    /v1/requests       newest first; filters protocol, outcome, topic, limit, offset
//	GET    /v1/requests/{id}  one entry
//	DELETE /v1/requests       clear the history
//
// Options.RateLimit guards /v1/send per client IP and answers 429 with
// Retry-After once a client's bucket is empty.
//
// Failures are returned as {"error": kind, "message": text} with a status
// derived from the kind: 400 for validation and protocol errors, 502 for
// transport and serialization errors, 504 for timeouts and 500 otherwise.
package api
