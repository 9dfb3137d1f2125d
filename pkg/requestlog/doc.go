// Package requestlog keeps a bounded history of dispatched requests for
// inspection through the API.
//
// It is distinct from operational logging (which uses log/slog): entries are
// meant to be queried by users, not shipped to a log pipeline.
//
// # Core Types
//
// Entry describes one dispatch: what was sent where, how it ended and how
// long it took. NewEntry builds one from a request, its response and error.
//
// # Store Interface
//
// Store records entries and answers queries by ID or with a Filter.
// MemoryStore is a fixed-capacity ring that evicts the oldest entry first.
//
// # Usage
//
//	store := requestlog.NewMemoryStore(1000)
//	d := dispatch.New(dispatch.Options{History: store})
//	...
//	recent := store.List(&requestlog.Filter{Protocol: protocol.ProtocolMQTT, Limit: 10})
package requestlog
