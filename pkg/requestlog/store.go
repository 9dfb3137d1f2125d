package requestlog

import "github.com/getmockd/omnisend/pkg/protocol"

// Logger is the minimal interface for recording entries. The dispatcher
// accepts it so any sink can receive dispatch history.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for dispatch history storage.
// Store embeds Logger, so any Store implementation can be used where Logger is expected.
type Store interface {
	Logger

	// Get retrieves an entry by ID, or nil.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for listing entries.
type Filter struct {
	// Protocol filters by request tag.
	Protocol protocol.Protocol

	// Outcome filters by "ok" or an error kind.
	Outcome string

	// HasError filters by error presence.
	HasError *bool

	// MQTTTopic filters MQTT entries by topic (supports + and # wildcards).
	MQTTTopic string

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}
