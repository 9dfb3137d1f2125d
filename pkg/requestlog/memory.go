package requestlog

import (
	"strings"
	"sync"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 1000

// MemoryStore implements Store with an in-memory circular buffer.
type MemoryStore struct {
	entries    []*Entry
	maxEntries int
	mu         sync.RWMutex
}

// NewMemoryStore creates a MemoryStore holding at most maxEntries entries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultCapacity
	}
	return &MemoryStore{
		entries:    make([]*Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Log records an entry, evicting the oldest when full.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxEntries {
		copy(s.entries, s.entries[1:])
		s.entries[len(s.entries)-1] = entry
		return
	}
	s.entries = append(s.entries, entry)
}

// Get retrieves an entry by ID.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// List returns entries newest first, optionally filtered.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter != nil && !matchesFilter(e, filter) {
			continue
		}
		result = append(result, e)
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*Entry, 0, s.maxEntries)
}

// Count returns the number of entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matchesFilter(e *Entry, f *Filter) bool {
	if f.Protocol != "" && e.Protocol != f.Protocol {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.HasError != nil && *f.HasError != (e.Error != "") {
		return false
	}
	if f.MQTTTopic != "" {
		if e.MQTT == nil || !MatchTopic(f.MQTTTopic, e.MQTT.Topic) {
			return false
		}
	}
	return true
}

// MatchTopic reports whether topic matches an MQTT topic filter with + and
// # wildcards.
func MatchTopic(pattern, topic string) bool {
	if pattern == topic || pattern == "#" {
		return true
	}

	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range patternParts {
		if part == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part == "+" {
			continue
		}
		if part != topicParts[i] {
			return false
		}
	}
	return len(patternParts) == len(topicParts)
}

var _ Store = (*MemoryStore)(nil)
