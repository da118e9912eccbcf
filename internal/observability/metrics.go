package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters over handled interactions,
// exposed through the ops status endpoint.
type Metrics struct {
	mu           sync.Mutex
	interactions map[string]int64
	errors       map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		interactions: make(map[string]int64),
		errors:       make(map[string]int64),
	}
}

// RecordInteraction increments the counter for a handled interaction kind,
// e.g. "command:ticket" or "component:ticket:close".
func (m *Metrics) RecordInteraction(kind string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions[kind]++
}

// RecordError increments the error counter for an interaction kind and
// taxonomy code.
func (m *Metrics) RecordError(kind, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind+"|"+code]++
}

// Snapshot returns copies of the interaction and error counters.
func (m *Metrics) Snapshot() (interactions, errors map[string]int64) {
	interactions = make(map[string]int64)
	errors = make(map[string]int64)
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.interactions {
		interactions[k] = v
	}
	for k, v := range m.errors {
		errors[k] = v
	}
	return
}
