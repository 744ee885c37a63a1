package store

import "sync"

// Memory is an in-process Store backed by a mutex-guarded map. It is
// the lightweight default for tests and for embeddings that don't need
// durability across runs. Memory does not implement BatchSetter — a
// plain map has no transactional benefit to offer over sequential Set
// calls (SPEC_FULL.md DOMAIN STACK).
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns a Memory store, already cleared (§4.1).
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
