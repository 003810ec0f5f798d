package store

import (
	"context"
	"sync"

	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
)

// MemoryStore is a process-local MappingStore. Entries are lost on restart
// and never expire; an entry whose webhook never arrives stays until then.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.MappingEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.MappingEntry)}
}

// Put overwrites any existing entry for key (last write wins).
func (m *MemoryStore) Put(_ context.Context, key string, entry models.MappingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (models.MappingEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	return e, ok
}

func (m *MemoryStore) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// Len reports the number of live entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
