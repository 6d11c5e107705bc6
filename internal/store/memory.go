package store

import (
	"sync"

	"github.com/devilmonastery/novel/internal/tokencache"
)

// MemoryStore keeps values for the life of the process
type MemoryStore struct {
	mu          sync.Mutex
	values      map[string]string
	unavailable bool
}

// NewMemoryStore creates an empty, available store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Name identifies the store in metrics
func (m *MemoryStore) Name() string { return "memory" }

// SetAvailable switches the store on or off, simulating storage that
// disappears (private browsing, a locked keyring)
func (m *MemoryStore) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = !available
}

func (m *MemoryStore) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unavailable
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", tokencache.ErrNotFound
	}
	return value, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
