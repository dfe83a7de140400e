// Package memory implements the database.Storage interface with an
// in-memory map. It exists to support testing.
package memory

import (
	"sync"

	"github.com/qoranet/qoranet/foundation/blockchain/database"
)

// Memory represents the storage implementation for keeping chain data
// in memory.
type Memory struct {
	mu        sync.RWMutex
	keyspaces map[string]map[string][]byte
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		keyspaces: make(map[string]map[string][]byte),
	}
}

// Close in this implementation has nothing to do.
func (m *Memory) Close() error {
	return nil
}

// Put writes the data under the specified keyspace and key.
func (m *Memory) Put(keyspace string, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ks, exists := m.keyspaces[keyspace]
	if !exists {
		ks = make(map[string][]byte)
		m.keyspaces[keyspace] = ks
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	ks[key] = cp

	return nil
}

// Get reads the data stored under the specified keyspace and key.
func (m *Memory) Get(keyspace string, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.keyspaces[keyspace][key]
	if !exists {
		return nil, database.ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

// Delete removes the data stored under the specified keyspace and key.
func (m *Memory) Delete(keyspace string, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keyspaces[keyspace], key)
	return nil
}
