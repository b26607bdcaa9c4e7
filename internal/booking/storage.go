package booking

import (
	"context"
	"sync"
)

// MemoryStorage keeps serialized booking state in process memory
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Load returns the saved state of a session, or nil
func (m *MemoryStorage) Load(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, data...), nil
}

// Save stores the state of a session
func (m *MemoryStorage) Save(_ context.Context, sessionID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[sessionID] = append([]byte{}, data...)
	return nil
}

// Delete removes the state of a session
func (m *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, sessionID)
	return nil
}
