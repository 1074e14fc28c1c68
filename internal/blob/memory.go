package blob

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Upload stores a copy of data under fileID.
func (m *MemoryStore) Upload(ctx context.Context, fileID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[fileID] = stored
	return nil
}

// Download returns a copy of the blob stored under fileID.
func (m *MemoryStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[fileID]
	if !ok {
		return nil, ErrBlobNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes the blob stored under fileID.
func (m *MemoryStore) Delete(ctx context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, fileID)
	return nil
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
