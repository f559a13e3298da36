package cart

import (
	"context"
	"sync"
)

// Storage holds one serialized cart snapshot per session key, the same shape
// the storefront kept under a single browser storage key. Load returns
// (nil, nil) when no snapshot exists.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, snapshot []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStorage keeps snapshots in process memory. Used in tests and as a
// fallback when no database is configured.
type MemoryStorage struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{snapshots: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot, ok := m.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	return snapshot, nil
}

func (m *MemoryStorage) Save(_ context.Context, sessionID string, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[sessionID] = snapshot
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, sessionID)
	return nil
}
