package vectorstore

import (
	"context"
	"fmt"
	"sync"
)

// CollectionManager ensures Qdrant collections exist before first use and
// remembers which ones it has already verified.
type CollectionManager struct {
	client *QdrantClient
	known  map[string]bool
	mu     sync.RWMutex
}

func NewCollectionManager(client *QdrantClient) *CollectionManager {
	return &CollectionManager{
		client: client,
		known:  make(map[string]bool),
	}
}

// Ensure creates the named collection if it doesn't already exist.
// Results are cached in-memory.
func (m *CollectionManager) Ensure(ctx context.Context, name string) error {
	m.mu.RLock()
	if m.known[name] {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.known[name] {
		return nil
	}

	if err := m.client.EnsureCollection(ctx, name); err != nil {
		return fmt.Errorf("ensure collection %s: %w", name, err)
	}

	m.known[name] = true
	return nil
}
