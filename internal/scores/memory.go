package scores

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

// NewMemoryStore creates an empty store keeping the best limit entries.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{limit: limit}
}

func (m *MemoryStore) Record(ctx context.Context, e Entry) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e.Name = CleanName(e.Name)
	m.entries = rank(append(m.entries, e), m.limit)
	return slices.Clone(m.entries), nil
}

func (m *MemoryStore) Top(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries), nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
