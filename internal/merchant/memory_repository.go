package merchant

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Merchant
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Merchant)}
}

func (r *memoryRepository) Create(_ context.Context, m Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[m.ID] = m
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.storage[id]
	if !ok {
		return Merchant{}, ErrNotFound
	}
	return m, nil
}
