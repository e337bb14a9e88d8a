package card

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Card
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Card)}
}

func (r *memoryRepository) Create(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[c.CardID]; exists {
		return ErrCardAlreadyExists
	}
	r.storage[c.CardID] = c
	return nil
}

func (r *memoryRepository) Get(_ context.Context, cardID string) (Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.storage[cardID]
	if !ok {
		return Card{}, ErrCardNotFound
	}
	return c, nil
}

func (r *memoryRepository) Update(_ context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[c.CardID]; !ok {
		return ErrCardNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	r.storage[c.CardID] = c
	return nil
}
