package asset

import (
	"context"
	"sync"
)

// InMemoryGateway is a concurrency-safe gateway for tests and development mode.
type InMemoryGateway struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewInMemory creates an in-memory gateway with no seeded balances.
func NewInMemory() *InMemoryGateway {
	return &InMemoryGateway{balances: make(map[string]int64)}
}

// Seed sets the balance for an account.
func (g *InMemoryGateway) Seed(code string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[code] = amount
}

// Balance reads the current balance for an account.
func (g *InMemoryGateway) Balance(code string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[code]
}

// Transfer moves amount between accounts, all-or-nothing.
func (g *InMemoryGateway) Transfer(_ context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrTransferFailed
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.balances[from] < amount {
		return ErrInsufficientFunds
	}
	g.balances[from] -= amount
	g.balances[to] += amount
	return nil
}
