package card

import "sync"

// lockTable provides per-card mutual exclusion. Every mutating operation holds
// its card's lock across the full read-modify-write, including the gateway
// call, so no two operations interleave on the same card_id. Locks are never
// reclaimed; the table grows with the card population, one mutex per card.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(cardID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[cardID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[cardID] = l
	}
	return l
}
