package asset

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestInMemoryTransferMovesExactAmount(t *testing.T) {
	g := NewInMemory()
	g.Seed("owner:alice", 1_000)

	if err := g.Transfer(context.Background(), "owner:alice", CustodyAccount, 400); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := g.Balance("owner:alice"); got != 600 {
		t.Fatalf("expected source balance 600, got %d", got)
	}
	if got := g.Balance(CustodyAccount); got != 400 {
		t.Fatalf("expected custody balance 400, got %d", got)
	}
}

func TestInMemoryTransferIsAllOrNothing(t *testing.T) {
	g := NewInMemory()
	g.Seed("owner:alice", 100)

	err := g.Transfer(context.Background(), "owner:alice", CustodyAccount, 200)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := g.Balance("owner:alice"); got != 100 {
		t.Fatalf("source balance mutated on failed transfer: %d", got)
	}
	if got := g.Balance(CustodyAccount); got != 0 {
		t.Fatalf("destination balance mutated on failed transfer: %d", got)
	}
}

func TestInMemoryTransferRejectsNonPositiveAmount(t *testing.T) {
	g := NewInMemory()
	g.Seed("owner:alice", 100)

	for _, amount := range []int64{0, -5} {
		if err := g.Transfer(context.Background(), "owner:alice", CustodyAccount, amount); !errors.Is(err, ErrTransferFailed) {
			t.Fatalf("amount %d: expected ErrTransferFailed, got %v", amount, err)
		}
	}
}

func TestInMemoryTransferConcurrentDrain(t *testing.T) {
	g := NewInMemory()
	g.Seed("owner:alice", 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Transfer(context.Background(), "owner:alice", CustodyAccount, 10)
		}()
	}
	wg.Wait()

	if got := g.Balance("owner:alice"); got != 0 {
		t.Fatalf("expected source drained to 0, got %d", got)
	}
	if got := g.Balance(CustodyAccount); got != 100 {
		t.Fatalf("expected custody to hold 100, got %d", got)
	}
}
