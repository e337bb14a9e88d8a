package asset

import (
	"context"
	"errors"
	"testing"
)

func TestStaticGatewayApprovesPositiveAmounts(t *testing.T) {
	g := StaticGateway{}
	if err := g.Transfer(context.Background(), "owner:alice", CustodyAccount, 5_0000000); err != nil {
		t.Fatalf("transfer: %v", err)
	}
}

func TestStaticGatewayRejectsNonPositiveAmounts(t *testing.T) {
	g := StaticGateway{}
	for _, amount := range []int64{0, -1} {
		if err := g.Transfer(context.Background(), "owner:alice", CustodyAccount, amount); !errors.Is(err, ErrTransferFailed) {
			t.Fatalf("amount %d: expected ErrTransferFailed, got %v", amount, err)
		}
	}
}
