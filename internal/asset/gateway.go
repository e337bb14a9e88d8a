package asset

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks available balance
	// to cover a requested transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransferFailed indicates the asset rail rejected the movement; nothing
	// moved and the caller must treat the whole operation as aborted.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrNotConfigured indicates no asset contract reference has been set.
	ErrNotConfigured = errors.New("asset contract not configured")
)

// CustodyAccount is the account code under which the service itself holds card
// funds between top-up and payout.
const CustodyAccount = "custody:cards"

// Gateway moves custody of the settlement asset between principals. Transfer is
// all-or-nothing: either exactly amount moved and it returns nil, or nothing
// moved and it returns an error.
type Gateway interface {
	Transfer(ctx context.Context, from, to string, amount int64) error
}

// StaticGateway approves every transfer without moving anything. It stands in
// for the asset rail in environments where settlement happens out of band.
type StaticGateway struct{}

// Transfer always succeeds.
func (StaticGateway) Transfer(_ context.Context, _, _ string, amount int64) error {
	if amount <= 0 {
		return ErrTransferFailed
	}
	return nil
}
