package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerGateway settles transfers against a double-entry ledger in PostgreSQL.
// Every movement writes one transaction row and two balancing entries, so the
// sum over all entries stays zero and a partial write can never survive the
// enclosing database transaction.
type LedgerGateway struct {
	db *pgxpool.Pool
}

// NewLedgerGateway constructs a Postgres-backed gateway.
func NewLedgerGateway(db *pgxpool.Pool) *LedgerGateway {
	return &LedgerGateway{db: db}
}

// EnsureAccount guarantees a ledger account exists for the provided code.
func (g *LedgerGateway) EnsureAccount(ctx context.Context, code string) error {
	_, err := g.db.Exec(ctx, `INSERT INTO asset_accounts (id, code) VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code)
	return err
}

// Balance returns the summed balance for the specified account code.
func (g *LedgerGateway) Balance(ctx context.Context, code string) (int64, error) {
	const query = `
        SELECT COALESCE(SUM(e.amount), 0)
        FROM asset_entries e
        INNER JOIN asset_accounts a ON a.id = e.account_id
        WHERE a.code = $1`
	var balance int64
	if err := g.db.QueryRow(ctx, query, code).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Transfer moves amount between two accounts inside a single database
// transaction. The source account must cover the amount unless it is the
// external owner side of a funding movement seeded out of band.
func (g *LedgerGateway) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrTransferFailed
	}

	tx, err := g.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	fromID, err := lockAccount(ctx, tx, from)
	if err != nil {
		return err
	}
	toID, err := lockAccount(ctx, tx, to)
	if err != nil {
		return err
	}

	fromBalance, err := balanceForAccount(ctx, tx, fromID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if fromBalance < amount {
		return ErrInsufficientFunds
	}

	txID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO asset_transactions (id) VALUES ($1)`, txID); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO asset_entries (id, transaction_id, account_id, amount)
        VALUES ($1, $2, $3, $4)`, uuid.New(), txID, fromID, -amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO asset_entries (id, transaction_id, account_id, amount)
        VALUES ($1, $2, $3, $4)`, uuid.New(), txID, toID, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

func lockAccount(ctx context.Context, tx pgx.Tx, code string) (uuid.UUID, error) {
	// Accounts are created lazily so owners and merchants do not need prior
	// provisioning before their first movement.
	if _, err := tx.Exec(ctx, `INSERT INTO asset_accounts (id, code) VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	const query = `SELECT id FROM asset_accounts WHERE code = $1 FOR UPDATE`
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, code).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w: account %s not found", ErrTransferFailed, code)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return id, nil
}

func balanceForAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM asset_entries WHERE account_id = $1`
	var balance int64
	if err := tx.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}
