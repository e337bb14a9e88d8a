package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record kinds.
const (
	KindTopUp    = "top_up"
	KindCharge   = "charge"
	KindWithdraw = "withdraw"
)

// Record is one committed fund movement on a card.
type Record struct {
	ID           string
	Kind         string
	CardID       string
	Amount       int64
	Counterparty string
	MerchantID   string
	BalanceAfter int64
	CreatedAt    time.Time
}

// Repository persists the per-card operation history.
type Repository interface {
	Append(ctx context.Context, rec Record) error
	ListByCard(ctx context.Context, cardID string, limit, offset int) ([]Record, error)
}

// PostgresRepository stores history records in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed history repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a history record, assigning its ID and timestamp when unset.
func (r *PostgresRepository) Append(ctx context.Context, rec Record) error {
	fill(&rec)
	_, err := r.db.Exec(ctx, `INSERT INTO card_transactions
        (id, kind, card_id, amount, counterparty, merchant_id, balance_after, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Kind, rec.CardID, rec.Amount, rec.Counterparty, rec.MerchantID,
		rec.BalanceAfter, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// ListByCard returns records for a card, newest first.
func (r *PostgresRepository) ListByCard(ctx context.Context, cardID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT id, kind, card_id, amount, counterparty, merchant_id, balance_after, created_at
        FROM card_transactions WHERE card_id = $1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`, cardID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.CardID, &rec.Amount,
			&rec.Counterparty, &rec.MerchantID, &rec.BalanceAfter, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.CreatedAt = createdAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

type memoryRepository struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryRepository constructs an in-memory history repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string][]Record)}
}

func (r *memoryRepository) Append(_ context.Context, rec Record) error {
	fill(&rec)
	r.mu.Lock()
	defer r.mu.Unlock()
	// Prepend so listing stays newest-first without sorting.
	r.records[rec.CardID] = append([]Record{rec}, r.records[rec.CardID]...)
	return nil
}

func (r *memoryRepository) ListByCard(_ context.Context, cardID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.records[cardID]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]Record, end-offset)
	copy(out, all[offset:end])
	return out, nil
}

func fill(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}
