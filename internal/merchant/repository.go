package merchant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the merchant identifier is unknown.
var ErrNotFound = errors.New("merchant not found")

// Repository persists merchants.
type Repository interface {
	Create(ctx context.Context, m Merchant) error
	Get(ctx context.Context, id string) (Merchant, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed merchant repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new merchant.
func (r *PostgresRepository) Create(ctx context.Context, m Merchant) error {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO merchants (id, name, payout_address, created_at)
        VALUES ($1, $2, $3, $4)`, id, m.Name, m.PayoutAddress, m.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// Get fetches a merchant by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Merchant, error) {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		return Merchant{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, payout_address, created_at
        FROM merchants WHERE id = $1`, merchantID)

	var m Merchant
	var idVal uuid.UUID
	var createdAt time.Time
	if err := row.Scan(&idVal, &m.Name, &m.PayoutAddress, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Merchant{}, ErrNotFound
		}
		return Merchant{}, fmt.Errorf("read merchant: %w", err)
	}
	m.ID = idVal.String()
	m.CreatedAt = createdAt.UTC()
	return m, nil
}
