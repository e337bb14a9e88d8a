package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the durable card record store. The card_id keyspace is
// write-once-created, update-in-place; no delete operation exists.
type Repository interface {
	Create(ctx context.Context, card Card) error
	Get(ctx context.Context, cardID string) (Card, error)
	Update(ctx context.Context, card Card) error
}

// PostgresRepository stores cards in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a card record, failing with ErrCardAlreadyExists on a
// duplicate card_id.
func (r *PostgresRepository) Create(ctx context.Context, c Card) error {
	_, err := r.db.Exec(ctx, `INSERT INTO cards
        (card_id, card_address, owner, balance, daily_limit, spent_today, last_spend_date, is_active, pin_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.CardID, c.CardAddress, c.Owner, c.Balance, c.DailyLimit, c.SpentToday,
		c.LastSpendDate, c.IsActive, c.PINHash, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCardAlreadyExists
		}
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// Get fetches a card by identifier.
func (r *PostgresRepository) Get(ctx context.Context, cardID string) (Card, error) {
	row := r.db.QueryRow(ctx, `SELECT card_id, card_address, owner, balance, daily_limit,
        spent_today, last_spend_date, is_active, pin_hash, created_at, updated_at
        FROM cards WHERE card_id = $1`, cardID)

	var c Card
	var createdAt, updatedAt time.Time
	err := row.Scan(&c.CardID, &c.CardAddress, &c.Owner, &c.Balance, &c.DailyLimit,
		&c.SpentToday, &c.LastSpendDate, &c.IsActive, &c.PINHash, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Card{}, ErrCardNotFound
	}
	if err != nil {
		return Card{}, fmt.Errorf("read card: %w", err)
	}
	c.CreatedAt = createdAt.UTC()
	c.UpdatedAt = updatedAt.UTC()
	return c, nil
}

// Update overwrites an existing card record in place.
func (r *PostgresRepository) Update(ctx context.Context, c Card) error {
	cmd, err := r.db.Exec(ctx, `UPDATE cards SET
        card_address = $2, owner = $3, balance = $4, daily_limit = $5,
        spent_today = $6, last_spend_date = $7, is_active = $8, pin_hash = $9, updated_at = $10
        WHERE card_id = $1`,
		c.CardID, c.CardAddress, c.Owner, c.Balance, c.DailyLimit,
		c.SpentToday, c.LastSpendDate, c.IsActive, c.PINHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCardNotFound
	}
	return nil
}
