package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ConfigStore holds the single settlement asset contract reference. It is set
// once at deploy time and read by every operation that moves funds.
type ConfigStore interface {
	Set(ctx context.Context, contract string) error
	Get(ctx context.Context) (string, error)
}

// PostgresConfig keeps the reference in a single-row table.
type PostgresConfig struct {
	db *pgxpool.Pool
}

// NewPostgresConfig builds a Postgres-backed config store.
func NewPostgresConfig(db *pgxpool.Pool) *PostgresConfig {
	return &PostgresConfig{db: db}
}

// Set stores or overwrites the asset contract reference.
func (s *PostgresConfig) Set(ctx context.Context, contract string) error {
	if contract == "" {
		return ErrNotConfigured
	}
	_, err := s.db.Exec(ctx, `INSERT INTO asset_config (id, contract, updated_at)
        VALUES (1, $1, $2)
        ON CONFLICT (id) DO UPDATE SET contract = EXCLUDED.contract, updated_at = EXCLUDED.updated_at`,
		contract, time.Now().UTC())
	return err
}

// Get returns the configured contract, or ErrNotConfigured when unset.
func (s *PostgresConfig) Get(ctx context.Context) (string, error) {
	var contract string
	err := s.db.QueryRow(ctx, `SELECT contract FROM asset_config WHERE id = 1`).Scan(&contract)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotConfigured
	}
	if err != nil {
		return "", fmt.Errorf("read asset config: %w", err)
	}
	if contract == "" {
		return "", ErrNotConfigured
	}
	return contract, nil
}

// MemoryConfig is an in-memory config store for tests and development mode.
type MemoryConfig struct {
	mu       sync.RWMutex
	contract string
}

// NewMemoryConfig creates an empty in-memory store, optionally pre-seeded.
func NewMemoryConfig(contract string) *MemoryConfig {
	return &MemoryConfig{contract: contract}
}

func (s *MemoryConfig) Set(_ context.Context, contract string) error {
	if contract == "" {
		return ErrNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contract = contract
	return nil
}

func (s *MemoryConfig) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.contract == "" {
		return "", ErrNotConfigured
	}
	return s.contract, nil
}

const configCacheKey = "asset:contract"

// CachedConfig wraps another store with a Redis read-through cache. The value
// changes at most once per deployment, so the cache carries no TTL and is
// invalidated on Set.
type CachedConfig struct {
	inner ConfigStore
	cache *redis.Client
}

// NewCachedConfig wraps a config store with a Redis cache.
func NewCachedConfig(inner ConfigStore, cache *redis.Client) *CachedConfig {
	return &CachedConfig{inner: inner, cache: cache}
}

func (s *CachedConfig) Set(ctx context.Context, contract string) error {
	if err := s.inner.Set(ctx, contract); err != nil {
		return err
	}
	return s.cache.Set(ctx, configCacheKey, contract, 0).Err()
}

func (s *CachedConfig) Get(ctx context.Context) (string, error) {
	cached, err := s.cache.Get(ctx, configCacheKey).Result()
	if err == nil && cached != "" {
		return cached, nil
	}

	contract, err := s.inner.Get(ctx)
	if err != nil {
		return "", err
	}
	// Best effort: a failed cache fill only costs the next read a round trip.
	_ = s.cache.Set(ctx, configCacheKey, contract, 0).Err()
	return contract, nil
}
