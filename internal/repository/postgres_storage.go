package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartstore-demo/internal/port"
)

const (
	selectSnapshotSQL = `SELECT payload FROM cart_snapshots WHERE cart_key = $1`

	lockSnapshotSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

	upsertSnapshotSQL = `
		INSERT INTO cart_snapshots (cart_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (cart_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

type postgresStorage struct {
	q    querier
	pool *pgxpool.Pool
	key  string
}

func NewPostgresStorage(pool *pgxpool.Pool, key string) (port.CartStorage, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &postgresStorage{
		q:    pool,
		pool: pool,
		key:  key,
	}, nil
}

func NewPostgresStorageWithTx(tx pgx.Tx, key string) (port.CartStorage, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &postgresStorage{
		q:    tx,
		pool: nil, // use provided transaction instead
		key:  key,
	}, nil
}

func (s *postgresStorage) Load(ctx context.Context) ([]byte, error) {
	var payload []byte

	err := s.q.QueryRow(ctx, selectSnapshotSQL, s.key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("q.QueryRow: %w", err)
	}

	return payload, nil
}

// Save replaces the snapshot while holding a transaction-scoped advisory lock
// on the key, so writers sharing the key never interleave.
func (s *postgresStorage) Save(ctx context.Context, data []byte) error {
	_, err := withTx(ctx, s.pool, s.q, func(q querier) (struct{}, error) {
		if _, err := q.Exec(ctx, lockSnapshotSQL, s.key); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec lock: %w", err)
		}

		if _, err := q.Exec(ctx, upsertSnapshotSQL, s.key, data); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec upsert: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}
