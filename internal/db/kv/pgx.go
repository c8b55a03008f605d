package kv

import (
	"context"
	"errors"
	e "waterreminder/internal/core/domain/errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	pgxGetQuery = `SELECT value FROM kv_entries WHERE key = $1`
	pgxSetQuery = `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
)

// Pgx expects the kv_entries table created by the migrations package.
type Pgx struct {
	pool *pgxpool.Pool
}

func NewPgx(pool *pgxpool.Pool) *Pgx {
	if pool == nil {
		panic(e.NewNilArgumentError("pool"))
	}
	return &Pgx{pool: pool}
}

func (s *Pgx) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, pgxGetQuery, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Pgx) Set(ctx context.Context, key string, value string) error {
	_, err := s.pool.Exec(ctx, pgxSetQuery, key, value)
	return err
}
