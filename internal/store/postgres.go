package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV is a KV backed by a PostgreSQL table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the kv table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresKV, error) {
	if dsn == "" {
		dsn = "postgres://localhost:5432/faultdrill?sslmode=disable"
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	query, args := createTable(dialect.Postgres)
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		pool.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &PostgresKV{pool: pool}, nil
}

// Get implements KV.
func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := selectValue(dialect.Postgres, key)
	var value string
	err := p.pool.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	query, args := upsertValue(dialect.Postgres, key, value, time.Now().UTC())
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove implements KV.
func (p *PostgresKV) Remove(ctx context.Context, key string) error {
	query, args := deleteValue(dialect.Postgres, key)
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (p *PostgresKV) Close() error {
	p.pool.Close()
	return nil
}
