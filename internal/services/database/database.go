// Package database provides direct PostgreSQL access for the webhook service.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool used by the repositories. It is
// satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolOptions sizes the connection pool.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// DB holds the database connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool and verifies it with a ping.
func New(ctx context.Context, databaseURL string, opts PoolOptions) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Close closes the database connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies database connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool returns the underlying connection pool.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
