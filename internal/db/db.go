// Package db provides helpers for connecting to PostgreSQL and running migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Connect opens a connection pool to PostgreSQL and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)

	if err := pool.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	slog.Info("database connected", "dsn", sanitizeDSN(dsn))
	return pool, nil
}

// Healthy returns nil when the database is reachable.
func Healthy(ctx context.Context, pool *sql.DB) error {
	return pool.PingContext(ctx)
}

// sanitizeDSN truncates the DSN so credentials never reach the logs in full.
func sanitizeDSN(dsn string) string {
	if len(dsn) > 40 {
		return dsn[:40] + "..."
	}
	return dsn
}
