package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dialTimeout = 5 * time.Second

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres (ping failed): %w", err)
	}
	return pool, nil
}

// Migrate creates the schema when it does not exist yet. Enum constraints
// live in the application layer; the table stores the already-validated
// values.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	auth_id    TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
	id           UUID PRIMARY KEY,
	make         TEXT NOT NULL,
	model        TEXT NOT NULL,
	year         INT NOT NULL,
	color        TEXT NOT NULL,
	price        TEXT NOT NULL,
	mileage      BIGINT NOT NULL CHECK (mileage >= 0),
	body_type    TEXT NOT NULL,
	fuel_type    TEXT NOT NULL,
	transmission TEXT NOT NULL,
	seats        INT NOT NULL DEFAULT 0,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'AVAILABLE',
	featured     BOOLEAN NOT NULL DEFAULT FALSE,
	images       TEXT[] NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_listings_featured ON listings (featured) WHERE featured;
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
