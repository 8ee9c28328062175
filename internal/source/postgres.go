package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightdesk/gridkit/internal/grid"
)

// PostgresBackend reads rows through a pgx connection pool.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and pings the server.
func OpenPostgres(ctx context.Context, url string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid connection URL: %w", err)
	}

	// A grid issues at most a few overlapping filter queries.
	config.MaxConns = 4
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

// Dialect implements Backend.
func (b *PostgresBackend) Dialect() Dialect { return Postgres }

// Fetch implements Backend.
func (b *PostgresBackend) Fetch(ctx context.Context, q Query) ([]grid.Row, error) {
	sql, args, err := BuildSelect(q, Postgres)
	if err != nil {
		return nil, err
	}

	rows, err := b.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", q.Table, err)
	}

	out := make([]grid.Row, len(maps))
	for i, m := range maps {
		row := make(grid.Row, len(m))
		for k, v := range m {
			row[k] = normalizeValue(v)
		}
		out[i] = row
	}
	return out, nil
}

// Close releases the pool.
func (b *PostgresBackend) Close() {
	if b.pool != nil {
		b.pool.Close()
		b.pool = nil
	}
}
