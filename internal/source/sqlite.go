package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/freightdesk/gridkit/internal/grid"
)

// SQLiteBackend reads rows from a SQLite file (or ":memory:").
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens path and pings it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives only as long as its one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// DB exposes the handle, mostly for seeding fixtures.
func (b *SQLiteBackend) DB() *sql.DB { return b.db }

// Dialect implements Backend.
func (b *SQLiteBackend) Dialect() Dialect { return SQLite }

// Fetch implements Backend.
func (b *SQLiteBackend) Fetch(ctx context.Context, q Query) ([]grid.Row, error) {
	query, args, err := BuildSelect(q, SQLite)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []grid.Row
	for rows.Next() {
		ptrs := make([]any, len(names))
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read %s: %w", q.Table, err)
		}
		row := make(grid.Row, len(names))
		for i, name := range names {
			row[name] = normalizeValue(*(ptrs[i].(*any)))
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close closes the database.
func (b *SQLiteBackend) Close() {
	if b.db != nil {
		b.db.Close()
		b.db = nil
	}
}
