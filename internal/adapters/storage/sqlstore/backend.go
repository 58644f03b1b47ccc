// Package sqlstore keeps one row per collection in a SQL table.
// SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const createTable = `CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

type Backend struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects, pings and creates the collections table if needed.
// For SQLite, dsn is a file path.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Backend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: connection string is required")
	}

	switch dialect {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("sqlstore: create database directory: %w", err)
		}
	case DialectPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}
	if dialect == DialectSQLite {
		// one writer at a time; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: connect: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: create table: %w", err)
	}

	return &Backend{db: db, dialect: dialect, now: time.Now}, nil
}

func (b *Backend) ReadCollection(ctx context.Context, name domain.CollectionName) ([]byte, error) {
	var payload string
	err := b.db.QueryRowContext(ctx,
		b.rebind("SELECT payload FROM collections WHERE name = ?"),
		string(name),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlstore: read %s: %w", name, err)
	}
	return []byte(payload), nil
}

func (b *Backend) WriteCollection(ctx context.Context, name domain.CollectionName, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		b.rebind(`INSERT INTO collections (name, payload, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`),
		string(name), string(data), b.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlstore: write %s: %w", name, err)
	}
	return nil
}

func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (b *Backend) rebind(query string) string {
	if b.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
