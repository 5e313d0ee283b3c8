package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// sqlDialect carries the statements that differ between drivers
type sqlDialect struct {
	driver string
	schema string
	load   string
	save   string
}

var postgresDialect = sqlDialect{
	driver: "postgres",
	schema: `CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	load: `SELECT value FROM kv_store WHERE key = $1`,
	save: `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
}

var sqliteDialect = sqlDialect{
	driver: "sqlite3",
	schema: `CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	load: `SELECT value FROM kv_store WHERE key = ?`,
	save: `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
}

// SQLBackend implements Backend on a single kv_store table
type SQLBackend struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewPostgreSQLBackend opens a PostgreSQL database via lib/pq
func NewPostgreSQLBackend(ctx context.Context, uri string) (*SQLBackend, error) {
	return openSQL(ctx, postgresDialect, uri)
}

// NewSQLiteBackend opens (and creates) a SQLite database file
func NewSQLiteBackend(ctx context.Context, path string) (*SQLBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
		}
	}
	return openSQL(ctx, sqliteDialect, path)
}

func openSQL(ctx context.Context, dialect sqlDialect, dsn string) (*SQLBackend, error) {
	db, err := sql.Open(dialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.driver, err)
	}

	if dialect.driver == "sqlite3" {
		// a single connection keeps ":memory:" databases shared and avoids lock contention
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.driver, err)
	}

	if _, err := db.ExecContext(ctx, dialect.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &SQLBackend{db: db, dialect: dialect}, nil
}

// Load retrieves the value stored under key
func (s *SQLBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.dialect.load, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save upserts the value for key
func (s *SQLBackend) Save(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.save, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Close closes the database
func (s *SQLBackend) Close() error {
	return s.db.Close()
}
