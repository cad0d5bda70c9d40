package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend persists cache entries in a SQLite database file.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("cache: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: ping sqlite: %w", err)
	}
	if err := initCacheSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func initCacheSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("cache: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteBackend) Lookup(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, errors.New("cache: nil sqlite backend")
	}
	if ctx == nil {
		return nil, false, errors.New("cache: nil context")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, errors.New("cache: empty key")
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteBackend) Store(ctx context.Context, key string, value json.RawMessage) error {
	if s == nil || s.db == nil {
		return errors.New("cache: nil sqlite backend")
	}
	if ctx == nil {
		return errors.New("cache: nil context")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache: empty key")
	}
	if len(value) == 0 {
		return errors.New("cache: empty value")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, created_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
