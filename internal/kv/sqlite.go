package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, WAL-friendly
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS kv_locks (
	key        TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);`

// SQLiteStore persists keys in a single SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// buildSQLiteDSN creates a read-write WAL DSN for the given path.
func buildSQLiteDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Set("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("sqlite path is empty")
	}

	db, err := sql.Open("sqlite", buildSQLiteDSN(trimmed))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, path: trimmed}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *SQLiteStore) Backend() string                { return "sqlite" }
func (s *SQLiteStore) Close() error                   { return s.db.Close() }

// Lock takes a row lock in kv_locks; expired rows are reclaimed. It guards
// processes sharing the same database file.
func (s *SQLiteStore) Lock(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	token := uuid.NewString()
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin lock: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_locks WHERE key = ? AND expires_at <= ?`,
		key, now.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to reclaim lock: %w", err)
	}
	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO kv_locks (key, token, expires_at) VALUES (?, ?, ?)`,
		key, token, now.Add(ttl).UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrLocked
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lock: %w", err)
	}

	return &Lease{
		refresh: func(ctx context.Context) error {
			res, err := s.db.ExecContext(ctx, `UPDATE kv_locks SET expires_at = ? WHERE key = ? AND token = ?`,
				time.Now().Add(ttl).UnixMilli(), key, token)
			if err != nil {
				return fmt.Errorf("failed to refresh lock: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrLocked
			}
			return nil
		},
		release: func(ctx context.Context) error {
			if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_locks WHERE key = ? AND token = ?`, key, token); err != nil {
				return fmt.Errorf("failed to release lock: %w", err)
			}
			return nil
		},
	}, nil
}
