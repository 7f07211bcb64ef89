package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// ErrStoreFull signals that the underlying store has no room left and the
// caller may clear it and retry the write.
var ErrStoreFull = errors.New("key-value store is full")

// KV is the persistent key-value capability the repositories are built on.
// Values are UTF-8 JSON text.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type SQLiteKV struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteKV(db *sql.DB, logger zerolog.Logger) *SQLiteKV {
	return &SQLiteKV{db: db, logger: logger}
}

// NewKV adapts the concrete store to the KV capability for injection.
func NewKV(kv *SQLiteKV) KV {
	return kv
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		if isStoreFull(err) {
			return ErrStoreFull
		}
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	s.logger.Warn().Msg("key-value store cleared")
	return nil
}

func isStoreFull(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrFull
	}
	return false
}
