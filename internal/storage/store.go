// Package storage implements the persistence collaborator for the agent's
// library collections. Collections are stored as opaque serialized blobs
// under fixed logical keys, mirroring a simple key-value contract.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Logical keys for the two persisted collections.
const (
	KeySavedIdeas = "saved_ideas"
	KeyProjects   = "projects"
)

// Store is the key-value persistence contract. Load returns nil (not an
// error) when the key has never been written.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// SQLiteStore persists collection blobs in a sqlite table.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM collections WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	if s.logger != nil {
		s.logger.Debug("collection persisted", "key", key, "bytes", len(value))
	}
	return nil
}
