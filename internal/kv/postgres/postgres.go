// Package postgres backs the kv contract with a single jsonb table, so
// the ledger survives process restarts without changing shape.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type Store struct {
	db *sql.DB
}

// New prepares the backing table and returns a Store over db.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	query := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}

	query := `
		INSERT INTO kv_entries (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := s.db.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("storing %q: %w", key, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE key = $1", key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}

		return false, fmt.Errorf("loading %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}

	return true, nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = $1", key); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries"); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	return nil
}
