// Package sqlite persists the console's credential record in a local
// SQLite file, the on-disk counterpart of a browser's local storage.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	profile    TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	PRIMARY KEY (profile, key)
)`

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "console.db"
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode may not be supported for in-memory databases.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = d.Close()
		return nil, err
	}
	if _, err := d.Exec(schema); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return d, nil
}

// CredentialStore stores the record of one profile in the credentials table.
type CredentialStore struct {
	db      *sql.DB
	profile string
}

func NewCredentialStore(db *sql.DB, profile string) *CredentialStore {
	if profile == "" {
		profile = "default"
	}
	return &CredentialStore{db: db, profile: profile}
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE profile = ? AND key = ?`, s.profile, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return v, nil
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (profile, key, value, updated_at)
		VALUES (?, ?, ?, strftime('%s','now'))
		ON CONFLICT (profile, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.profile, key, value)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE profile = ? AND key = ?`, s.profile, key); err != nil {
		return fmt.Errorf("sqlite remove %s: %w", key, err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
