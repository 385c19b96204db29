// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSlot keeps the library as one row of a key/value table, so several
// named libraries can share a database file.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

// NewSQLiteSlot opens or creates the database at path and its slots table.
func NewSQLiteSlot(path, key string) (*SQLiteSlot, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteSlot{db: db, key: key}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}

func (s *SQLiteSlot) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Read returns the slot value, or ErrSlotEmpty if the key has no row.
func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", s.key, err)
	}
	return data, nil
}

// Write upserts the slot value.
func (s *SQLiteSlot) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", s.key, err)
	}
	return nil
}
