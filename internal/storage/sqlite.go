package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"github.com/legodeal/legodealbot/internal/storage/migrations"
)

// SQLiteStorage keeps objects as rows of a key/value table
type SQLiteStorage struct {
	db *sql.DB
}

// Ensure SQLiteStorage implements StorageInterface
var _ StorageInterface = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens the database at dsn and applies pending migrations
func NewSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the underlying database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Store upserts the value stored under name
func (s *SQLiteStorage) Store(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (name, data) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

// Retrieve returns the value stored under name, or ErrNotFound
func (s *SQLiteStorage) Retrieve(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM objects WHERE name = ?`, name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("row %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("retrieve %s: %w", name, err)
	}
	return data, nil
}

// Delete removes the row stored under name
func (s *SQLiteStorage) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
