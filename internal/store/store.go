// Package store is the local persistence layer (C3): schema, migrations,
// and CRUD for raw emails, transactions, sync state, corrections, dedup
// groups, and eval flags. It is the sole component holding long-lived
// mutable state; everything else in this module borrows values for the
// duration of a single call (spec.md §3 "Ownership").
//
// Concurrency follows spec.md §4.3: single-writer semantics, one
// transaction per batched write, foreign keys enforced, write-ahead
// journaling enabled for durability with reader isolation.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chandrameenamohan/expense-tracker/internal/ports"
)

// ErrNotFound is returned by single-row reads that find no match.
var ErrNotFound = errors.New("store: not found")

// Store is the sqlite-backed implementation of ports.Store.
type Store struct {
	db *sql.DB
}

var _ ports.Store = (*Store)(nil)

// Open opens (creating if absent) the sqlite database at path, enables
// WAL journaling and foreign-key enforcement, and applies pending
// migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows only one writer at a time; a single connection avoids
	// SQLITE_BUSY errors from concurrent writers within this process.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
