// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite: no CGo, so the
// seed command and both services cross-compile like any other Go binary.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB:   a connection pool (NOT a single connection!)
//   - sql.Tx:   a transaction; ReplaceAll runs drop/create/insert inside one
//   - sql.Rows: multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// memoryPath opens a private in-memory database. Used by tests.
const memoryPath = ":memory:"

// createUsersTable is shared by migrate and ReplaceAll so the schema lives in one place.
const createUsersTable = `
	CREATE TABLE %s users (
		user_id   INTEGER PRIMARY KEY,
		name      TEXT NOT NULL DEFAULT ' ',
		login     TEXT NOT NULL,
		avatar    TEXT NOT NULL DEFAULT '',
		user_type TEXT NOT NULL DEFAULT '',
		profile   TEXT NOT NULL DEFAULT ''
	)`

// DB wraps a sql.DB connection pool and implements repository.UserReader and
// repository.UserWriter.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the SQLite database at dbPath and makes sure the users
// table exists, so the read services work against a database that was never seeded.
//
// dbPath examples:
//   - "data/site.db" → file-based database; the parent directory is created
//   - ":memory:"     → in-memory database, lost on close
func New(dbPath string) (*DB, error) {
	if dbPath != memoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would see its own empty database.
	if dbPath == memoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets the two read services keep serving while a seed run writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the location the database was opened from.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database still answers.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}

// migrate creates the users table when it is missing. The table is dropped and
// recreated by every seed run, so there is no versioned migration history.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(fmt.Sprintf(createUsersTable, "IF NOT EXISTS")); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}
