// Package db manages the database connection
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// timeFormat is the storage layout for all timestamps. modernc.org/sqlite
// does not render time.Time in a form SQLite's date functions accept, so
// everything is formatted explicitly on the way in.
const timeFormat = "2006-01-02 15:04:05"

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createQuotaStateTable(); err != nil {
		return err
	}
	return db.createUsageSnapshotsTable()
}

// quota_state holds a single row: the last user-entered snapshot plus
// the instant it was saved. Loading applies the staleness rules, the
// row itself is stored verbatim.
func (db *DB) createQuotaStateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS quota_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		reset_time TEXT NOT NULL DEFAULT '',
		session_percent REAL NOT NULL DEFAULT 0,
		window_hours REAL NOT NULL DEFAULT 0,
		weekly_percent REAL NOT NULL DEFAULT 0,
		weekly_reset_date TEXT,
		weekly_work_days INTEGER NOT NULL DEFAULT 5,
		sonnet_percent REAL NOT NULL DEFAULT 0,
		sonnet_reset_date TEXT,
		last_payment_date TEXT,
		updated_at TEXT NOT NULL
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createUsageSnapshotsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS usage_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bucket_time TEXT NOT NULL UNIQUE,
		session_percent REAL NOT NULL DEFAULT 0,
		weekly_percent REAL NOT NULL DEFAULT 0,
		sonnet_percent REAL NOT NULL DEFAULT 0,
		session_status TEXT NOT NULL DEFAULT 'OK',
		weekly_status TEXT NOT NULL DEFAULT 'OK',
		sample_count INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_usage_snapshots_bucket ON usage_snapshots(bucket_time);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}
