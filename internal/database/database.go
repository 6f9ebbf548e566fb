// Package database opens the round history store. SQLite is the default;
// Postgres is used when the driver is "postgres".
package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	Driver string
}

// New creates a new database connection
func New(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// an in-memory database lives and dies with its one connection
		db.SetMaxOpenConns(1)
		if !strings.Contains(dsn, ":memory:") {
			if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// OpenMemory opens a private in-memory SQLite database with the schema
// applied.
func OpenMemory() (*DB, error) {
	db, err := New(DriverSQLite, ":memory:")
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS game_rounds (
		id VARCHAR(36) PRIMARY KEY,
		session_id VARCHAR(36) NOT NULL,
		game_id VARCHAR(32) NOT NULL,
		wager_amount NUMERIC(14,2) NOT NULL,
		win_amount NUMERIC(14,2) NOT NULL,
		balance_before NUMERIC(14,2) NOT NULL,
		balance_after NUMERIC(14,2) NOT NULL,
		label TEXT NOT NULL,
		outcome TEXT,
		status VARCHAR(16) NOT NULL,
		started_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS audit_events (
		id VARCHAR(36) PRIMARY KEY,
		type VARCHAR(100) NOT NULL,
		severity VARCHAR(20) NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		session_id VARCHAR(36),
		game_id VARCHAR(32),
		description TEXT NOT NULL,
		data TEXT,
		component VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id VARCHAR(36) PRIMARY KEY,
		seed TEXT,
		total_rounds INTEGER NOT NULL,
		starting_balance NUMERIC(14,2) NOT NULL,
		final_balance NUMERIC(14,2) NOT NULL,
		peak_balance NUMERIC(14,2) NOT NULL,
		lowest_balance NUMERIC(14,2) NOT NULL,
		goal_reached BOOLEAN NOT NULL,
		report TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS system_state (
		key VARCHAR(100) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		updated_by VARCHAR(100) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_rounds_session ON game_rounds(session_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_game_rounds_game ON game_rounds(game_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_session ON audit_events(session_id)`,
}

var tables = []string{"game_rounds", "audit_events", "simulation_runs", "system_state"}

// Migrate creates all required tables
func (db *DB) Migrate() error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

// Reset drops all tables (for testing)
func (db *DB) Reset() error {
	for _, t := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return nil
}

// CleanData empties all tables without dropping them (for testing)
func (db *DB) CleanData() error {
	for _, t := range tables {
		if _, err := db.Exec("DELETE FROM " + t); err != nil {
			return fmt.Errorf("clean %s: %w", t, err)
		}
	}
	return nil
}
