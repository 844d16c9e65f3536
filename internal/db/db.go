// Package db keeps a local sqlite journal of published releases.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and runs migrations
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS releases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			owner      TEXT NOT NULL,
			repo       TEXT NOT NULL,
			tag_name   TEXT NOT NULL,
			name       TEXT,
			release_id INTEGER NOT NULL,
			html_url   TEXT,
			draft      INTEGER NOT NULL DEFAULT 0,
			prerelease INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS releases_repo ON releases (owner, repo)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			release_row INTEGER NOT NULL REFERENCES releases(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			path        TEXT NOT NULL,
			filename    TEXT,
			status      TEXT NOT NULL,
			detail      TEXT,
			PRIMARY KEY (release_row, position)
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// BeginTx starts a new transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.conn.BeginTx(ctx, nil)
}
