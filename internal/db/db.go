package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Open creates an in-memory SQLite database holding the article index.
// Nothing is written to disk; the index lives as long as the *sql.DB.
func Open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, so the pool is
	// pinned to a single long-lived connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS articles (
		  slug          TEXT PRIMARY KEY,
		  path          TEXT NOT NULL,
		  title         TEXT NOT NULL,
		  title_norm    TEXT NOT NULL,
		  description   TEXT NOT NULL,
		  published_at  INTEGER NOT NULL, -- unix nanoseconds, UTC
		  draft         INTEGER NOT NULL DEFAULT 0,
		  body          TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_articles_published
		ON articles(published_at DESC, slug ASC)
		WHERE draft = 0;

		CREATE INDEX IF NOT EXISTS idx_articles_title_norm
		ON articles(title_norm);

		CREATE TABLE IF NOT EXISTS article_tags (
		  slug      TEXT NOT NULL REFERENCES articles(slug) ON DELETE CASCADE,
		  tag       TEXT NOT NULL,
		  position  INTEGER NOT NULL,
		  PRIMARY KEY (slug, tag)
		);

		CREATE INDEX IF NOT EXISTS idx_article_tags_tag
		ON article_tags(tag);

		CREATE TABLE IF NOT EXISTS article_references (
		  slug      TEXT NOT NULL REFERENCES articles(slug) ON DELETE CASCADE,
		  position  INTEGER NOT NULL,
		  target    TEXT NOT NULL,
		  PRIMARY KEY (slug, position)
		);

		CREATE TABLE IF NOT EXISTS loads (
		  run_id         TEXT PRIMARY KEY,
		  root           TEXT NOT NULL,
		  loaded_at      INTEGER NOT NULL,
		  article_count  INTEGER NOT NULL,
		  failure_count  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS load_failures (
		  id       INTEGER PRIMARY KEY AUTOINCREMENT,
		  run_id   TEXT NOT NULL REFERENCES loads(run_id) ON DELETE CASCADE,
		  path     TEXT NOT NULL,
		  code     TEXT NOT NULL,
		  message  TEXT NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
