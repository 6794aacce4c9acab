// Package db stores converted decks in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/deckhand/internal/config"
	_ "modernc.org/sqlite"
)

// File layout under the base directory.
const (
	FileName   = "deckhand.db"
	ExportsDir = "exports"
)

// Pragmas are set in the DSN so every pooled connection gets them.
const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// migrations are applied in order; migrations[i] moves the schema from
// version i to i+1. Append only.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS decks (
	  id              TEXT PRIMARY KEY,
	  workspace_raw   TEXT NOT NULL,
	  workspace_norm  TEXT NOT NULL,
	  name_raw        TEXT,
	  name_norm       TEXT,
	  title           TEXT,
	  source_text     TEXT NOT NULL,
	  html            TEXT NOT NULL,
	  slide_count     INTEGER NOT NULL,
	  source_chars    INTEGER NOT NULL,
	  created_at      INTEGER NOT NULL,
	  updated_at      INTEGER NOT NULL,
	  deleted_at      INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_decks_workspace_updated
	ON decks(workspace_norm, updated_at DESC)
	WHERE deleted_at IS NULL;

	CREATE UNIQUE INDEX IF NOT EXISTS idx_decks_workspace_name_norm
	ON decks(workspace_norm, name_norm)
	WHERE name_norm IS NOT NULL AND deleted_at IS NULL;

	CREATE INDEX IF NOT EXISTS idx_decks_deleted
	ON decks(deleted_at)
	WHERE deleted_at IS NOT NULL;`,

	// Listing across workspaces sorts every live deck by recency.
	`CREATE INDEX IF NOT EXISTS idx_decks_updated
	ON decks(updated_at DESC, id DESC)
	WHERE deleted_at IS NULL;`,
}

// CurrentSchemaVersion is the schema version after all migrations.
var CurrentSchemaVersion = len(migrations)

// Init opens (creating if needed) baseDir/deckhand.db and brings its schema
// up to date. baseDir is ~/.deckhand in production and t.TempDir() in tests;
// its exports subdirectory is created alongside.
func Init(baseDir string) (*sql.DB, error) {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, ExportsDir)} {
		if err := ensurePrivateDir(dir); err != nil {
			return nil, err
		}
	}

	dbPath := filepath.Join(baseDir, FileName)
	db, err := sql.Open("sqlite", dbPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// The file exists once migrations have run.
	_ = os.Chmod(dbPath, 0600)
	return db, nil
}

// ensurePrivateDir creates dir with owner-only permissions. The chmod is
// best-effort for directories that already existed.
func ensurePrivateDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	_ = os.Chmod(dir, 0700)
	return nil
}

// ConfigurePool applies the configured pool limits. Zero values keep the
// database/sql defaults.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies every migration past the stored user_version, each in its
// own transaction together with the version bump.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	for v := version; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: failed to set user_version: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}

func verifyWALMode(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", mode)
	}
	return nil
}

// GetUserVersion returns the schema version stored in the user_version pragma.
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion overwrites the stored schema version.
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
