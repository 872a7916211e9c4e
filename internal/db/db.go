package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hasnainakber9/tabflow-startup/internal/config"
	"github.com/hasnainakber9/tabflow-startup/internal/intent"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/tabflow.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tabflow.
//
// A fresh database is seeded the way the extension seeds storage on install:
// default settings, a zeroed stats row, and the install timestamp.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "tabflow.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
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

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS intents (
		  id           TEXT PRIMARY KEY,
		  text         TEXT NOT NULL,
		  category     TEXT NOT NULL,
		  status       TEXT NOT NULL,
		  created_at   INTEGER NOT NULL,
		  completed_at INTEGER,
		  tab_ids_json TEXT,
		  synced_at    INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_intents_status_created
		ON intents(status, created_at DESC);

		CREATE TABLE IF NOT EXISTS stats (
		  id                INTEGER PRIMARY KEY CHECK (id = 1),
		  total_intents     INTEGER NOT NULL DEFAULT 0,
		  completed_intents INTEGER NOT NULL DEFAULT 0,
		  skipped_tabs      INTEGER NOT NULL DEFAULT 0,
		  install_date      INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
		  id            INTEGER PRIMARY KEY CHECK (id = 1),
		  settings_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS session (
		  id           INTEGER PRIMARY KEY CHECK (id = 1),
		  session_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notifications (
		  notification_id TEXT PRIMARY KEY,
		  intent_id       TEXT NOT NULL,
		  created_at      INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := seed(db); err != nil {
			return err
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// seed installs the first-run rows: zeroed counters with the install
// timestamp, and default settings.
func seed(db *sql.DB) error {
	now := intent.NowMillis()
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO stats (id, install_date) VALUES (1, ?)`, now,
	); err != nil {
		return fmt.Errorf("failed to seed stats: %w", err)
	}
	if err := SaveSettings(db, intent.DefaultSettings()); err != nil {
		return err
	}
	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
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
