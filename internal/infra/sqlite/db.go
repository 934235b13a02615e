// Package sqlite provides SQLite-based persistent storage for fitpet.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements domain.Store.
type DB struct {
	db   *sql.DB
	path string
}

// Open creates or opens the SQLite database at dir/state.db with WAL
// journaling, enforced foreign keys and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	// modernc.org/sqlite only honours _pragma DSN keys.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db, path: dbPath}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Path returns the database file location.
func (d *DB) Path() string { return d.path }

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id                TEXT PRIMARY KEY,
			display_name      TEXT NOT NULL,
			total_xp          INTEGER NOT NULL DEFAULT 0,
			current_streak    INTEGER NOT NULL DEFAULT 0,
			highest_streak    INTEGER NOT NULL DEFAULT 0,
			last_workout_date TEXT,
			essence_balance   INTEGER NOT NULL DEFAULT 0 CHECK (essence_balance >= 0),
			created_at        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_created ON players(created_at)`,

		// Unlocks only ever grow; rows are never deleted.
		`CREATE TABLE IF NOT EXISTS player_unlocks (
			player_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			kind      TEXT NOT NULL,
			key       TEXT NOT NULL,
			PRIMARY KEY (player_id, kind, key)
		)`,

		`CREATE TABLE IF NOT EXISTS pets (
			id                 TEXT PRIMARY KEY,
			player_id          TEXT NOT NULL UNIQUE REFERENCES players(id) ON DELETE CASCADE,
			name               TEXT NOT NULL,
			species            TEXT NOT NULL,
			total_xp           INTEGER NOT NULL DEFAULT 0,
			happiness          REAL NOT NULL,
			happiness_updated  INTEGER NOT NULL,
			is_away            BOOLEAN NOT NULL DEFAULT 0,
			stage              TEXT NOT NULL,
			created_at         INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pet_accessories (
			pet_id       TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
			accessory_id TEXT NOT NULL,
			PRIMARY KEY (pet_id, accessory_id)
		)`,

		`CREATE TABLE IF NOT EXISTS workouts (
			id               TEXT PRIMARY KEY,
			player_id        TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			type             TEXT NOT NULL,
			xp_earned        INTEGER NOT NULL,
			pet_xp_earned    INTEGER NOT NULL DEFAULT 0,
			weight           REAL,
			reps             INTEGER,
			sets             INTEGER,
			duration_minutes REAL,
			steps            INTEGER,
			calories         REAL,
			template_id      TEXT,
			at               INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_player ON workouts(player_id, at)`,

		`CREATE TABLE IF NOT EXISTS templates (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL,
			base_xp    INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		// Essence ledger: one row per balance mutation.
		`CREATE TABLE IF NOT EXISTS essence_ledger (
			seq       INTEGER PRIMARY KEY AUTOINCREMENT,
			id        TEXT NOT NULL UNIQUE,
			player_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			amount    INTEGER NOT NULL,
			reason    TEXT NOT NULL DEFAULT '',
			balance   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_player ON essence_ledger(player_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (d *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Instants are stored as Unix nanoseconds so decay arithmetic survives a
// round trip exactly.
func toNanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
