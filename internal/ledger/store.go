package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ritualhq/ritual/internal/civil"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Legacy layout: checkin(d, task, done) keyed by day+task only
// 1 - Current layout: completions keyed by (date, task, activity) with
//     completed_at; legacy checkin rows folded in and the table dropped
const currentSchemaVersion = 1

// legacyActivity is the activity key assigned to rows migrated from the
// legacy checkin table, which predates the activity dimension.
const legacyActivity = "daily"

// Store provides durable storage for completion records.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db    *sql.DB
	clock civil.Clock
}

// Option configures a Store during Open.
type Option func(*Store)

// WithClock overrides the clock used for completed_at timestamps.
// Production code uses the default wall clock; tests inject a frozen one.
func WithClock(c civil.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{clock: civil.NewWallClock(nil)}
	for _, opt := range opts {
		opt(s)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool for SQLite
	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	// Apply required pragmas
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	// Apply schema migrations
	if err := applySchema(db, s.timestamp()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s.db = db
	return s, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query executes a query and returns the resulting rows.
// This is a convenience wrapper around db.QueryContext for use by the
// aggregation engine. Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query expected to return at most one row.
// Like Query, this exists for the aggregation engine's scans.
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// timestamp returns the current write timestamp: an RFC3339Nano instant in
// UTC from the store's clock.
func (s *Store) timestamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339Nano)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB, migratedAt string) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	// Run migrations
	if err := runMigrations(db, migratedAt); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB, migratedAt string) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// Apply migrations sequentially
	if version < 1 {
		if err := migrateToV1(db, migratedAt); err != nil {
			return err
		}
		version = 1
	}

	// Set version after all migrations
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 folds a legacy checkin table into completions.
//
// Databases created before the activity dimension carry
// checkin(d, task, done) keyed by day+task. Its rows become completions
// rows under the legacyActivity key, completed_at set to the migration
// time, and the legacy table is dropped. Fresh databases have no checkin
// table and this is a no-op. After this runs, no code path ever probes
// for the legacy shape again.
func migrateToV1(db *sql.DB, migratedAt string) error {
	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'checkin'
	`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate to v1: probe legacy table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v1: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// WHERE true disambiguates the upsert clause after INSERT ... SELECT.
	_, err = tx.Exec(`
		INSERT INTO completions (date, task, activity, completed, completed_at)
		SELECT d, task, ?, done, ?
		FROM checkin
		WHERE true
		ON CONFLICT(date, task, activity) DO NOTHING
	`, legacyActivity, migratedAt)
	if err != nil {
		return fmt.Errorf("migrate to v1: copy legacy rows: %w", err)
	}

	if _, err := tx.Exec(`DROP TABLE checkin`); err != nil {
		return fmt.Errorf("migrate to v1: drop legacy table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v1: commit: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
