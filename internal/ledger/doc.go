// Package ledger provides SQLite-backed durable storage for the completion
// ledger: the tracker's single source of truth.
//
// The ledger holds one row per (date, task, activity) with:
//   - completed: the completion flag, mutated in place
//   - completed_at: last-write timestamp, advances on every upsert
//
// # Critical Patterns
//
// One row per key
//   - UNIQUE(date, task, activity) constraint
//   - All writes are upserts; duplicate rows can never accumulate
//   - Rows are never deleted, only overwritten
//
// Untyped key space
//   - task and activity are free strings with no foreign key to any catalog
//   - An unknown key is simply a new key; membership checks belong to callers
//   - Keys are NFC-normalized at every entry point so composed and
//     decomposed spellings address the same row
//
// Absence is not an error
//   - Reads over missing keys return empty (non-nil) maps and zero counts
//   - Only storage failures and malformed inputs surface as errors
//
// A second, structurally unrelated completion set (practice problems with a
// pass/fail flag) lives in the same database under the same idempotent
// upsert discipline; see practice.go.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Legacy databases created by the day+task-only layout are migrated once at
// Open via PRAGMA user_version; after that every code path assumes the
// current schema.
package ledger
