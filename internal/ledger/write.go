package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Pair identifies one (task, activity) combination, used when seeding a
// day's rows from the caller's catalog.
type Pair struct {
	Task     string
	Activity string
}

// Upsert writes the completion flag for (date, task, activity), overwriting
// any existing record for that key and advancing completed_at to the write
// time. Exactly one row per key can ever exist; repeated calls never
// accumulate duplicates.
//
// The ledger does not check task or activity against any catalog - an
// unknown key is simply a new key.
func (s *Store) Upsert(ctx context.Context, date, task, activity string, completed bool) error {
	if err := validDate(date); err != nil {
		return err
	}
	if err := validKey("task", task); err != nil {
		return err
	}
	if err := validKey("activity", activity); err != nil {
		return err
	}
	task = normalizeKey(task)
	activity = normalizeKey(activity)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (date, task, activity, completed, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, task, activity) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at
	`, date, task, activity, completed, s.timestamp())
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}

	return nil
}

// Toggle flips the completion flag for (date, task, activity) and returns
// the new state. A key with no record counts as not-completed, so the first
// toggle for a key marks it completed.
//
// The read-then-flip runs in one transaction so concurrent toggles of the
// same key serialize cleanly.
func (s *Store) Toggle(ctx context.Context, date, task, activity string) (bool, error) {
	if err := validDate(date); err != nil {
		return false, err
	}
	if err := validKey("task", task); err != nil {
		return false, err
	}
	if err := validKey("activity", activity); err != nil {
		return false, err
	}
	task = normalizeKey(task)
	activity = normalizeKey(activity)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("toggle completion: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var completed bool
	err = tx.QueryRowContext(ctx, `
		SELECT completed FROM completions
		WHERE date = ? AND task = ? AND activity = ?
	`, date, task, activity).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		completed = false
	} else if err != nil {
		return false, fmt.Errorf("toggle completion: read current: %w", err)
	}

	next := !completed
	_, err = tx.ExecContext(ctx, `
		INSERT INTO completions (date, task, activity, completed, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, task, activity) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at
	`, date, task, activity, next, s.timestamp())
	if err != nil {
		return false, fmt.Errorf("toggle completion: write: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle completion: commit: %w", err)
	}

	return next, nil
}

// SeedDay inserts a not-completed row for every pair that has no record on
// the given date yet. Existing rows - completed or not - are left untouched,
// so seeding after a toggle never clobbers state. Callers typically seed
// today's rows from the catalog before rendering the day view.
func (s *Store) SeedDay(ctx context.Context, date string, pairs []Pair) error {
	if err := validDate(date); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := validKey("task", p.Task); err != nil {
			return err
		}
		if err := validKey("activity", p.Activity); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed day: begin tx: %w", err)
	}
	defer tx.Rollback()

	ts := s.timestamp()
	for _, p := range pairs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO completions (date, task, activity, completed, completed_at)
			VALUES (?, ?, ?, 0, ?)
			ON CONFLICT(date, task, activity) DO NOTHING
		`, date, normalizeKey(p.Task), normalizeKey(p.Activity), ts)
		if err != nil {
			return fmt.Errorf("seed day: insert %s/%s: %w", p.Task, p.Activity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed day: commit: %w", err)
	}

	return nil
}
