package ledger

import (
	"context"
	"fmt"
)

// DaySnapshot maps task → activity → completed flag for a single date.
// Derived, never stored; built by filtering the ledger to one day's rows.
type DaySnapshot map[string]map[string]bool

// LastDone maps task → activity → the most recent date with a completed
// record. Pairs with no completion anywhere are absent, never present with
// an empty value.
type LastDone map[string]map[string]string

// Day returns the completion snapshot for one date.
// A date with no rows yields an empty (non-nil) snapshot, never an error.
func (s *Store) Day(ctx context.Context, date string) (DaySnapshot, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT task, activity, completed
		FROM completions
		WHERE date = ?
		ORDER BY task ASC, activity ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query day: %w", err)
	}
	defer rows.Close()

	snapshot := DaySnapshot{}
	for rows.Next() {
		var task, activity string
		var completed bool
		if err := rows.Scan(&task, &activity, &completed); err != nil {
			return nil, fmt.Errorf("scan day row: %w", err)
		}
		if snapshot[task] == nil {
			snapshot[task] = map[string]bool{}
		}
		snapshot[task][activity] = completed
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day rows: %w", err)
	}

	return snapshot, nil
}

// LastCompleted returns, for every (task, activity) pair with at least one
// completed record strictly before the given date, the most recent such
// date. Used by callers to render "last done on ..." hints.
func (s *Store) LastCompleted(ctx context.Context, before string) (LastDone, error) {
	if err := validDate(before); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT task, activity, MAX(date)
		FROM completions
		WHERE completed = 1 AND date < ?
		GROUP BY task, activity
		ORDER BY task ASC, activity ASC
	`, before)
	if err != nil {
		return nil, fmt.Errorf("query last completed: %w", err)
	}
	defer rows.Close()

	last := LastDone{}
	for rows.Next() {
		var task, activity, date string
		if err := rows.Scan(&task, &activity, &date); err != nil {
			return nil, fmt.Errorf("scan last completed row: %w", err)
		}
		if last[task] == nil {
			last[task] = map[string]string{}
		}
		last[task][activity] = date
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate last completed rows: %w", err)
	}

	return last, nil
}
