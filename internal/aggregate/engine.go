package aggregate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ritualhq/ritual/internal/civil"
	"github.com/ritualhq/ritual/internal/ledger"
)

// streakLookbackDays caps the backward walk in Streak. This is a policy
// bound, not a correctness limit: a true streak longer than the cap
// reports as the cap.
const streakLookbackDays = 365

// HistoryEntry holds one day's completed-activity counts, keyed by task.
type HistoryEntry struct {
	Date   string
	Counts map[string]int
}

// Engine computes derived views over a completion ledger.
type Engine struct {
	store *ledger.Store
	clock civil.Clock
}

// New creates an Engine over the given store. A nil clock falls back to
// wall time in UTC.
func New(s *ledger.Store, clock civil.Clock) *Engine {
	if clock == nil {
		clock = civil.NewWallClock(nil)
	}
	return &Engine{store: s, clock: clock}
}

// History returns per-task completed counts for each day in the window
// [today-days+1, today] that has at least one ledger row, newest first.
// Days without rows are omitted, so the result is sparse and callers
// must not assume contiguous dates. A day whose rows are all uncompleted
// still appears, with zero counts.
func (e *Engine) History(ctx context.Context, days int) ([]HistoryEntry, error) {
	if days < 1 {
		return nil, ledger.NewInputError("days", strconv.Itoa(days), "must be at least 1")
	}

	today := e.clock.Today()
	start, err := civil.WindowStart(today, days)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	rows, err := e.store.Query(ctx, `
		SELECT date, task, SUM(completed)
		FROM completions
		WHERE date >= ? AND date <= ?
		GROUP BY date, task
		ORDER BY date DESC, task ASC
	`, start, today)
	if err != nil {
		return nil, fmt.Errorf("history: query completions: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var date, task string
		var count int
		if err := rows.Scan(&date, &task, &count); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		// Rows arrive grouped by date, newest first
		if len(entries) == 0 || entries[len(entries)-1].Date != date {
			entries = append(entries, HistoryEntry{Date: date, Counts: map[string]int{}})
		}
		entries[len(entries)-1].Counts[task] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}

	return entries, nil
}

// Streak counts consecutive days each having at least one completed
// record, walking backward from today. The walk stops at the first day
// without a completion, so if today has none the streak is 0, and a
// single bare day breaks the streak even when earlier days recover.
// The walk is capped at streakLookbackDays.
//
// A single range query feeds an explicit day-by-day walk. A record with
// completed=false does not keep a day alive; only completed rows count.
func (e *Engine) Streak(ctx context.Context) (int, error) {
	today := e.clock.Today()
	start, err := civil.WindowStart(today, streakLookbackDays)
	if err != nil {
		return 0, fmt.Errorf("streak: %w", err)
	}

	rows, err := e.store.Query(ctx, `
		SELECT DISTINCT date
		FROM completions
		WHERE completed = 1 AND date >= ? AND date <= ?
	`, start, today)
	if err != nil {
		return 0, fmt.Errorf("streak: query completed days: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return 0, fmt.Errorf("streak: scan row: %w", err)
		}
		done[date] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("streak: iterate rows: %w", err)
	}

	streak := 0
	day := today
	for i := 0; i < streakLookbackDays; i++ {
		if !done[day] {
			break
		}
		streak++
		day, err = civil.AddDays(day, -1)
		if err != nil {
			return 0, fmt.Errorf("streak: %w", err)
		}
	}

	return streak, nil
}

// TotalCompletions counts completed records with a date in the window
// [today-days+1, today]. One aggregate scan, not a per-day sum.
func (e *Engine) TotalCompletions(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, ledger.NewInputError("days", strconv.Itoa(days), "must be at least 1")
	}

	today := e.clock.Today()
	start, err := civil.WindowStart(today, days)
	if err != nil {
		return 0, fmt.Errorf("total completions: %w", err)
	}

	var count int
	err = e.store.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM completions
		WHERE completed = 1 AND date >= ? AND date <= ?
	`, start, today).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("total completions: count: %w", err)
	}

	return count, nil
}
