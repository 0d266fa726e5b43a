package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Problem is one entry in the practice completion set: a coding-practice
// problem with a pass/fail flag. The set shares the database and the
// idempotent upsert discipline with the completion ledger but has no
// relational link to it.
type Problem struct {
	Name      string
	Passed    bool
	UpdatedAt string
}

// UpsertProblem writes the pass flag for a problem, overwriting any
// existing record and advancing updated_at.
func (s *Store) UpsertProblem(ctx context.Context, problem string, passed bool) error {
	if err := validKey("problem", problem); err != nil {
		return err
	}
	problem = normalizeKey(problem)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO practice_problems (problem, passed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(problem) DO UPDATE SET
			passed = excluded.passed,
			updated_at = excluded.updated_at
	`, problem, passed, s.timestamp())
	if err != nil {
		return fmt.Errorf("upsert problem: %w", err)
	}

	return nil
}

// ToggleProblem flips a problem's pass flag and returns the new state.
// An unknown problem counts as not-passed, so the first toggle records a
// pass.
func (s *Store) ToggleProblem(ctx context.Context, problem string) (bool, error) {
	if err := validKey("problem", problem); err != nil {
		return false, err
	}
	problem = normalizeKey(problem)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("toggle problem: begin tx: %w", err)
	}
	defer tx.Rollback()

	var passed bool
	err = tx.QueryRowContext(ctx, `
		SELECT passed FROM practice_problems WHERE problem = ?
	`, problem).Scan(&passed)
	if errors.Is(err, sql.ErrNoRows) {
		passed = false
	} else if err != nil {
		return false, fmt.Errorf("toggle problem: read current: %w", err)
	}

	next := !passed
	_, err = tx.ExecContext(ctx, `
		INSERT INTO practice_problems (problem, passed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(problem) DO UPDATE SET
			passed = excluded.passed,
			updated_at = excluded.updated_at
	`, problem, next, s.timestamp())
	if err != nil {
		return false, fmt.Errorf("toggle problem: write: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle problem: commit: %w", err)
	}

	return next, nil
}

// Problems returns every recorded problem ordered by name.
// Returns an empty slice (not nil) when the set is empty.
func (s *Store) Problems(ctx context.Context) ([]Problem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT problem, passed, updated_at
		FROM practice_problems
		ORDER BY problem ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.Name, &p.Passed, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		problems = append(problems, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate problems: %w", err)
	}

	if problems == nil {
		problems = []Problem{}
	}

	return problems, nil
}
