package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ritualhq/ritual/internal/aggregate"
	"github.com/ritualhq/ritual/internal/ledger"
	"github.com/ritualhq/ritual/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios against a fresh ledger with a frozen clock.
type Harness struct {
	store  *ledger.Store
	engine *aggregate.Engine
	clock  *testutil.FrozenClock
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation; the
// store's single pinned connection keeps the ":memory:" database alive
// for the scenario's duration. The clock starts frozen at the
// scenario's today, so "today"-relative views are reproducible.
//
// Execution flow:
//  1. Open an in-memory ledger with the frozen clock
//  2. Apply the steps in order
//  3. Evaluate assertions against the final views
//  4. Capture the final snapshot for golden comparison
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewFrozenClock(scenario.Today)

	st, err := ledger.Open(":memory:", ledger.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory ledger: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		engine: aggregate.New(st, clock),
		clock:  clock,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	// Evaluate assertions against the final views
	actx := &AssertionContext{
		Ctx:    ctx,
		Store:  st,
		Engine: h.engine,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	final, err := h.buildSnapshot(ctx, scenario.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to capture final snapshot: %w", err)
	}
	result.Final = final

	return result, nil
}

// executeSteps applies all scenario steps in order.
//
// Step failures abort the run: a scenario whose writes fail has no
// meaningful views to assert against. A toggle want mismatch is an
// assertion-style failure instead, recorded on the result.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		switch {
		case step.Upsert != nil:
			u := step.Upsert
			if err := h.store.Upsert(ctx, u.Date, u.Task, u.Activity, u.Completed); err != nil {
				return fmt.Errorf("step %d: upsert: %w", i, err)
			}
			completed := u.Completed
			result.AddStepTrace(StepTrace{
				Op:        "upsert",
				Date:      u.Date,
				Task:      u.Task,
				Activity:  u.Activity,
				Completed: &completed,
			})
			h.logger.Info("step completed",
				"step", i,
				"op", "upsert",
				"date", u.Date,
				"task", u.Task,
				"activity", u.Activity,
				"completed", u.Completed,
			)

		case step.Toggle != nil:
			tg := step.Toggle
			state, err := h.store.Toggle(ctx, tg.Date, tg.Task, tg.Activity)
			if err != nil {
				return fmt.Errorf("step %d: toggle: %w", i, err)
			}
			if tg.Want != nil && state != *tg.Want {
				result.AddError(fmt.Sprintf("step %d: toggle %s %s/%s: want state %t, got %t",
					i, tg.Date, tg.Task, tg.Activity, *tg.Want, state))
			}
			result.AddStepTrace(StepTrace{
				Op:        "toggle",
				Date:      tg.Date,
				Task:      tg.Task,
				Activity:  tg.Activity,
				Completed: &state,
			})
			h.logger.Info("step completed",
				"step", i,
				"op", "toggle",
				"date", tg.Date,
				"task", tg.Task,
				"activity", tg.Activity,
				"state", state,
			)

		case step.Seed != nil:
			sd := step.Seed
			pairs := make([]ledger.Pair, len(sd.Pairs))
			for j, p := range sd.Pairs {
				pairs[j] = ledger.Pair{Task: p.Task, Activity: p.Activity}
			}
			if err := h.store.SeedDay(ctx, sd.Date, pairs); err != nil {
				return fmt.Errorf("step %d: seed: %w", i, err)
			}
			result.AddStepTrace(StepTrace{
				Op:    "seed",
				Date:  sd.Date,
				Pairs: len(pairs),
			})
			h.logger.Info("step completed",
				"step", i,
				"op", "seed",
				"date", sd.Date,
				"pairs", len(pairs),
			)

		case step.Advance != "":
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("step %d: advance: invalid duration %q", i, step.Advance)
			}
			h.clock.Advance(d)
			result.AddStepTrace(StepTrace{
				Op:      "advance",
				Advance: step.Advance,
			})
			h.logger.Info("step completed",
				"step", i,
				"op", "advance",
				"today", h.clock.Today(),
			)

		default:
			return fmt.Errorf("step %d: no action set", i)
		}
	}

	return nil
}

// buildSnapshot queries the derived views that make up a result's
// final snapshot. The window length is fixed so snapshots from
// repeated runs stay comparable.
func (h *Harness) buildSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	today := h.clock.Today()

	streak, err := h.engine.Streak(ctx)
	if err != nil {
		return nil, fmt.Errorf("streak: %w", err)
	}
	total, err := h.engine.TotalCompletions(ctx, snapshotWindowDays)
	if err != nil {
		return nil, fmt.Errorf("total completions: %w", err)
	}
	entries, err := h.engine.History(ctx, snapshotWindowDays)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	day, err := h.store.Day(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("day: %w", err)
	}

	history := make([]HistoryDay, len(entries))
	for i, e := range entries {
		history[i] = HistoryDay{Date: e.Date, Counts: e.Counts}
	}

	return &Snapshot{
		Scenario: name,
		Today:    today,
		Streak:   streak,
		Total:    total,
		History:  history,
		Day:      day,
	}, nil
}
