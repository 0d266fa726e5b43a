package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ritualhq/ritual/internal/aggregate"
	"github.com/ritualhq/ritual/internal/ledger"
)

// AssertionError is returned when an assertion fails.
// It includes the executed steps to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Trace    []StepTrace // Executed steps for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Executed steps for context
	fmt.Fprintf(&buf, "\nExecuted steps:\n")
	for i, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, formatStep(ev))
	}

	return buf.String()
}

// formatStep renders one trace entry for assertion failure output.
func formatStep(ev StepTrace) string {
	switch ev.Op {
	case "upsert", "toggle":
		completed := ev.Completed != nil && *ev.Completed
		return fmt.Sprintf("%s %s %s/%s completed=%t", ev.Op, ev.Date, ev.Task, ev.Activity, completed)
	case "seed":
		return fmt.Sprintf("seed %s (%d pairs)", ev.Date, ev.Pairs)
	case "advance":
		return fmt.Sprintf("advance %s", ev.Advance)
	default:
		return ev.Op
	}
}

// assertStreak checks the consecutive-day streak ending today.
func assertStreak(actx *AssertionContext, assertion Assertion, trace []StepTrace) error {
	got, err := actx.Engine.Streak(actx.Ctx)
	if err != nil {
		return fmt.Errorf("streak query failed: %w", err)
	}

	if got != assertion.Want {
		return &AssertionError{
			Type:     AssertStreak,
			Expected: fmt.Sprintf("streak of %d", assertion.Want),
			Actual:   fmt.Sprintf("streak of %d", got),
			Trace:    trace,
		}
	}

	return nil
}

// assertTotal checks the completed-record count in the trailing window.
func assertTotal(actx *AssertionContext, assertion Assertion, trace []StepTrace) error {
	got, err := actx.Engine.TotalCompletions(actx.Ctx, assertion.Days)
	if err != nil {
		return fmt.Errorf("total completions query failed: %w", err)
	}

	if got != assertion.Want {
		return &AssertionError{
			Type:     AssertTotal,
			Expected: fmt.Sprintf("%d completions over %d days", assertion.Want, assertion.Days),
			Actual:   fmt.Sprintf("%d completions", got),
			Trace:    trace,
		}
	}

	return nil
}

// assertHistoryDays checks how many entries the history view returns.
// Only days with at least one record appear, so this pins the sparse
// shape of the window.
func assertHistoryDays(actx *AssertionContext, assertion Assertion, trace []StepTrace) error {
	entries, err := actx.Engine.History(actx.Ctx, assertion.Days)
	if err != nil {
		return fmt.Errorf("history query failed: %w", err)
	}

	if len(entries) != assertion.Want {
		return &AssertionError{
			Type:     AssertHistoryDays,
			Expected: fmt.Sprintf("%d history entries over %d days", assertion.Want, assertion.Days),
			Actual:   fmt.Sprintf("%d entries (%s)", len(entries), historyDates(entries)),
			Trace:    trace,
		}
	}

	return nil
}

// assertHistoryCount checks one task's completed count on one history
// date, or that the date is absent from the window.
func assertHistoryCount(actx *AssertionContext, assertion Assertion, trace []StepTrace) error {
	entries, err := actx.Engine.History(actx.Ctx, assertion.Days)
	if err != nil {
		return fmt.Errorf("history query failed: %w", err)
	}

	for _, e := range entries {
		if e.Date != assertion.Date {
			continue
		}
		if assertion.Absent {
			return &AssertionError{
				Type:     AssertHistoryCount,
				Expected: fmt.Sprintf("no history entry for %s", assertion.Date),
				Actual:   "entry present",
				Trace:    trace,
			}
		}
		got, ok := e.Counts[assertion.Task]
		if !ok {
			return &AssertionError{
				Type:     AssertHistoryCount,
				Expected: fmt.Sprintf("task %s counted on %s", assertion.Task, assertion.Date),
				Actual:   fmt.Sprintf("no count for task (have %s)", countedTasks(e.Counts)),
				Trace:    trace,
			}
		}
		if got != assertion.Want {
			return &AssertionError{
				Type:     AssertHistoryCount,
				Expected: fmt.Sprintf("%d completions for %s on %s", assertion.Want, assertion.Task, assertion.Date),
				Actual:   fmt.Sprintf("%d completions", got),
				Trace:    trace,
			}
		}
		return nil
	}

	if assertion.Absent {
		return nil
	}
	return &AssertionError{
		Type:     AssertHistoryCount,
		Expected: fmt.Sprintf("history entry for %s", assertion.Date),
		Actual:   "date not in window",
		Trace:    trace,
	}
}

// assertDayFlag checks one pair's flag, or its absence, in the day
// snapshot for a date.
func assertDayFlag(actx *AssertionContext, assertion Assertion, trace []StepTrace) error {
	snap, err := actx.Store.Day(actx.Ctx, assertion.Date)
	if err != nil {
		return fmt.Errorf("day query failed: %w", err)
	}

	var flag, ok bool
	if acts, found := snap[assertion.Task]; found {
		flag, ok = acts[assertion.Activity]
	}

	if assertion.Absent {
		if ok {
			return &AssertionError{
				Type:     AssertDayFlag,
				Expected: fmt.Sprintf("no record for %s/%s on %s", assertion.Task, assertion.Activity, assertion.Date),
				Actual:   fmt.Sprintf("record present with completed=%t", flag),
				Trace:    trace,
			}
		}
		return nil
	}

	if !ok {
		return &AssertionError{
			Type:     AssertDayFlag,
			Expected: fmt.Sprintf("record for %s/%s on %s", assertion.Task, assertion.Activity, assertion.Date),
			Actual:   "no record",
			Trace:    trace,
		}
	}
	if flag != *assertion.Completed {
		return &AssertionError{
			Type:     AssertDayFlag,
			Expected: fmt.Sprintf("%s/%s completed=%t on %s", assertion.Task, assertion.Activity, *assertion.Completed, assertion.Date),
			Actual:   fmt.Sprintf("completed=%t", flag),
			Trace:    trace,
		}
	}

	return nil
}

// assertLastDone checks a pair's most recent completion strictly
// before the cutoff date, or that the pair has none.
func assertLastDone(actx *AssertionContext, assertion Assertion, trace []StepTrace) error {
	last, err := actx.Store.LastCompleted(actx.Ctx, assertion.Date)
	if err != nil {
		return fmt.Errorf("last completed query failed: %w", err)
	}

	var got string
	var ok bool
	if acts, found := last[assertion.Task]; found {
		got, ok = acts[assertion.Activity]
	}

	if assertion.Absent {
		if ok {
			return &AssertionError{
				Type:     AssertLastDone,
				Expected: fmt.Sprintf("no completion for %s/%s before %s", assertion.Task, assertion.Activity, assertion.Date),
				Actual:   fmt.Sprintf("last done %s", got),
				Trace:    trace,
			}
		}
		return nil
	}

	if !ok {
		return &AssertionError{
			Type:     AssertLastDone,
			Expected: fmt.Sprintf("%s/%s last done %s", assertion.Task, assertion.Activity, assertion.WantDate),
			Actual:   "no completion before cutoff",
			Trace:    trace,
		}
	}
	if got != assertion.WantDate {
		return &AssertionError{
			Type:     AssertLastDone,
			Expected: fmt.Sprintf("%s/%s last done %s", assertion.Task, assertion.Activity, assertion.WantDate),
			Actual:   fmt.Sprintf("last done %s", got),
			Trace:    trace,
		}
	}

	return nil
}

// historyDates summarizes history entry dates for failure output.
func historyDates(entries []aggregate.HistoryEntry) string {
	if len(entries) == 0 {
		return "no dates"
	}
	dates := make([]string, len(entries))
	for i, e := range entries {
		dates[i] = e.Date
	}
	return strings.Join(dates, ", ")
}

// countedTasks lists the tasks present in a history entry, sorted.
func countedTasks(counts map[string]int) string {
	if len(counts) == 0 {
		return "no tasks"
	}
	tasks := make([]string, 0, len(counts))
	for task := range counts {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)
	return strings.Join(tasks, ", ")
}

// AssertionContext provides view access for evaluating assertions.
type AssertionContext struct {
	Ctx    context.Context
	Store  *ledger.Store
	Engine *aggregate.Engine
}

// EvaluateAssertions evaluates all assertions against the final ledger
// state. Returns a slice of error messages for failed assertions.
// The result parameter supplies the step trace for failure context.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStreak:
			err = assertStreak(actx, assertion, result.Trace)
		case AssertTotal:
			err = assertTotal(actx, assertion, result.Trace)
		case AssertHistoryDays:
			err = assertHistoryDays(actx, assertion, result.Trace)
		case AssertHistoryCount:
			err = assertHistoryCount(actx, assertion, result.Trace)
		case AssertDayFlag:
			err = assertDayFlag(actx, assertion, result.Trace)
		case AssertLastDone:
			err = assertLastDone(actx, assertion, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
