// Package harness provides scenario-based conformance testing for the
// ritual core.
//
// Scenarios exercise the completion ledger and the aggregation engine
// together: each scenario pins the clock to a fixed date, applies a
// sequence of ledger writes, and asserts on the derived views the core
// exposes (streak, totals, history, day snapshots, last-done dates).
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: streak_boundary
//	description: "An uncompleted record ends the streak walk"
//	today: "2025-01-12"
//	steps:
//	  - upsert: { date: "2025-01-12", task: reading, activity: p1, completed: true }
//	  - upsert: { date: "2025-01-11", task: reading, activity: p1, completed: true }
//	  - upsert: { date: "2025-01-10", task: reading, activity: p1 }
//	assertions:
//	  - type: streak
//	    want: 2
//
// Each step carries exactly one action:
//
//   - upsert: write one completion flag
//   - toggle: flip one flag, optionally checking the reported state
//   - seed: insert uncompleted rows for pairs that have none yet
//   - advance: move the frozen clock forward by a duration string
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - streak: consecutive completed days ending today
//   - total_completions: completed records in a trailing window
//   - history_days: number of entries the history view returns
//   - history_count: one task's completed count on one history date
//   - day_flag: a pair's flag (or absence) in a day snapshot
//   - last_done: a pair's most recent completion before a cutoff date
//
// # Deterministic Execution
//
// Every scenario runs against a fresh in-memory ledger with a frozen
// clock (testutil.FrozenClock), so repeated runs observe identical
// views and golden snapshots stay stable.
//
// # Usage
//
// Load a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/streak_boundary.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Execute it:
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
