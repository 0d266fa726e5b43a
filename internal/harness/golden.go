package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ritualhq/ritual/internal/ledger"
)

// snapshotWindowDays is the trailing window captured in final
// snapshots, matching the tracker's default history window.
const snapshotWindowDays = 30

// Snapshot captures the derived views after a scenario execution.
// encoding/json sorts map keys, so marshaled snapshots are
// deterministic and safe for golden comparison.
type Snapshot struct {
	Scenario string             `json:"scenario"`
	Today    string             `json:"today"`
	Streak   int                `json:"streak"`
	Total    int                `json:"total_completions"`
	History  []HistoryDay       `json:"history"`
	Day      ledger.DaySnapshot `json:"day"`
}

// HistoryDay is one history entry in a snapshot.
type HistoryDay struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

// RunWithGolden executes a scenario and compares its final snapshot
// against a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for the views a scenario
// must produce: they catch shape regressions the scenario's own
// assertions don't spell out.
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's final snapshot against a
// golden file. This is useful when you've already run a scenario and
// want to compare the result without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	if result.Final == nil {
		return fmt.Errorf("result carries no final snapshot")
	}

	data, err := json.MarshalIndent(result.Final, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
