package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritualhq/ritual/internal/ledger"
)

func TestRunWithGolden_EmptyLedger(t *testing.T) {
	scenario := &Scenario{
		Name:        "golden_empty",
		Description: "Snapshot of an untouched ledger",
		Today:       "2025-01-05",
		Assertions: []Assertion{
			{Type: AssertStreak, Want: 0},
		},
	}

	// First run with -update to create the golden file:
	//   go test ./internal/harness -run TestRunWithGolden_EmptyLedger -update
	err := RunWithGolden(t, scenario)
	require.NoError(t, err)
}

func TestRunWithGolden_MixedDay(t *testing.T) {
	scenario := &Scenario{
		Name:        "golden_mixed_day",
		Description: "Snapshot with mixed flags across two days",
		Today:       "2025-01-12",
		Steps: []Step{
			{Upsert: &UpsertStep{Date: "2025-01-12", Task: "reading", Activity: "p1", Completed: true}},
			{Upsert: &UpsertStep{Date: "2025-01-12", Task: "reading", Activity: "p2", Completed: false}},
			{Upsert: &UpsertStep{Date: "2025-01-11", Task: "exercise", Activity: "p1", Completed: true}},
			{Toggle: &ToggleStep{Date: "2025-01-12", Task: "exercise", Activity: "p1", Want: boolPtr(true)}},
		},
		Assertions: []Assertion{
			{Type: AssertStreak, Want: 2},
			{Type: AssertTotal, Days: 30, Want: 3},
		},
	}

	err := RunWithGolden(t, scenario)
	require.NoError(t, err)
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario := &Scenario{
		Name:        "golden_seeded",
		Description: "Snapshot after seeding and one toggle",
		Today:       "2025-02-01",
		Steps: []Step{
			{Seed: &SeedStep{
				Date: "2025-02-01",
				Pairs: []SeedPair{
					{Task: "reading", Activity: "p1"},
					{Task: "caring", Activity: "p2"},
				},
			}},
			{Toggle: &ToggleStep{Date: "2025-02-01", Task: "reading", Activity: "p1", Want: boolPtr(true)}},
		},
		Assertions: []Assertion{
			{Type: AssertStreak, Want: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass)

	err = AssertGolden(t, "golden_seeded", result)
	require.NoError(t, err)
}

func TestAssertGolden_NoSnapshot(t *testing.T) {
	err := AssertGolden(t, "missing", &Result{Pass: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no final snapshot")
}

func TestSnapshotJSONDeterminism(t *testing.T) {
	// Verify that repeated marshals produce identical bytes.
	// Map keys sort during encoding, so snapshot JSON is stable.
	snapshot := &Snapshot{
		Scenario: "determinism",
		Today:    "2025-01-12",
		Streak:   2,
		Total:    3,
		History: []HistoryDay{
			{Date: "2025-01-12", Counts: map[string]int{"reading": 1, "exercise": 2}},
		},
		Day: ledger.DaySnapshot{
			"reading": {"p1": true, "p2": false},
		},
	}

	json1, err := json.MarshalIndent(snapshot, "", "  ")
	require.NoError(t, err)

	json2, err := json.MarshalIndent(snapshot, "", "  ")
	require.NoError(t, err)

	require.Equal(t, json1, json2, "snapshot JSON must be deterministic")
}

func TestSnapshotJSONShape(t *testing.T) {
	snapshot := &Snapshot{
		Scenario: "shape",
		Today:    "2025-01-12",
		History:  []HistoryDay{},
		Day:      ledger.DaySnapshot{},
	}

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	jsonStr := string(data)
	assert.Contains(t, jsonStr, `"scenario":"shape"`)
	assert.Contains(t, jsonStr, `"today":"2025-01-12"`)
	assert.Contains(t, jsonStr, `"total_completions":0`)
	assert.Contains(t, jsonStr, `"history":[]`)
	assert.Contains(t, jsonStr, `"day":{}`)
}
