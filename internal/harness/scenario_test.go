package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes scenario YAML to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Scenario for loader validation"
today: "2025-01-10"
steps:
  - upsert: { date: "2025-01-10", task: reading, activity: p1, completed: true }
  - toggle: { date: "2025-01-10", task: exercise, activity: p2, want: true }
  - seed:
      date: "2025-01-09"
      pairs:
        - { task: reading, activity: p1 }
  - advance: "24h"
assertions:
  - type: streak
    want: 1
  - type: day_flag
    date: "2025-01-10"
    task: reading
    activity: p1
    completed: true
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Scenario for loader validation", scenario.Description)
	assert.Equal(t, "2025-01-10", scenario.Today)
	assert.Len(t, scenario.Steps, 4)
	assert.Len(t, scenario.Assertions, 2)

	require.NotNil(t, scenario.Steps[0].Upsert)
	assert.Equal(t, "reading", scenario.Steps[0].Upsert.Task)
	assert.True(t, scenario.Steps[0].Upsert.Completed)

	require.NotNil(t, scenario.Steps[1].Toggle)
	require.NotNil(t, scenario.Steps[1].Toggle.Want)
	assert.True(t, *scenario.Steps[1].Toggle.Want)

	require.NotNil(t, scenario.Steps[2].Seed)
	assert.Len(t, scenario.Steps[2].Seed.Pairs, 1)

	assert.Equal(t, "24h", scenario.Steps[3].Advance)

	assert.Equal(t, AssertStreak, scenario.Assertions[0].Type)
	assert.Equal(t, 1, scenario.Assertions[0].Want)
	require.NotNil(t, scenario.Assertions[1].Completed)
	assert.True(t, *scenario.Assertions[1].Completed)
}

func TestLoadScenario_NoStepsIsValid(t *testing.T) {
	path := writeScenario(t, `
name: empty
description: "Assertions over an empty ledger"
today: "2025-01-10"
assertions:
  - type: streak
    want: 0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Empty(t, scenario.Steps)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Typo in assertions key"
today: "2025-01-10"
assertion:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := writeScenario(t, `
description: "Missing name"
today: "2025-01-10"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_MissingDescription(t *testing.T) {
	path := writeScenario(t, `
name: test
today: "2025-01-10"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestLoadScenario_MissingToday(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Missing today"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "today is required")
}

func TestLoadScenario_MalformedToday(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Malformed today"
today: "2025-1-5"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "today must be formatted")
}

func TestLoadScenario_MissingAssertions(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "No assertions"
today: "2025-01-10"
steps:
  - upsert: { date: "2025-01-10", task: reading, activity: p1, completed: true }
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions list is required")
}

func TestLoadScenario_StepWithNoAction(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Empty step"
today: "2025-01-10"
steps:
  - {}
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]: exactly one of upsert, toggle, seed, advance is required")
}

func TestLoadScenario_StepWithTwoActions(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Step carries two actions"
today: "2025-01-10"
steps:
  - upsert: { date: "2025-01-10", task: reading, activity: p1 }
    advance: "24h"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]: exactly one of upsert, toggle, seed, advance is required")
}

func TestLoadScenario_UpsertMalformedDate(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Bad upsert date"
today: "2025-01-10"
steps:
  - upsert: { date: "2025/01/10", task: reading, activity: p1 }
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0].upsert: date must be formatted")
}

func TestLoadScenario_ToggleMissingTask(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Toggle without task"
today: "2025-01-10"
steps:
  - toggle: { date: "2025-01-10", activity: p1 }
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0].toggle: task is required")
}

func TestLoadScenario_SeedEmptyPairs(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Seed without pairs"
today: "2025-01-10"
steps:
  - seed:
      date: "2025-01-10"
      pairs: []
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0].seed: pairs list is required")
}

func TestLoadScenario_SeedIncompletePair(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Seed pair missing activity"
today: "2025-01-10"
steps:
  - seed:
      date: "2025-01-10"
      pairs:
        - { task: reading }
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0].seed.pairs[0]: task and activity are required")
}

func TestLoadScenario_AdvanceInvalidDuration(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Advance with garbage duration"
today: "2025-01-10"
steps:
  - advance: "one day"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `steps[0].advance: invalid duration "one day"`)
}

func TestLoadScenario_AdvanceNegativeDuration(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Advance must move forward"
today: "2025-01-10"
steps:
  - advance: "-24h"
assertions:
  - type: streak
    want: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0].advance: duration must be positive")
}

func TestLoadScenario_AssertionMissingType(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Assertion without type"
today: "2025-01-10"
assertions:
  - want: 3
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: type is required")
}

func TestLoadScenario_AssertionUnknownType(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "Assertion with unknown type"
today: "2025-01-10"
assertions:
  - type: longest_streak
    want: 3
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `assertions[0]: unknown assertion type "longest_streak"`)
}

func TestLoadScenario_TotalRequiresDays(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "total_completions without days"
today: "2025-01-10"
assertions:
  - type: total_completions
    want: 3
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: days must be at least 1 for total_completions")
}

func TestLoadScenario_HistoryCountRequiresTask(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "history_count without task"
today: "2025-01-10"
assertions:
  - type: history_count
    days: 30
    date: "2025-01-10"
    want: 1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: task is required for history_count")
}

func TestLoadScenario_DayFlagRequiresCompleted(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "day_flag without completed or absent"
today: "2025-01-10"
assertions:
  - type: day_flag
    date: "2025-01-10"
    task: reading
    activity: p1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: completed is required for day_flag")
}

func TestLoadScenario_DayFlagCompletedAbsentConflict(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "day_flag with both completed and absent"
today: "2025-01-10"
assertions:
  - type: day_flag
    date: "2025-01-10"
    task: reading
    activity: p1
    completed: false
    absent: true
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: completed and absent are mutually exclusive for day_flag")
}

func TestLoadScenario_LastDoneRequiresWantDate(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "last_done without want_date or absent"
today: "2025-01-10"
assertions:
  - type: last_done
    date: "2025-01-10"
    task: reading
    activity: p1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: a valid want_date is required for last_done")
}

func TestLoadScenario_LastDoneWantDateAbsentConflict(t *testing.T) {
	path := writeScenario(t, `
name: test
description: "last_done with both want_date and absent"
today: "2025-01-10"
assertions:
  - type: last_done
    date: "2025-01-10"
    task: reading
    activity: p1
    want_date: "2025-01-08"
    absent: true
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions[0]: want_date and absent are mutually exclusive for last_done")
}
