package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ritualhq/ritual/internal/civil"
)

// Scenario defines one conformance scenario: a fixed clock date, a
// sequence of ledger writes, and assertions over the derived views.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Today pins the frozen clock, formatted 2006-01-02.
	Today string `yaml:"today"`

	// Steps are applied in order against a fresh ledger.
	// A scenario with no steps asserts over an empty ledger.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final views.
	// Supported types: streak, total_completions, history_days,
	// history_count, day_flag, last_done.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scenario action. Exactly one of the fields must be set.
type Step struct {
	Upsert *UpsertStep `yaml:"upsert,omitempty"`
	Toggle *ToggleStep `yaml:"toggle,omitempty"`
	Seed   *SeedStep   `yaml:"seed,omitempty"`

	// Advance moves the frozen clock forward by a duration string
	// (e.g. "24h"). Later writes and the final assertions observe the
	// moved clock.
	Advance string `yaml:"advance,omitempty"`
}

// UpsertStep writes one completion flag.
// An omitted completed field writes an uncompleted record.
type UpsertStep struct {
	Date      string `yaml:"date"`
	Task      string `yaml:"task"`
	Activity  string `yaml:"activity"`
	Completed bool   `yaml:"completed,omitempty"`
}

// ToggleStep flips one completion flag.
type ToggleStep struct {
	Date     string `yaml:"date"`
	Task     string `yaml:"task"`
	Activity string `yaml:"activity"`

	// Want, when set, is checked against the state Toggle reports back.
	Want *bool `yaml:"want,omitempty"`
}

// SeedStep inserts uncompleted rows for pairs that have none yet.
// Existing rows keep their flags.
type SeedStep struct {
	Date  string     `yaml:"date"`
	Pairs []SeedPair `yaml:"pairs"`
}

// SeedPair names one (task, activity) combination to seed.
type SeedPair struct {
	Task     string `yaml:"task"`
	Activity string `yaml:"activity"`
}

// Assertion validates one derived view after all steps have run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "streak": consecutive completed days ending today
	// - "total_completions": completed records in the trailing window
	// - "history_days": number of entries the history view returns
	// - "history_count": one task's completed count on one history date
	// - "day_flag": one pair's flag in a day snapshot
	// - "last_done": one pair's most recent completion before a cutoff
	Type string `yaml:"type"`

	// Days is the trailing window length (used by total_completions,
	// history_days, history_count).
	Days int `yaml:"days,omitempty"`

	// Date is the day under test (history_count, day_flag) or the
	// exclusive cutoff (last_done).
	Date string `yaml:"date,omitempty"`

	// Task and Activity select a pair (history_count uses task only).
	Task     string `yaml:"task,omitempty"`
	Activity string `yaml:"activity,omitempty"`

	// Want is the expected count (streak, total_completions,
	// history_days, history_count).
	Want int `yaml:"want,omitempty"`

	// Completed is the expected flag (used by day_flag).
	Completed *bool `yaml:"completed,omitempty"`

	// WantDate is the expected completion date (used by last_done).
	WantDate string `yaml:"want_date,omitempty"`

	// Absent expects the pair (day_flag, last_done) or the date
	// (history_count) to be missing from the view.
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertStreak       = "streak"
	AssertTotal        = "total_completions"
	AssertHistoryDays  = "history_days"
	AssertHistoryCount = "history_count"
	AssertDayFlag      = "day_flag"
	AssertLastDone     = "last_done"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Today == "" {
		return fmt.Errorf("today is required")
	}
	if !civil.IsDate(s.Today) {
		return fmt.Errorf("today must be formatted %s, got %q", civil.DateLayout, s.Today)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	// Validate steps (a scenario may have none)
	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step carries exactly one action with
// well-formed fields.
func validateStep(index int, s *Step) error {
	actions := 0
	if s.Upsert != nil {
		actions++
	}
	if s.Toggle != nil {
		actions++
	}
	if s.Seed != nil {
		actions++
	}
	if s.Advance != "" {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one of upsert, toggle, seed, advance is required", index)
	}

	switch {
	case s.Upsert != nil:
		if err := validateStepKey(s.Upsert.Date, s.Upsert.Task, s.Upsert.Activity); err != nil {
			return fmt.Errorf("steps[%d].upsert: %w", index, err)
		}
	case s.Toggle != nil:
		if err := validateStepKey(s.Toggle.Date, s.Toggle.Task, s.Toggle.Activity); err != nil {
			return fmt.Errorf("steps[%d].toggle: %w", index, err)
		}
	case s.Seed != nil:
		if s.Seed.Date == "" {
			return fmt.Errorf("steps[%d].seed: date is required", index)
		}
		if !civil.IsDate(s.Seed.Date) {
			return fmt.Errorf("steps[%d].seed: date must be formatted %s, got %q", index, civil.DateLayout, s.Seed.Date)
		}
		if len(s.Seed.Pairs) == 0 {
			return fmt.Errorf("steps[%d].seed: pairs list is required and must be non-empty", index)
		}
		for j, p := range s.Seed.Pairs {
			if p.Task == "" || p.Activity == "" {
				return fmt.Errorf("steps[%d].seed.pairs[%d]: task and activity are required", index, j)
			}
		}
	case s.Advance != "":
		d, err := time.ParseDuration(s.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d].advance: invalid duration %q", index, s.Advance)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d].advance: duration must be positive, got %q", index, s.Advance)
		}
	}

	return nil
}

// validateStepKey checks the shared date/task/activity fields of
// upsert and toggle steps.
func validateStepKey(date, task, activity string) error {
	if date == "" {
		return fmt.Errorf("date is required")
	}
	if !civil.IsDate(date) {
		return fmt.Errorf("date must be formatted %s, got %q", civil.DateLayout, date)
	}
	if task == "" {
		return fmt.Errorf("task is required")
	}
	if activity == "" {
		return fmt.Errorf("activity is required")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStreak:
		if a.Want < 0 {
			return fmt.Errorf("assertions[%d]: want must be non-negative for streak", index)
		}
	case AssertTotal:
		if a.Days < 1 {
			return fmt.Errorf("assertions[%d]: days must be at least 1 for total_completions", index)
		}
		if a.Want < 0 {
			return fmt.Errorf("assertions[%d]: want must be non-negative for total_completions", index)
		}
	case AssertHistoryDays:
		if a.Days < 1 {
			return fmt.Errorf("assertions[%d]: days must be at least 1 for history_days", index)
		}
		if a.Want < 0 {
			return fmt.Errorf("assertions[%d]: want must be non-negative for history_days", index)
		}
	case AssertHistoryCount:
		if a.Days < 1 {
			return fmt.Errorf("assertions[%d]: days must be at least 1 for history_count", index)
		}
		if !civil.IsDate(a.Date) {
			return fmt.Errorf("assertions[%d]: a valid date is required for history_count", index)
		}
		if !a.Absent && a.Task == "" {
			return fmt.Errorf("assertions[%d]: task is required for history_count", index)
		}
	case AssertDayFlag:
		if !civil.IsDate(a.Date) {
			return fmt.Errorf("assertions[%d]: a valid date is required for day_flag", index)
		}
		if a.Task == "" || a.Activity == "" {
			return fmt.Errorf("assertions[%d]: task and activity are required for day_flag", index)
		}
		if a.Absent && a.Completed != nil {
			return fmt.Errorf("assertions[%d]: completed and absent are mutually exclusive for day_flag", index)
		}
		if !a.Absent && a.Completed == nil {
			return fmt.Errorf("assertions[%d]: completed is required for day_flag unless absent is set", index)
		}
	case AssertLastDone:
		if !civil.IsDate(a.Date) {
			return fmt.Errorf("assertions[%d]: a valid date is required for last_done", index)
		}
		if a.Task == "" || a.Activity == "" {
			return fmt.Errorf("assertions[%d]: task and activity are required for last_done", index)
		}
		if a.Absent && a.WantDate != "" {
			return fmt.Errorf("assertions[%d]: want_date and absent are mutually exclusive for last_done", index)
		}
		if !a.Absent && !civil.IsDate(a.WantDate) {
			return fmt.Errorf("assertions[%d]: a valid want_date is required for last_done unless absent is set", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
