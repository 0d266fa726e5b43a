// Package catalog loads the task/activity catalog from CUE.
//
// The catalog supplies the set of valid task and activity identifiers and
// their display metadata. The ledger itself never validates against it;
// callers that want to reject unknown keys check membership here first.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
)

//go:embed default.cue
var defaultCUE []byte

// Activity is one concrete action within a task.
type Activity struct {
	ID    string
	Title string
	Level int
}

// Task is a coarse category of recurring activity.
type Task struct {
	ID          string
	Title       string
	Icon        string
	Description string
	Activities  []Activity
}

// Catalog is an immutable set of tasks and their activities.
type Catalog struct {
	tasks map[string]Task
}

// ParseError is a catalog parse failure with source position.
type ParseError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(defaultCUE, cue.Filename("default.cue"))
	c, err := parseCatalog(v)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return parseCatalog(v)
}

// Tasks returns all tasks sorted by ID.
func (c *Catalog) Tasks() []Task {
	tasks := make([]Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// Task looks up a task by ID.
func (c *Catalog) Task(id string) (Task, bool) {
	t, ok := c.tasks[norm.NFC.String(id)]
	return t, ok
}

// Has reports whether the (task, activity) pair exists in the catalog.
func (c *Catalog) Has(task, activity string) bool {
	t, ok := c.tasks[norm.NFC.String(task)]
	if !ok {
		return false
	}
	activity = norm.NFC.String(activity)
	for _, a := range t.Activities {
		if a.ID == activity {
			return true
		}
	}
	return false
}

// Activities returns a task's activities sorted by level then ID, or
// false if the task is unknown.
func (c *Catalog) Activities(task string) ([]Activity, bool) {
	t, ok := c.tasks[norm.NFC.String(task)]
	if !ok {
		return nil, false
	}
	return t.Activities, true
}

// Pairs returns every (task, activity) pair in the catalog, ordered by
// task then activity. Used to seed a day's rows.
func (c *Catalog) Pairs() [][2]string {
	var pairs [][2]string
	for _, t := range c.Tasks() {
		for _, a := range t.Activities {
			pairs = append(pairs, [2]string{t.ID, a.ID})
		}
	}
	return pairs
}

func parseCatalog(v cue.Value) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	catVal := v.LookupPath(cue.ParsePath("catalog"))
	if !catVal.Exists() {
		return nil, &ParseError{
			Field:   "catalog",
			Message: "catalog is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := catVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	tasks := make(map[string]Task)
	for iter.Next() {
		id := norm.NFC.String(iter.Label())
		task, err := parseTask(id, iter.Value())
		if err != nil {
			return nil, err
		}
		tasks[id] = task
	}

	if len(tasks) == 0 {
		return nil, &ParseError{
			Field:   "catalog",
			Message: "at least one task is required",
			Pos:     catVal.Pos(),
		}
	}

	return &Catalog{tasks: tasks}, nil
}

func parseTask(id string, v cue.Value) (Task, error) {
	task := Task{ID: id}

	titleVal := v.LookupPath(cue.ParsePath("title"))
	if !titleVal.Exists() {
		return task, &ParseError{
			Field:   fmt.Sprintf("catalog.%s.title", id),
			Message: "title is required",
			Pos:     v.Pos(),
		}
	}
	title, err := titleVal.String()
	if err != nil {
		return task, formatCUEError(err)
	}
	task.Title = title

	// Icon and description are optional display metadata
	if iconVal := v.LookupPath(cue.ParsePath("icon")); iconVal.Exists() {
		icon, err := iconVal.String()
		if err != nil {
			return task, formatCUEError(err)
		}
		task.Icon = icon
	}
	if descVal := v.LookupPath(cue.ParsePath("description")); descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return task, formatCUEError(err)
		}
		task.Description = desc
	}

	actVal := v.LookupPath(cue.ParsePath("activities"))
	if !actVal.Exists() {
		return task, &ParseError{
			Field:   fmt.Sprintf("catalog.%s.activities", id),
			Message: "activities are required",
			Pos:     v.Pos(),
		}
	}

	actIter, err := actVal.Fields()
	if err != nil {
		return task, formatCUEError(err)
	}
	for actIter.Next() {
		actID := norm.NFC.String(actIter.Label())
		activity, err := parseActivity(id, actID, actIter.Value())
		if err != nil {
			return task, err
		}
		task.Activities = append(task.Activities, activity)
	}

	if len(task.Activities) == 0 {
		return task, &ParseError{
			Field:   fmt.Sprintf("catalog.%s.activities", id),
			Message: "at least one activity is required",
			Pos:     actVal.Pos(),
		}
	}

	sort.Slice(task.Activities, func(i, j int) bool {
		a, b := task.Activities[i], task.Activities[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.ID < b.ID
	})

	return task, nil
}

func parseActivity(taskID, id string, v cue.Value) (Activity, error) {
	activity := Activity{ID: id}

	titleVal := v.LookupPath(cue.ParsePath("title"))
	if !titleVal.Exists() {
		return activity, &ParseError{
			Field:   fmt.Sprintf("catalog.%s.activities.%s.title", taskID, id),
			Message: "title is required",
			Pos:     v.Pos(),
		}
	}
	title, err := titleVal.String()
	if err != nil {
		return activity, formatCUEError(err)
	}
	activity.Title = title

	levelVal := v.LookupPath(cue.ParsePath("level"))
	if !levelVal.Exists() {
		return activity, &ParseError{
			Field:   fmt.Sprintf("catalog.%s.activities.%s.level", taskID, id),
			Message: "level is required",
			Pos:     v.Pos(),
		}
	}
	level, err := levelVal.Int64()
	if err != nil {
		return activity, formatCUEError(err)
	}
	if level < 1 || level > 3 {
		return activity, &ParseError{
			Field:   fmt.Sprintf("catalog.%s.activities.%s.level", taskID, id),
			Message: fmt.Sprintf("level must be between 1 and 3, got %d", level),
			Pos:     levelVal.Pos(),
		}
	}
	activity.Level = int(level)

	return activity, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &ParseError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
