package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ritualhq/ritual/internal/catalog"
	"github.com/ritualhq/ritual/internal/ledger"
)

// TodayOptions holds flags for the today command.
type TodayOptions struct {
	*RootOptions
	All bool
}

// TodayActivity is one activity row in the today view.
type TodayActivity struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Level     int    `json:"level"`
	Completed bool   `json:"completed"`
	LastDone  string `json:"last_done,omitempty"`
}

// TodayTask groups the activities of one catalog task.
type TodayTask struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Icon       string          `json:"icon"`
	Activities []TodayActivity `json:"activities"`
}

// TodayExtra is a recorded entry whose key is outside the catalog,
// typically written by backfill --force.
type TodayExtra struct {
	Task      string `json:"task"`
	Activity  string `json:"activity"`
	Completed bool   `json:"completed"`
}

// TodayResult is the today command payload.
type TodayResult struct {
	Date   string       `json:"date"`
	Tasks  []TodayTask  `json:"tasks"`
	Extras []TodayExtra `json:"extras,omitempty"`
}

// NewTodayCommand creates the today command.
func NewTodayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TodayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's checklist, seeding missing rows",
		Long: `Show today's checklist, seeding missing rows first.

Seeding inserts a not-completed row for every catalog pair that has no
record today; existing flags are never touched, so the command is safe to
run repeatedly. Each activity that was ever completed on an earlier day
shows a "last done" hint.

Examples:
  ritual today
  ritual today --all
  ritual today --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToday(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "also list recorded entries outside the catalog")

	return cmd
}

func runToday(opts *TodayOptions, cmd *cobra.Command) error {
	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	today := app.Clock.Today()

	pairs := make([]ledger.Pair, 0)
	for _, p := range app.Catalog.Pairs() {
		pairs = append(pairs, ledger.Pair{Task: p[0], Activity: p[1]})
	}
	if err := app.Store.SeedDay(ctx, today, pairs); err != nil {
		return wrapLedgerError("failed to seed today", err)
	}

	day, err := app.Store.Day(ctx, today)
	if err != nil {
		return wrapLedgerError("failed to read day", err)
	}
	last, err := app.Store.LastCompleted(ctx, today)
	if err != nil {
		return wrapLedgerError("failed to read last completions", err)
	}

	result := buildTodayResult(app.Catalog, today, day, last, opts.All)
	app.Logger.Debug("today assembled", "date", today, "tasks", len(result.Tasks), "extras", len(result.Extras))

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputTodayText(cmd.OutOrStdout(), result)
	return nil
}

// buildTodayResult assembles the day view: the catalog layout with each
// pair's completion flag and last-done hint, plus (when includeExtras is
// set) any recorded keys outside the catalog.
func buildTodayResult(cat *catalog.Catalog, today string, day ledger.DaySnapshot, last ledger.LastDone, includeExtras bool) TodayResult {
	result := TodayResult{Date: today}

	for _, t := range cat.Tasks() {
		view := TodayTask{ID: t.ID, Title: t.Title, Icon: t.Icon}
		for _, a := range t.Activities {
			view.Activities = append(view.Activities, TodayActivity{
				ID:        a.ID,
				Title:     a.Title,
				Level:     a.Level,
				Completed: day[t.ID][a.ID],
				LastDone:  last[t.ID][a.ID],
			})
		}
		result.Tasks = append(result.Tasks, view)
	}

	if includeExtras {
		for task, activities := range day {
			for activity, completed := range activities {
				if cat.Has(task, activity) {
					continue
				}
				result.Extras = append(result.Extras, TodayExtra{
					Task:      task,
					Activity:  activity,
					Completed: completed,
				})
			}
		}
		sort.Slice(result.Extras, func(i, j int) bool {
			if result.Extras[i].Task != result.Extras[j].Task {
				return result.Extras[i].Task < result.Extras[j].Task
			}
			return result.Extras[i].Activity < result.Extras[j].Activity
		})
	}

	return result
}

// outputTodayText renders the checklist grouped by task.
func outputTodayText(w io.Writer, result TodayResult) {
	fmt.Fprintf(w, "Today: %s\n", result.Date)

	for _, t := range result.Tasks {
		fmt.Fprintf(w, "\n%s %s\n", t.Icon, t.Title)
		for _, a := range t.Activities {
			line := fmt.Sprintf("  [%s] %s  %s", checkMark(a.Completed), a.ID, a.Title)
			if a.LastDone != "" {
				line += fmt.Sprintf("  (last done %s)", a.LastDone)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(result.Extras) > 0 {
		fmt.Fprintf(w, "\nAlso recorded:\n")
		for _, e := range result.Extras {
			fmt.Fprintf(w, "  [%s] %s/%s\n", checkMark(e.Completed), e.Task, e.Activity)
		}
	}
}

// checkMark renders a completion flag as a checkbox fill.
func checkMark(completed bool) string {
	if completed {
		return "x"
	}
	return " "
}
