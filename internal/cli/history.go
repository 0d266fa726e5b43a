package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Days int
}

// HistoryDayView is one day's per-task completed counts.
type HistoryDayView struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

// HistoryResult is the history command payload.
type HistoryResult struct {
	Days    int              `json:"days"`
	Entries []HistoryDayView `json:"entries"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show per-day completion counts",
		Long: `Show per-task completed counts for each active day in the window.

The view is sparse: only days with at least one record appear, newest
first. A day whose records are all not-done still counts as active and
shows zero completions.

Examples:
  ritual history
  ritual history --days 7
  ritual history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "window size in days (default from config)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	days := opts.Days
	if days == 0 {
		days = app.Config.History.DefaultDays
	}

	ctx := context.Background()
	entries, err := app.Engine.History(ctx, days)
	if err != nil {
		return wrapLedgerError("failed to compute history", err)
	}

	app.Logger.Debug("history computed", "days", days, "active_days", len(entries))

	result := HistoryResult{Days: days, Entries: make([]HistoryDayView, 0, len(entries))}
	for _, e := range entries {
		result.Entries = append(result.Entries, HistoryDayView{Date: e.Date, Counts: e.Counts})
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputHistoryText(cmd.OutOrStdout(), result)
	return nil
}

// outputHistoryText renders one line per active day, newest first.
func outputHistoryText(w io.Writer, result HistoryResult) {
	if len(result.Entries) == 0 {
		fmt.Fprintf(w, "No activity recorded in the last %d days.\n", result.Days)
		return
	}

	fmt.Fprintf(w, "History: last %d days, %d active day(s)\n\n", result.Days, len(result.Entries))
	for _, e := range result.Entries {
		fmt.Fprintf(w, "%s  %s\n", e.Date, formatCounts(e.Counts))
	}
}

// formatCounts renders a task→count map as "task=count" pairs in task order.
func formatCounts(counts map[string]int) string {
	tasks := make([]string, 0, len(counts))
	for task := range counts {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)

	parts := make([]string, 0, len(tasks))
	for _, task := range tasks {
		parts = append(parts, fmt.Sprintf("%s=%d", task, counts[task]))
	}
	return strings.Join(parts, ", ")
}
