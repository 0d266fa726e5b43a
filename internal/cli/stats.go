package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Days int
}

// StatsResult is the stats command payload.
type StatsResult struct {
	Days             int `json:"days"`
	Streak           int `json:"streak"`
	TotalCompletions int `json:"total_completions"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streak and completion totals",
		Long: `Show the current streak and the completion total for a window.

The streak counts consecutive days ending today that each have at least
one completed record; a day with only not-done records breaks it. The
total counts completed records in the window, so several completions on
one day all count.

Examples:
  ritual stats
  ritual stats --days 7
  ritual stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "window size in days (default from config)")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
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
	streak, err := app.Engine.Streak(ctx)
	if err != nil {
		return wrapLedgerError("failed to compute streak", err)
	}
	total, err := app.Engine.TotalCompletions(ctx, days)
	if err != nil {
		return wrapLedgerError("failed to count completions", err)
	}

	app.Logger.Debug("stats computed", "days", days, "streak", streak, "total", total)

	result := StatsResult{Days: days, Streak: streak, TotalCompletions: total}
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Streak: %d day(s)\n", result.Streak)
	fmt.Fprintf(w, "Completions: %d in the last %d days\n", result.TotalCompletions, result.Days)
	return nil
}
