package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ToggleOptions holds flags for the toggle command.
type ToggleOptions struct {
	*RootOptions
	Date string
}

// EntryResult reports the stored state of one ledger entry.
type EntryResult struct {
	Date      string `json:"date"`
	Task      string `json:"task"`
	Activity  string `json:"activity"`
	Completed bool   `json:"completed"`
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToggleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "toggle <task> <activity>",
		Short: "Flip a completion flag",
		Long: `Flip the completion flag for a (task, activity) pair.

The pair must exist in the catalog; ad-hoc keys go through backfill
--force instead. With no --date the flag flips on today's row, creating
it if no record exists yet.

Examples:
  ritual toggle reading p1
  ritual toggle exercise p2 --date 2025-01-04`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "civil date to toggle (default today)")

	return cmd
}

func runToggle(opts *ToggleOptions, task, activity string, cmd *cobra.Command) error {
	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if !app.Catalog.Has(task, activity) {
		msg := fmt.Sprintf("unknown pair %s/%s: not in the catalog (use backfill --force for ad-hoc entries)", task, activity)
		_ = formatter.Error(ErrCodeUnknownPair, msg, nil)
		return NewExitError(ExitInputError, msg)
	}

	ctx := context.Background()
	date := opts.Date
	if date == "" {
		date = app.Clock.Today()
	}

	completed, err := app.Store.Toggle(ctx, date, task, activity)
	if err != nil {
		return wrapLedgerError("failed to toggle", err)
	}

	app.Logger.Debug("toggled", "date", date, "task", task, "activity", activity, "completed", completed)

	result := EntryResult{Date: date, Task: task, Activity: activity, Completed: completed}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if completed {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s/%s marked done for %s\n", task, activity, date)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ %s/%s marked not done for %s\n", task, activity, date)
	}
	return nil
}
