package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritualhq/ritual/internal/civil"
)

// BackfillOptions holds flags for the backfill command.
type BackfillOptions struct {
	*RootOptions
	Undone bool
	Force  bool
}

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackfillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backfill <date> <task> <activity>",
		Short: "Record a completion for any date",
		Long: `Record a completion flag for an arbitrary date.

Writes the flag directly, overwriting any existing record for the key.
By default the entry is marked done; --undone records it as not done.
The pair must exist in the catalog unless --force is given, in which
case the key is written as-is and shows up under "today --all".

Examples:
  ritual backfill 2025-01-01 reading p1
  ritual backfill 2025-01-01 reading p1 --undone
  ritual backfill 2025-01-01 piano practice --force`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Undone, "undone", false, "record the entry as not done")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "skip catalog validation")

	return cmd
}

func runBackfill(opts *BackfillOptions, date, task, activity string, cmd *cobra.Command) error {
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

	if !civil.IsDate(date) {
		msg := fmt.Sprintf("invalid date %q: want YYYY-MM-DD", date)
		_ = formatter.Error(ErrCodeBadDate, msg, nil)
		return NewExitError(ExitInputError, msg)
	}
	if !opts.Force && !app.Catalog.Has(task, activity) {
		msg := fmt.Sprintf("unknown pair %s/%s: not in the catalog (use --force to record it anyway)", task, activity)
		_ = formatter.Error(ErrCodeUnknownPair, msg, nil)
		return NewExitError(ExitInputError, msg)
	}

	ctx := context.Background()
	completed := !opts.Undone
	if err := app.Store.Upsert(ctx, date, task, activity, completed); err != nil {
		return wrapLedgerError("failed to backfill", err)
	}

	app.Logger.Debug("backfilled", "date", date, "task", task, "activity", activity, "completed", completed, "forced", opts.Force)

	result := EntryResult{Date: date, Task: task, Activity: activity, Completed: completed}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if completed {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ recorded %s/%s done on %s\n", task, activity, date)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ recorded %s/%s not done on %s\n", task, activity, date)
	}
	return nil
}
