package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// PracticeOptions holds flags for the practice command.
type PracticeOptions struct {
	*RootOptions
	List bool
	Pass bool
	Fail bool
}

// ProblemView is one practice problem in command output.
type ProblemView struct {
	Name      string `json:"name"`
	Passed    bool   `json:"passed"`
	UpdatedAt string `json:"updated_at"`
}

// PracticeListResult is the practice --list payload.
type PracticeListResult struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Problems []ProblemView `json:"problems"`
}

// PracticeResult reports one problem's stored state.
type PracticeResult struct {
	Problem string `json:"problem"`
	Passed  bool   `json:"passed"`
}

// NewPracticeCommand creates the practice command.
func NewPracticeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PracticeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "practice [problem]",
		Short: "Track practice problems",
		Long: `Track coding-practice problems as a pass/fail set.

With a problem name the command flips its pass flag; an unknown problem
starts as not-passed, so the first toggle records a pass. --pass and
--fail write an explicit state instead of flipping. --list shows the
whole set.

Examples:
  ritual practice two-sum
  ritual practice two-sum --fail
  ritual practice --list`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPractice(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.List, "list", false, "list all recorded problems")
	cmd.Flags().BoolVar(&opts.Pass, "pass", false, "record the problem as passed")
	cmd.Flags().BoolVar(&opts.Fail, "fail", false, "record the problem as failed")

	return cmd
}

func runPractice(opts *PracticeOptions, args []string, cmd *cobra.Command) error {
	if opts.Pass && opts.Fail {
		return NewExitError(ExitCommandError, "--pass and --fail are mutually exclusive")
	}
	if opts.List && len(args) > 0 {
		return NewExitError(ExitCommandError, "--list takes no problem argument")
	}
	if !opts.List && len(args) == 0 {
		return NewExitError(ExitCommandError, "a problem name is required (or use --list)")
	}

	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if opts.List {
		return runPracticeList(ctx, app, formatter, cmd.OutOrStdout())
	}

	problem := args[0]
	var passed bool
	if opts.Pass || opts.Fail {
		passed = opts.Pass
		if err := app.Store.UpsertProblem(ctx, problem, passed); err != nil {
			return wrapLedgerError("failed to record problem", err)
		}
	} else {
		passed, err = app.Store.ToggleProblem(ctx, problem)
		if err != nil {
			return wrapLedgerError("failed to toggle problem", err)
		}
	}

	app.Logger.Debug("problem recorded", "problem", problem, "passed", passed)

	result := PracticeResult{Problem: problem, Passed: passed}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if passed {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s passed\n", problem)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✗ %s failed\n", problem)
	}
	return nil
}

func runPracticeList(ctx context.Context, app *App, formatter *OutputFormatter, w io.Writer) error {
	problems, err := app.Store.Problems(ctx)
	if err != nil {
		return wrapLedgerError("failed to list problems", err)
	}

	result := PracticeListResult{Total: len(problems), Problems: make([]ProblemView, 0, len(problems))}
	for _, p := range problems {
		if p.Passed {
			result.Passed++
		}
		result.Problems = append(result.Problems, ProblemView{Name: p.Name, Passed: p.Passed, UpdatedAt: p.UpdatedAt})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Total == 0 {
		fmt.Fprintln(w, "No practice problems recorded.")
		return nil
	}
	fmt.Fprintf(w, "Practice problems: %d total, %d passed\n\n", result.Total, result.Passed)
	for _, p := range result.Problems {
		mark := "✗"
		if p.Passed {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %s  (updated %s)\n", mark, p.Name, p.UpdatedAt)
	}
	return nil
}
