package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scvi-aria/deko/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []store.ReplayResult `json:"runs"`
	TotalRuns        int                  `json:"total_runs"`
	AllDeterministic bool                 `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled runs and verify determinism",
		Long: `Replay display runs recorded with 'deko run --db'.

Each run is re-simulated on a manual clock: recorded orders are fed in at
their offsets and the engine is ticked at every recorded stage change. The run
is deterministic when the replay produces the same events, in the same seq
order, at the same offsets.

Exit codes:
  0 - All runs are deterministic
  1 - A replay diverged from its journal
  2 - Command error (database not found, unknown run, etc.)

Examples:
  deko replay --db ./deko.db
  deko replay --db ./deko.db --run 0192f0c4-...
  deko replay --db ./deko.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.ReplayResult
	if opts.RunID != "" {
		r, err := st.Replay(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", opts.RunID), err)
		}
		runs = []store.ReplayResult{r}
	} else {
		runs, err = st.ReplayAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay runs", err)
		}
	}

	result := ReplayResult{
		Runs:             runs,
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	for _, r := range runs {
		if !r.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	var cliErr *CLIError
	if !result.AllDeterministic {
		cliErr = &CLIError{
			Code:    "E_NONDETERMINISTIC",
			Message: "replay diverged from journal",
		}
	}
	if err := writeJSON(cmd.OutOrStdout(), result, cliErr); err != nil {
		return err
	}
	if cliErr != nil {
		return NewExitError(ExitFailure, cliErr.Message)
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	for _, r := range result.Runs {
		mark := "✓"
		if !r.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s): %d orders, %d dropped, %d transitions\n",
			mark, r.RunID, r.Vendor, r.Orders, r.Dropped, r.Transitions)
		if r.Mismatch != "" {
			fmt.Fprintf(w, "  %s\n", r.Mismatch)
		}
	}

	fmt.Fprintln(w)
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from journal")
	}
	fmt.Fprintf(w, "✓ All %d run(s) deterministic\n", result.TotalRuns)
	return nil
}
