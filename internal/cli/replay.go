package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/suitecheck/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Task     string // optional - specific task only
}

// ReplayResult is the outcome of comparing recorded fingerprints.
type ReplayResult struct {
	Drifts     []store.Drift `json:"drifts"`
	Changed    int           `json:"changed"`
	Stable     int           `json:"stable"`
	NoBaseline int           `json:"no_baseline"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Compare the latest recorded trajectory fingerprints with earlier runs",
		Long: `Read the trajectory fingerprints recorded by "check --db" and compare the
two most recent runs of every task, seed, episode count and step cap.

A fingerprint that changed between runs means the environment or the policy
is no longer reproducible under the same seed.

Examples:
  suitecheck replay --db runs.db
  suitecheck replay --db runs.db --task cartpole/swingup --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run database (required)")
	cmd.Flags().StringVar(&opts.Task, "task", "", "only compare this task")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(opts.Database); err != nil {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	drifts, err := st.CompareLatest(context.Background())
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read fingerprints", err)
	}

	result := ReplayResult{Drifts: []store.Drift{}}
	for _, d := range drifts {
		if opts.Task != "" && d.Task != opts.Task {
			continue
		}
		result.Drifts = append(result.Drifts, d)
		switch {
		case d.Changed:
			result.Changed++
		case d.HasBaseline():
			result.Stable++
		default:
			result.NoBaseline++
		}
	}
	f.VerboseLog("compared %d trajectory configurations", len(result.Drifts))

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		printReplayText(cmd, result)
	}

	if result.Changed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d fingerprint(s) changed", result.Changed))
	}
	return nil
}

func printReplayText(cmd *cobra.Command, r ReplayResult) {
	w := cmd.OutOrStdout()
	if len(r.Drifts) == 0 {
		fmt.Fprintln(w, "No recorded fingerprints")
		return
	}
	for _, d := range r.Drifts {
		label := fmt.Sprintf("%s seed=%d episodes=%d max_steps=%d", d.Task, d.Seed, d.Episodes, d.MaxSteps)
		switch {
		case d.Changed:
			fmt.Fprintf(w, "✗ %s\n    %s (%s)\n -> %s (%s)\n", label, short(d.Previous), d.PreviousRun, short(d.Latest), d.LatestRun)
		case d.HasBaseline():
			fmt.Fprintf(w, "✓ %s %s\n", label, short(d.Latest))
		default:
			fmt.Fprintf(w, "· %s %s (no baseline)\n", label, short(d.Latest))
		}
	}
	fmt.Fprintf(w, "\n%d changed, %d stable, %d without baseline\n", r.Changed, r.Stable, r.NoBaseline)
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
