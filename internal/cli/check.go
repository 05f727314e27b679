package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/suitecheck/internal/harness"
	"github.com/roach88/suitecheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Plan     string   // YAML plan file
	Checks   []string // overrides plan checks
	Seed     int64
	Episodes int
	MaxSteps int
	Database string // persist results when set
	Golden   string // golden file for the check trace
	Update   bool   // rewrite the golden file

	runIDs store.RunIDGenerator
}

// CheckOutput is the JSON payload of the check command.
type CheckOutput struct {
	RunID  string          `json:"run_id,omitempty"`
	Result *harness.Result `json:"result"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts, runIDs: store.UUIDv7Generator{}}

	cmd := &cobra.Command{
		Use:   "check [selector...]",
		Short: "Run conformance checks",
		Long: `Run conformance checks against registered tasks.

Each selected task is checked for named model entities, camera count,
normalized controls (benchmarking tasks only), timestep conformance over a
seeded random-policy run, seed determinism, and reward visualization.

Selectors override the plan's task list. Flags override plan values.

Exit codes:
  0 - All checks passed
  1 - One or more checks failed, or the golden trace differs
  2 - Command error (bad plan, unknown task, database error, etc.)

Examples:
  suitecheck check
  suitecheck check cartpole --seed 3
  suitecheck check --plan plans/smoke.yaml --db runs.db
  suitecheck check benchmarking --checks conformance,determinism --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Plan, "plan", "", "YAML check plan")
	cmd.Flags().StringSliceVar(&opts.Checks, "checks", nil, "checks to run (default: all)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "task and policy seed")
	cmd.Flags().IntVar(&opts.Episodes, "episodes", 0, "episodes per trajectory")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "step cap per episode")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to record the run in")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden file for the check trace")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite the golden file")

	return cmd
}

// buildPlan merges the plan file, selectors and flags.
func buildPlan(opts *CheckOptions, selectors []string, cmd *cobra.Command) (*harness.Plan, error) {
	plan := harness.DefaultPlan()
	if opts.Plan != "" {
		p, err := harness.LoadPlan(opts.Plan)
		if err != nil {
			return nil, err
		}
		plan = p
	}
	if len(selectors) > 0 {
		plan.Tasks = selectors
	}
	if len(opts.Checks) > 0 {
		plan.Checks = nil
		for _, c := range opts.Checks {
			plan.Checks = append(plan.Checks, harness.CheckName(c))
		}
	}
	if cmd.Flags().Changed("seed") {
		plan.Seed = opts.Seed
	}
	if cmd.Flags().Changed("episodes") {
		plan.Episodes = opts.Episodes
	}
	if cmd.Flags().Changed("max-steps") {
		plan.MaxStepsPerEpisode = opts.MaxSteps
	}
	return plan, nil
}

func runCheck(opts *CheckOptions, selectors []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	reg, err := opts.loadRegistry(f)
	if err != nil {
		return err
	}

	plan, err := buildPlan(opts, selectors, cmd)
	if err != nil {
		_ = f.Error(ErrCodePlan, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid plan", err)
	}

	f.VerboseLog("Running plan %s over %v (seed %d)", plan.Name, plan.Tasks, plan.Seed)
	result, err := harness.Run(reg, plan, harness.WithLogger(f.Logger()))
	if err != nil {
		_ = f.Error(ErrCodePlan, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid plan", err)
	}

	out := CheckOutput{Result: result}
	if opts.Database != "" {
		runID, err := recordRun(opts.Database, opts.runIDs, result)
		if err != nil {
			_ = f.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		out.RunID = runID
		f.VerboseLog("Recorded run %s in %s", runID, opts.Database)
	}

	goldenOK := true
	if opts.Golden != "" {
		goldenOK, err = checkGolden(opts.Golden, opts.Update, result)
		if err != nil {
			_ = f.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "golden comparison failed", err)
		}
	}

	if opts.Format != "json" {
		printCheckText(cmd, out)
	}

	if !goldenOK {
		msg := fmt.Sprintf("golden file mismatch: %s (run with --update to regenerate)", opts.Golden)
		if err := f.Error(ErrCodeGoldenDiffer, msg, out); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "check trace does not match golden file")
	}
	if opts.Format == "json" {
		if err := f.Success(out); err != nil {
			return err
		}
	}
	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", len(result.Errors)))
	}
	return nil
}

func recordRun(path string, ids store.RunIDGenerator, result *harness.Result) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	runID := ids.Generate()
	if err := st.WriteResult(context.Background(), runID, result); err != nil {
		return "", err
	}
	return runID, nil
}

// checkGolden compares the result snapshot with the golden file, or
// rewrites the file when update is set.
func checkGolden(path string, update bool, result *harness.Result) (bool, error) {
	data, err := result.Snapshot()
	if err != nil {
		return false, fmt.Errorf("snapshot result: %w", err)
	}
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return false, fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return false, fmt.Errorf("failed to write golden file: %w", err)
		}
		return true, nil
	}
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(want, data), nil
}

func printCheckText(cmd *cobra.Command, out CheckOutput) {
	w := cmd.OutOrStdout()
	result := out.Result

	for _, tr := range result.Tasks {
		mark := "✓"
		if !tr.Passed() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", mark, tr.Task)
		for _, cr := range tr.Checks {
			if cr.Status == harness.StatusFail {
				fmt.Fprintf(w, "  %s: %s\n", cr.Check, cr.Error)
			}
		}
	}

	passed, failed, skipped := result.Counts()
	fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped (plan %s, seed %d)\n",
		passed, failed, skipped, result.Plan, result.Seed)
	if out.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", out.RunID)
	}
}
