package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/harness"
	"github.com/roach88/suitecheck/internal/policy"
	"github.com/roach88/suitecheck/internal/suite"
	"github.com/roach88/suitecheck/internal/trace"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Episodes int
	MaxSteps int
	Seed     int64
}

// PlayStep is one printed TimeStep.
type PlayStep struct {
	Episode     int                  `json:"episode"`
	Index       int                  `json:"index"`
	StepType    string               `json:"step_type"`
	Reward      *float64             `json:"reward,omitempty"`
	Discount    *float64             `json:"discount,omitempty"`
	Observation map[string][]float64 `json:"observation"`
}

// PlayTask is the trajectory of one task.
type PlayTask struct {
	Task        string     `json:"task"`
	Fingerprint string     `json:"fingerprint"`
	Steps       []PlayStep `json:"steps"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play [selector...]",
		Short: "Step tasks with a random policy and print each timestep",
		Long: `Load tasks, drive them with a uniform random policy, and print the
reward, discount and observation of every timestep.

With no selector the cartpole swingup task is played. Use "benchmarking" to
iterate the benchmarking set. When --seed is omitted both the task and the
policy are seeded randomly.

Examples:
  suitecheck play
  suitecheck play benchmarking --max-steps 5
  suitecheck play pendulum/swingup --seed 0 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Episodes, "episodes", 1, "episodes per task")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 1000, "step cap per episode")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "task and policy seed (default: random)")

	return cmd
}

func runPlay(opts *PlayOptions, selectors []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	reg, err := opts.loadRegistry(f)
	if err != nil {
		return err
	}

	if len(selectors) == 0 {
		selectors = []string{"cartpole/swingup"}
	}
	ids, err := reg.Select(selectors...)
	if err != nil {
		_ = f.Error(ErrCodeUnknownTask, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid selector", err)
	}

	var seed *int64
	if cmd.Flags().Changed("seed") {
		seed = policy.Seed(opts.Seed)
	}

	played := make([]PlayTask, 0, len(ids))
	for _, id := range ids {
		pt, err := playTask(reg, id, seed, opts.Episodes, opts.MaxSteps)
		if err != nil {
			_ = f.Error(ErrCodeEnvironment, err.Error(), map[string]string{"task": id.String()})
			return WrapExitError(ExitCommandError, "environment failed", err)
		}
		if opts.Format != "json" {
			printPlayText(cmd.OutOrStdout(), pt)
		}
		played = append(played, pt)
	}

	if opts.Format == "json" {
		return f.Success(played)
	}
	return nil
}

func playTask(reg *suite.Registry, id suite.TaskID, seed *int64, episodes, maxSteps int) (PlayTask, error) {
	e, err := reg.Load(id.Domain, id.Task, suite.TaskOptions{Random: seed})
	if err != nil {
		return PlayTask{}, err
	}
	steps, err := harness.RecordTrajectory(e, policy.UniformRandom(e.ActionSpec(), seed), episodes, maxSteps)
	if err != nil {
		return PlayTask{}, fmt.Errorf("%s: %w", id, err)
	}
	fp, err := trace.Fingerprint(steps)
	if err != nil {
		return PlayTask{}, fmt.Errorf("%s: %w", id, err)
	}

	pt := PlayTask{Task: id.String(), Fingerprint: fp, Steps: make([]PlayStep, len(steps))}
	for i, s := range steps {
		pt.Steps[i] = PlayStep{
			Episode:     s.Episode,
			Index:       s.Index,
			StepType:    s.StepType.String(),
			Reward:      s.Reward,
			Discount:    s.Discount,
			Observation: observationMap(s.Obs),
		}
	}
	return pt, nil
}

func observationMap(obs env.Observation) map[string][]float64 {
	out := make(map[string][]float64, obs.Len())
	for _, k := range obs.Keys() {
		arr, _ := obs.Get(k)
		out[k] = arr.Data
	}
	return out
}

func printPlayText(w io.Writer, pt PlayTask) {
	fmt.Fprintf(w, "== %s\n", pt.Task)
	for _, s := range pt.Steps {
		var b strings.Builder
		fmt.Fprintf(&b, "ep=%d step=%d %-5s", s.Episode, s.Index, s.StepType)
		if s.Reward != nil {
			fmt.Fprintf(&b, " reward=%.4f", *s.Reward)
		}
		if s.Discount != nil {
			fmt.Fprintf(&b, " discount=%g", *s.Discount)
		}
		for _, k := range sortedKeys(s.Observation) {
			fmt.Fprintf(&b, " %s=%.4f", k, s.Observation[k])
		}
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintf(w, "fingerprint %s\n", pt.Fingerprint)
}
