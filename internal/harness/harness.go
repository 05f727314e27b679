package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/policy"
	"github.com/roach88/suitecheck/internal/suite"
	"github.com/roach88/suitecheck/internal/testutil"
	"github.com/roach88/suitecheck/internal/trace"
)

// Harness runs a plan against a registry.
// Each check loads its own environment instance, so checks never share
// simulation state.
type Harness struct {
	reg    *suite.Registry
	plan   *Plan
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes plan against every task it selects and returns the result.
//
// The returned error is reserved for problems with the plan itself, such as
// an unknown selector. Check failures are reported in the Result.
func Run(reg *suite.Registry, plan *Plan, opts ...Option) (*Result, error) {
	if err := validatePlan(plan); err != nil {
		return nil, err
	}
	p := *plan
	p.applyDefaults()

	ids, err := reg.Select(p.Tasks...)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", p.Name, err)
	}

	h := &Harness{
		reg:    reg,
		plan:   &p,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.logger.Info("running plan", "plan", p.Name, "tasks", len(ids), "checks", len(p.Checks), "seed", p.Seed)

	result := NewResult(&p)
	for _, id := range ids {
		tr := TaskResult{
			Task:         id,
			Benchmarking: reg.IsBenchmarking(id),
			Checks:       []CheckResult{},
		}
		for _, c := range p.Checks {
			cr := h.runCheck(c, id, tr.Benchmarking)
			h.record(result, id, cr)
			tr.Checks = append(tr.Checks, cr)
		}
		result.Tasks = append(result.Tasks, tr)
	}

	passed, failed, skipped := result.Counts()
	h.logger.Info("plan finished", "plan", p.Name, "passed", passed, "failed", failed, "skipped", skipped)
	return result, nil
}

func (h *Harness) record(result *Result, id suite.TaskID, cr CheckResult) {
	ev := TraceEvent{
		Seq:   h.clock.Next(),
		Task:  id.String(),
		Check: string(cr.Check),
	}
	switch cr.Status {
	case StatusPass:
		ev.Type = "check_passed"
		h.logger.Debug("check passed", "task", id.String(), "check", cr.Check)
	case StatusSkip:
		ev.Type = "check_skipped"
		h.logger.Debug("check skipped", "task", id.String(), "check", cr.Check)
	case StatusFail:
		ev.Type = "check_failed"
		ev.Code = string(cr.Error.Code)
		result.AddError(fmt.Sprintf("%s %s: %s", id, cr.Check, cr.Error.Error()))
		h.logger.Warn("check failed", "task", id.String(), "check", cr.Check, "code", cr.Error.Code, "error", cr.Error.Message)
	}
	result.Trace = append(result.Trace, ev)
}

func (h *Harness) runCheck(c CheckName, id suite.TaskID, bench bool) CheckResult {
	switch c {
	case CheckModelNames:
		return h.checkModel(c, id, ValidateModelNames)
	case CheckCameras:
		return h.checkModel(c, id, func(m env.Model) error {
			return ValidateCameras(m, h.plan.MinCameras)
		})
	case CheckControlRange:
		if !bench {
			return CheckResult{Check: c, Status: StatusSkip}
		}
		return h.checkControlRange(id)
	case CheckConformance:
		return h.checkConformance(id, bench)
	case CheckDeterminism:
		return h.checkDeterminism(id)
	case CheckRewardVisualization:
		return h.checkRewardVisualization(id)
	}
	return failed(c, id, -1, fmt.Errorf("unknown check %q", c))
}

func failed(c CheckName, id suite.TaskID, step int, err error) CheckResult {
	return CheckResult{Check: c, Status: StatusFail, Error: annotate(err, id.String(), step)}
}

// load builds a fresh environment seeded with the plan seed.
func (h *Harness) load(id suite.TaskID) (env.Environment, error) {
	seed := h.plan.Seed
	return h.reg.Load(id.Domain, id.Task, suite.TaskOptions{Random: &seed})
}

func (h *Harness) stepper(e env.Environment) *Stepper {
	seed := h.plan.Seed
	p := policy.UniformRandom(e.ActionSpec(), &seed)
	return NewStepper(e, p, h.plan.Episodes, h.plan.MaxStepsPerEpisode)
}

// checkModel validates the model exposed by the environment, falling back
// to the registry's model for environments that do not expose one.
func (h *Harness) checkModel(c CheckName, id suite.TaskID, check func(env.Model) error) CheckResult {
	e, err := h.load(id)
	if err != nil {
		return failed(c, id, -1, err)
	}
	var m env.Model
	if mp, ok := e.(env.ModelProvider); ok {
		m = mp.Model()
	} else if rm, ok := h.reg.Model(id.Domain); ok {
		m = rm
	} else {
		return failed(c, id, -1, fmt.Errorf("no model for domain %q", id.Domain))
	}
	if err := check(m); err != nil {
		return failed(c, id, -1, err)
	}
	return CheckResult{Check: c, Status: StatusPass}
}

func (h *Harness) checkControlRange(id suite.TaskID) CheckResult {
	e, err := h.load(id)
	if err != nil {
		return failed(CheckControlRange, id, -1, err)
	}
	if err := ValidateControlRange(e.ActionSpec()); err != nil {
		return failed(CheckControlRange, id, -1, err)
	}
	return CheckResult{Check: CheckControlRange, Status: StatusPass}
}

// checkConformance validates every TimeStep of one seeded trajectory and
// fingerprints it.
func (h *Harness) checkConformance(id suite.TaskID, bench bool) CheckResult {
	e, err := h.load(id)
	if err != nil {
		return failed(CheckConformance, id, -1, err)
	}
	spec := e.ObservationSpec()
	s := h.stepper(e)

	steps := []trace.Step{}
	for s.Next() {
		ts := s.TimeStep()
		if err := ValidateTimeStep(ts, spec, bench); err != nil {
			return failed(CheckConformance, id, s.Index(), err)
		}
		steps = append(steps, trace.Record(s.Episode(), s.Index(), ts))
	}
	if err := s.Err(); err != nil {
		return failed(CheckConformance, id, s.Index()+1, err)
	}

	fp, err := trace.Fingerprint(steps)
	if err != nil {
		return failed(CheckConformance, id, -1, err)
	}
	return CheckResult{Check: CheckConformance, Status: StatusPass, Steps: len(steps), Fingerprint: fp}
}

// checkDeterminism builds two environments and policies from the same seed
// and compares their trajectories.
func (h *Harness) checkDeterminism(id suite.TaskID) CheckResult {
	a, err := h.load(id)
	if err != nil {
		return failed(CheckDeterminism, id, -1, err)
	}
	b, err := h.load(id)
	if err != nil {
		return failed(CheckDeterminism, id, -1, err)
	}
	sa, sb := h.stepper(a), h.stepper(b)
	if err := CompareTrajectories(sa, sb); err != nil {
		return failed(CheckDeterminism, id, -1, err)
	}
	return CheckResult{Check: CheckDeterminism, Status: StatusPass, Steps: sa.Index() + 1}
}

// checkRewardVisualization enables reward visualization where supported,
// resets, and takes two zero-action steps. Both must be Mid or Last, and an
// environment that reports its reward tint must tint by the step's reward.
func (h *Harness) checkRewardVisualization(id suite.TaskID) CheckResult {
	c := CheckRewardVisualization
	e, err := h.load(id)
	if err != nil {
		return failed(c, id, -1, err)
	}
	rv, visualizes := e.(env.RewardVisualizer)
	if visualizes {
		rv.SetVisualizeReward(true)
	}
	if _, err := e.Reset(); err != nil {
		return failed(c, id, 0, fmt.Errorf("reset: %w", err))
	}
	zero := policy.Zeros(e.ActionSpec())
	for step := 1; step <= 2; step++ {
		ts, err := e.Step(zero(env.TimeStep{}))
		if err != nil {
			return failed(c, id, step, fmt.Errorf("zero-action step: %w", err))
		}
		if !ts.IsMid() && !ts.IsLast() {
			return failed(c, id, step, newCheckError(CodeInvariantViolation, "step_type",
				fmt.Sprintf("step after reset returned %s, want mid or last", ts.StepType),
				map[string]string{"step_type": ts.StepType.String()}))
		}
		if tinter, ok := e.(rewardTinter); ok && visualizes && ts.Reward != nil && tinter.RewardTint() != *ts.Reward {
			return failed(c, id, step, newCheckError(CodeInvariantViolation, "reward_tint",
				fmt.Sprintf("tint %v does not follow reward %v", tinter.RewardTint(), *ts.Reward),
				map[string]string{"value": formatFloat(tinter.RewardTint()), "expected": formatFloat(*ts.Reward)}))
		}
	}
	return CheckResult{Check: c, Status: StatusPass, Steps: 3}
}

// rewardTinter is implemented by environments that expose the tint applied
// while reward visualization is on.
type rewardTinter interface {
	RewardTint() float64
}
