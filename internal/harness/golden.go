package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/policy"
	"github.com/roach88/suitecheck/internal/trace"
)

// RecordTrajectory drains a stepper over e and returns the recorded steps.
func RecordTrajectory(e env.Environment, p policy.Policy, episodes, maxSteps int) ([]trace.Step, error) {
	s := NewStepper(e, p, episodes, maxSteps)
	steps := []trace.Step{}
	for s.Next() {
		steps = append(steps, trace.Record(s.Episode(), s.Index(), s.TimeStep()))
	}
	return steps, s.Err()
}

// toCanonicalMap converts the check trace of a result into the generic form
// accepted by trace.MarshalCanonical.
func (r *Result) toCanonicalMap() map[string]any {
	events := make([]any, len(r.Trace))
	for i, ev := range r.Trace {
		m := map[string]any{
			"seq":   ev.Seq,
			"type":  ev.Type,
			"task":  ev.Task,
			"check": ev.Check,
		}
		if ev.Code != "" {
			m["code"] = ev.Code
		}
		events[i] = m
	}
	return map[string]any{
		"plan":  r.Plan,
		"seed":  r.Seed,
		"pass":  r.Pass,
		"trace": events,
	}
}

// Snapshot returns the canonical encoding of the plan name, seed, overall
// outcome and check trace of r.
func (r *Result) Snapshot() ([]byte, error) {
	return trace.MarshalCanonical(r.toCanonicalMap())
}

// RunWithGolden records a trajectory and compares its canonical encoding
// against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, name string, e env.Environment, p policy.Policy, episodes, maxSteps int) error {
	t.Helper()

	steps, err := RecordTrajectory(e, p, episodes, maxSteps)
	if err != nil {
		return err
	}
	data, err := trace.Snapshot(name, steps)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// AssertGolden compares the check trace of an existing result against a
// golden file. Fingerprints are not part of the snapshot.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := result.Snapshot()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
