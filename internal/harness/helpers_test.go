package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/suite"
)

// scriptedEnv is a deterministic environment whose observation records the
// step counter and the last action. It ends episodes after limit steps when
// limit is positive.
type scriptedEnv struct {
	limit     int
	failStep  int // Step returns an error on this step when positive
	failReset bool

	// corrupt may rewrite a TimeStep before it is returned.
	corrupt func(t int, ts *env.TimeStep)

	t      int
	resets int
	last   []float64
}

var errScripted = errors.New("scripted failure")

func (e *scriptedEnv) Reset() (env.TimeStep, error) {
	if e.failReset {
		return env.TimeStep{}, errScripted
	}
	e.t = 0
	e.resets++
	ts := env.Restart(e.observe(0))
	if e.corrupt != nil {
		e.corrupt(0, &ts)
	}
	return ts, nil
}

func (e *scriptedEnv) Step(action []float64) (env.TimeStep, error) {
	e.t++
	if e.failStep > 0 && e.t == e.failStep {
		return env.TimeStep{}, errScripted
	}
	e.last = append([]float64(nil), action...)
	reward := float64(e.t) / 10
	var ts env.TimeStep
	if e.limit > 0 && e.t >= e.limit {
		ts = env.Termination(reward, 0, e.observe(action[0]))
	} else {
		ts = env.Transition(reward, 1, e.observe(action[0]))
	}
	if e.corrupt != nil {
		e.corrupt(e.t, &ts)
	}
	return ts, nil
}

func (e *scriptedEnv) observe(action float64) env.Observation {
	return env.NewObservation().
		With("counter", env.Vector(float64(e.t))).
		With("action", env.Vector(action))
}

func (e *scriptedEnv) ActionSpec() env.BoundedArraySpec {
	spec, err := env.UniformBounds("push", 1, -1, 1)
	if err != nil {
		panic(err)
	}
	return spec
}

func (e *scriptedEnv) ObservationSpec() env.ObservationSpec {
	return env.MustObservationSpec(
		env.ArraySpec{Name: "counter", Shape: []int{1}, DType: env.Float64},
		env.ArraySpec{Name: "action", Shape: []int{1}, DType: env.Float64},
	)
}

// constantPolicy always emits v.
func constantPolicy(v float64) func(env.TimeStep) []float64 {
	return func(env.TimeStep) []float64 { return []float64{v} }
}

func testModel(cameras ...string) *suite.StaticModel {
	return suite.NewStaticModel("scripted", map[env.Category][]string{
		env.Body:   {"world", "slider"},
		env.Camera: cameras,
	})
}

// newScriptedRegistry builds a registry with one "scripted" domain whose
// tasks are served by build.
func newScriptedRegistry(t *testing.T, model *suite.StaticModel, tasks []suite.TaskSpec, build suite.Factory) *suite.Registry {
	t.Helper()
	m := &suite.Manifest{Domains: []suite.DomainManifest{{
		Name:  "scripted",
		Model: model,
		Tasks: tasks,
	}}}
	reg, err := suite.NewRegistry(m, map[string]suite.Factory{"scripted": build})
	require.NoError(t, err)
	return reg
}

func scriptedFactory(configure func(task suite.TaskSpec) *scriptedEnv) suite.Factory {
	return func(_ *suite.StaticModel, task suite.TaskSpec, _ suite.TaskOptions) (env.Environment, error) {
		return configure(task), nil
	}
}

func stepTypes(steps []env.TimeStep) []env.StepType {
	out := make([]env.StepType, len(steps))
	for i, ts := range steps {
		out[i] = ts.StepType
	}
	return out
}
