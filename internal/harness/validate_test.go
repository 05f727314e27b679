package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/suite"
)

func obsSpec() env.ObservationSpec {
	return env.MustObservationSpec(
		env.ArraySpec{Name: "position", Shape: []int{2}, DType: env.Float64},
		env.ArraySpec{Name: "velocity", Shape: []int{1}, DType: env.Float64},
	)
}

func TestValidateObservation(t *testing.T) {
	tests := []struct {
		name   string
		obs    env.Observation
		code   ErrorCode
		field  string
		detail map[string]string
	}{
		{
			name: "valid",
			obs:  env.NewObservation().With("position", env.Vector(0, 1)).With("velocity", env.Vector(2)),
		},
		{
			name:   "extra key",
			obs:    env.NewObservation().With("position", env.Vector(0, 1)).With("velocity", env.Vector(2)).With("zeta", env.Vector(0)).With("alpha", env.Vector(0)),
			code:   CodeSpecMismatch,
			detail: map[string]string{"unexpected": "alpha,zeta"},
		},
		{
			name:   "missing key",
			obs:    env.NewObservation().With("position", env.Vector(0, 1)),
			code:   CodeSpecMismatch,
			detail: map[string]string{"missing": "velocity"},
		},
		{
			name:   "wrong shape",
			obs:    env.NewObservation().With("position", env.Vector(0, 1, 2)).With("velocity", env.Vector(2)),
			code:   CodeSpecMismatch,
			field:  "position",
			detail: map[string]string{"keys": "position", "position": "shape [3], spec declares [2]"},
		},
		{
			name:   "wrong dtype",
			obs:    env.NewObservation().With("position", env.Vector(0, 1)).With("velocity", env.Array{Shape: []int{1}, DType: env.Float32, Data: []float64{2}}),
			code:   CodeSpecMismatch,
			field:  "velocity",
			detail: map[string]string{"keys": "velocity", "velocity": "dtype float32, spec declares float64"},
		},
		{
			name:   "element count",
			obs:    env.NewObservation().With("position", env.Array{Shape: []int{2}, DType: env.Float64, Data: []float64{0}}).With("velocity", env.Vector(2)),
			code:   CodeSpecMismatch,
			field:  "position",
			detail: map[string]string{"position": "holds 1 elements, shape [2] needs 2"},
		},
		{
			name: "every mismatching key is reported",
			obs: env.NewObservation().
				With("position", env.Vector(0, 1, 2)).
				With("velocity", env.Array{Shape: []int{1}, DType: env.Float32, Data: []float64{math.NaN()}}),
			code: CodeSpecMismatch,
			detail: map[string]string{
				"keys":     "position,velocity",
				"position": "shape [3], spec declares [2]",
				"velocity": "dtype float32, spec declares float64",
			},
		},
		{
			name:   "NaN",
			obs:    env.NewObservation().With("position", env.Vector(0, math.NaN())).With("velocity", env.Vector(2)),
			code:   CodeNonFiniteValue,
			field:  "position",
			detail: map[string]string{"values": "[0 NaN]"},
		},
		{
			name:  "positive infinity",
			obs:   env.NewObservation().With("position", env.Vector(0, 1)).With("velocity", env.Vector(math.Inf(1))),
			code:  CodeNonFiniteValue,
			field: "velocity",
		},
		{
			name:  "negative infinity",
			obs:   env.NewObservation().With("position", env.Vector(math.Inf(-1), 1)).With("velocity", env.Vector(2)),
			code:  CodeNonFiniteValue,
			field: "position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObservation(tt.obs, obsSpec())
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ce *CheckError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.field, ce.Field)
			for k, v := range tt.detail {
				assert.Equal(t, v, ce.Details[k], "detail %s", k)
			}
		})
	}
}

func TestValidateScalars(t *testing.T) {
	obs := env.NewObservation()
	half, nan, two := 0.5, math.NaN(), 2.0

	tests := []struct {
		name        string
		ts          env.TimeStep
		discountOK  bool
		rewardOK    bool
		rewardField string
	}{
		{"first unset", env.Restart(obs), true, true, ""},
		{"first with reward", env.TimeStep{StepType: env.First, Reward: &half, Observation: obs}, true, false, "reward"},
		{"first with discount", env.TimeStep{StepType: env.First, Discount: &half, Observation: obs}, false, true, ""},
		{"mid in range", env.Transition(0.5, 1, obs), true, true, ""},
		{"last zero discount", env.Termination(0, 0, obs), true, true, ""},
		{"mid missing both", env.TimeStep{StepType: env.Mid, Observation: obs}, false, false, "reward"},
		{"mid NaN", env.TimeStep{StepType: env.Mid, Reward: &nan, Discount: &nan, Observation: obs}, false, false, "reward"},
		{"mid out of range", env.TimeStep{StepType: env.Mid, Reward: &two, Discount: &two, Observation: obs}, false, false, "reward"},
		{"negative", env.Transition(-0.1, -0.1, obs), false, false, "reward"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDiscount(tt.ts)
			if tt.discountOK {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsInvariantViolation(err), "discount: %v", err)
			}

			err = ValidateReward(tt.ts)
			if tt.rewardOK {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsInvariantViolation(err))
				var ce *CheckError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, tt.rewardField, ce.Field)
			}
		})
	}
}

func TestValidateScalars_RangeDetails(t *testing.T) {
	err := ValidateReward(env.Transition(1.5, 1, env.NewObservation()))

	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "1.5", ce.Details["value"])
	assert.Equal(t, "[0, 1]", ce.Details["range"])
}

func TestValidateTimeStep_RewardRangeOnlyForBenchmarking(t *testing.T) {
	obs := env.NewObservation().With("position", env.Vector(0, 1)).With("velocity", env.Vector(2))
	ts := env.Transition(3, 1, obs)

	assert.NoError(t, ValidateTimeStep(ts, obsSpec(), false))
	assert.True(t, IsInvariantViolation(ValidateTimeStep(ts, obsSpec(), true)))

	missing := env.TimeStep{StepType: env.Mid, Discount: ptr(1.0), Observation: obs}
	assert.True(t, IsInvariantViolation(ValidateTimeStep(missing, obsSpec(), false)),
		"reward presence is checked for every task")
}

func TestValidateTimeStep_ObservationFirst(t *testing.T) {
	ts := env.Transition(0.5, 7, env.NewObservation())
	assert.True(t, IsSpecMismatch(ValidateTimeStep(ts, obsSpec(), true)))
}

func ptr(f float64) *float64 { return &f }

func TestValidateControlRange(t *testing.T) {
	normalized, err := env.UniformBounds("a", 3, -1, 1)
	require.NoError(t, err)
	assert.NoError(t, ValidateControlRange(normalized))

	wide, err := env.NewBoundedArraySpec("a", []int{2}, env.Float64, []float64{-1, -2}, []float64{1, 1})
	require.NoError(t, err)
	err = ValidateControlRange(wide)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CodeInvariantViolation, ce.Code)
	assert.Equal(t, "minimum", ce.Field)
	assert.Equal(t, "1", ce.Details["index"])

	unbounded, err := env.UniformBounds("a", 1, math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	assert.True(t, IsInvariantViolation(ValidateControlRange(unbounded)))
}

func TestValidateModelNames(t *testing.T) {
	assert.NoError(t, ValidateModelNames(testModel("a", "b")))

	m := suite.NewStaticModel("broken", map[env.Category][]string{
		env.Body:  {"world"},
		env.Joint: {"hinge", ""},
	})
	err := ValidateModelNames(m)
	require.True(t, IsUnnamedEntity(err))

	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, map[string]string{"model": "broken", "category": "joint", "id": "1"}, ce.Details)
}

func TestValidateCameras(t *testing.T) {
	assert.NoError(t, ValidateCameras(testModel("fixed", "tracking"), 2))
	assert.True(t, IsInvariantViolation(ValidateCameras(testModel("fixed"), 2)))
	assert.True(t, IsInvariantViolation(ValidateCameras(testModel(), 1)))
}

func TestBuiltinModelsPassModelChecks(t *testing.T) {
	reg, err := suite.Default()
	require.NoError(t, err)

	for _, d := range reg.Domains() {
		t.Run(d, func(t *testing.T) {
			m, ok := reg.Model(d)
			require.True(t, ok)
			assert.NoError(t, ValidateModelNames(m))
			assert.NoError(t, ValidateCameras(m, 2))
		})
	}
}

func TestBenchmarkingTasksHaveNormalizedControls(t *testing.T) {
	reg, err := suite.Default()
	require.NoError(t, err)

	for _, id := range reg.Benchmarking() {
		t.Run(id.String(), func(t *testing.T) {
			e, err := reg.Load(id.Domain, id.Task, suite.TaskOptions{})
			require.NoError(t, err)
			assert.NoError(t, ValidateControlRange(e.ActionSpec()))
		})
	}
}
