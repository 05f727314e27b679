package harness

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/roach88/suitecheck/internal/env"
)

// ValidateObservation checks that obs has exactly the keys of spec, that
// every array has the declared shape and dtype, and that all elements are
// finite.
func ValidateObservation(obs env.Observation, spec env.ObservationSpec) error {
	var unexpected, missing []string
	for _, k := range obs.Keys() {
		if _, ok := spec.Get(k); !ok {
			unexpected = append(unexpected, k)
		}
	}
	for _, k := range spec.Keys() {
		if _, ok := obs.Get(k); !ok {
			missing = append(missing, k)
		}
	}
	if len(unexpected) > 0 || len(missing) > 0 {
		slices.Sort(unexpected)
		slices.Sort(missing)
		details := map[string]string{}
		var parts []string
		if len(unexpected) > 0 {
			details["unexpected"] = strings.Join(unexpected, ",")
			parts = append(parts, fmt.Sprintf("unexpected keys %v", unexpected))
		}
		if len(missing) > 0 {
			details["missing"] = strings.Join(missing, ",")
			parts = append(parts, fmt.Sprintf("missing keys %v", missing))
		}
		return newCheckError(CodeSpecMismatch, "", "observation keys differ from spec: "+strings.Join(parts, ", "), details)
	}

	// Structural mismatches are collected over every key before reporting.
	var offending, problems []string
	details := map[string]string{}
	for _, k := range spec.Keys() {
		want, _ := spec.Get(k)
		arr, _ := obs.Get(k)
		var problem string
		switch {
		case !env.SameShape(arr.Shape, want.Shape):
			problem = fmt.Sprintf("shape %v, spec declares %v", arr.Shape, want.Shape)
		case arr.DType != want.DType:
			problem = fmt.Sprintf("dtype %s, spec declares %s", arr.DType, want.DType)
		case env.NumElements(arr.Shape) != len(arr.Data):
			problem = fmt.Sprintf("holds %d elements, shape %v needs %d", len(arr.Data), arr.Shape, env.NumElements(arr.Shape))
		default:
			continue
		}
		offending = append(offending, k)
		problems = append(problems, k+": "+problem)
		details[k] = problem
	}
	if len(offending) > 0 {
		field := ""
		if len(offending) == 1 {
			field = offending[0]
		}
		details["keys"] = strings.Join(offending, ",")
		return newCheckError(CodeSpecMismatch, field,
			"observation arrays differ from spec: "+strings.Join(problems, "; "), details)
	}

	for _, k := range spec.Keys() {
		arr, _ := obs.Get(k)
		if !allFinite(arr.Data) {
			return newCheckError(CodeNonFiniteValue, k,
				fmt.Sprintf("non-finite values in %v", arr.Data),
				map[string]string{"values": fmt.Sprint(arr.Data)})
		}
	}
	return nil
}

func allFinite(data []float64) bool {
	if len(data) == 0 {
		return true
	}
	if floats.HasNaN(data) {
		return false
	}
	return !math.IsInf(floats.Max(data), 1) && !math.IsInf(floats.Min(data), -1)
}

// ValidateDiscount checks the discount presence rule and that the discount
// lies in [0, 1].
func ValidateDiscount(ts env.TimeStep) error {
	return checkScalar(ts, "discount", ts.Discount, true)
}

// ValidateReward checks the reward presence rule and that the reward lies in
// [0, 1]. Only benchmarking tasks promise bounded rewards.
func ValidateReward(ts env.TimeStep) error {
	return checkScalar(ts, "reward", ts.Reward, true)
}

// ValidateTimeStep checks the observation and discount of ts, and the reward
// presence rule. The reward range is checked only when benchmark is true.
func ValidateTimeStep(ts env.TimeStep, spec env.ObservationSpec, benchmark bool) error {
	if err := ValidateObservation(ts.Observation, spec); err != nil {
		return err
	}
	if err := ValidateDiscount(ts); err != nil {
		return err
	}
	return checkScalar(ts, "reward", ts.Reward, benchmark)
}

// checkScalar enforces that v is unset exactly on First steps and, when
// set, finite and optionally in [0, 1].
func checkScalar(ts env.TimeStep, field string, v *float64, bounded bool) error {
	if ts.IsFirst() {
		if v != nil {
			return newCheckError(CodeInvariantViolation, field,
				fmt.Sprintf("must be unset on a first step, got %v", *v),
				map[string]string{"value": formatFloat(*v), "step_type": ts.StepType.String()})
		}
		return nil
	}
	if v == nil {
		return newCheckError(CodeInvariantViolation, field,
			fmt.Sprintf("must be set on a %s step", ts.StepType),
			map[string]string{"step_type": ts.StepType.String()})
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return newCheckError(CodeInvariantViolation, field,
			fmt.Sprintf("must be finite, got %v", *v),
			map[string]string{"value": formatFloat(*v)})
	}
	if bounded && (*v < 0 || *v > 1) {
		return newCheckError(CodeInvariantViolation, field,
			fmt.Sprintf("%v outside [0, 1]", *v),
			map[string]string{"value": formatFloat(*v), "range": "[0, 1]"})
	}
	return nil
}

// ValidateControlRange checks that a benchmarking action spec is normalized
// to [-1, 1] in every dimension.
func ValidateControlRange(spec env.BoundedArraySpec) error {
	for i, lo := range spec.Minimum {
		if lo != -1.0 {
			return newCheckError(CodeInvariantViolation, "minimum",
				fmt.Sprintf("action %q minimum[%d] is %v, want -1", spec.Name, i, lo),
				map[string]string{"index": strconv.Itoa(i), "value": formatFloat(lo), "expected": "-1"})
		}
	}
	for i, hi := range spec.Maximum {
		if hi != 1.0 {
			return newCheckError(CodeInvariantViolation, "maximum",
				fmt.Sprintf("action %q maximum[%d] is %v, want 1", spec.Name, i, hi),
				map[string]string{"index": strconv.Itoa(i), "value": formatFloat(hi), "expected": "1"})
		}
	}
	return nil
}

// ValidateModelNames checks that every entity of every category has a
// non-empty name.
func ValidateModelNames(m env.Model) error {
	for _, c := range env.Categories {
		for id := 0; id < m.Count(c); id++ {
			if m.ID2Name(c, id) == "" {
				return newCheckError(CodeUnnamedEntity, string(c),
					fmt.Sprintf("model %q has an unnamed %s with id %d", m.Name(), c, id),
					map[string]string{"model": m.Name(), "category": string(c), "id": strconv.Itoa(id)})
			}
		}
	}
	return nil
}

// ValidateCameras checks that the model declares at least minCameras
// cameras.
func ValidateCameras(m env.Model, minCameras int) error {
	if n := m.Count(env.Camera); n < minCameras {
		return newCheckError(CodeInvariantViolation, string(env.Camera),
			fmt.Sprintf("model %q declares %d cameras, want at least %d", m.Name(), n, minCameras),
			map[string]string{"model": m.Name(), "count": strconv.Itoa(n), "minimum": strconv.Itoa(minCameras)})
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
