package harness

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/roach88/suitecheck/internal/env"
)

// CompareTrajectories drains a and b in lockstep and returns a
// DETERMINISM_DIVERGENCE error at the first position where they differ.
// Observation arrays must be bit-identical. A trajectory that ends early is
// a divergence. Environment errors from either side are returned wrapped.
func CompareTrajectories(a, b *Stepper) error {
	for {
		okA, okB := a.Next(), b.Next()
		if err := a.Err(); err != nil {
			return fmt.Errorf("first trajectory: %w", err)
		}
		if err := b.Err(); err != nil {
			return fmt.Errorf("second trajectory: %w", err)
		}
		if !okA && !okB {
			return nil
		}
		if okA != okB {
			index := a.Index() + 1
			if okA {
				index = a.Index()
			}
			ce := newCheckError(CodeDeterminismDivergence, "length",
				fmt.Sprintf("trajectories have different lengths (first ended=%t, second ended=%t)", !okA, !okB),
				map[string]string{"first_ended": strconv.FormatBool(!okA), "second_ended": strconv.FormatBool(!okB)})
			ce.Step = index
			return ce
		}
		if err := CompareTimeSteps(a.TimeStep(), b.TimeStep()); err != nil {
			ce := err.(*CheckError)
			ce.Step = a.Index()
			return ce
		}
	}
}

// CompareTimeSteps returns a DETERMINISM_DIVERGENCE error naming the first
// field in which x and y differ.
func CompareTimeSteps(x, y env.TimeStep) error {
	if x.StepType != y.StepType {
		return divergence("step_type", x.StepType.String(), y.StepType.String())
	}
	if err := compareOptional("reward", x.Reward, y.Reward); err != nil {
		return err
	}
	if err := compareOptional("discount", x.Discount, y.Discount); err != nil {
		return err
	}

	xk, yk := x.Observation.Keys(), y.Observation.Keys()
	if !slices.Equal(xk, yk) {
		return divergence("observation", fmt.Sprint(xk), fmt.Sprint(yk))
	}
	for _, k := range xk {
		xa, _ := x.Observation.Get(k)
		ya, _ := y.Observation.Get(k)
		if !env.SameShape(xa.Shape, ya.Shape) {
			return divergence(k, fmt.Sprint(xa.Shape), fmt.Sprint(ya.Shape))
		}
		if xa.DType != ya.DType {
			return divergence(k, string(xa.DType), string(ya.DType))
		}
		if len(xa.Data) != len(ya.Data) {
			return divergence(k, fmt.Sprint(xa.Data), fmt.Sprint(ya.Data))
		}
		for i := range xa.Data {
			if math.Float64bits(xa.Data[i]) != math.Float64bits(ya.Data[i]) {
				ce := divergence(k, formatFloat(xa.Data[i]), formatFloat(ya.Data[i]))
				ce.Details["element"] = strconv.Itoa(i)
				return ce
			}
		}
	}
	return nil
}

func compareOptional(field string, x, y *float64) error {
	switch {
	case x == nil && y == nil:
		return nil
	case x == nil || y == nil:
		return divergence(field, optString(x), optString(y))
	case math.Float64bits(*x) != math.Float64bits(*y):
		return divergence(field, formatFloat(*x), formatFloat(*y))
	}
	return nil
}

func optString(v *float64) string {
	if v == nil {
		return "unset"
	}
	return formatFloat(*v)
}

func divergence(field, first, second string) *CheckError {
	return newCheckError(CodeDeterminismDivergence, field,
		fmt.Sprintf("first=%s second=%s", first, second),
		map[string]string{"first": first, "second": second})
}
