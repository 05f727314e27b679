package env

import (
	"fmt"
	"math"
)

// StepType tags the position of a TimeStep inside an episode.
type StepType int

const (
	// First is returned by Reset. Reward and discount are unset.
	First StepType = iota
	// Mid is any step that is neither the first nor the last.
	Mid
	// Last terminates an episode.
	Last
)

// String returns the lowercase name of the step type.
func (s StepType) String() string {
	switch s {
	case First:
		return "first"
	case Mid:
		return "mid"
	case Last:
		return "last"
	default:
		return fmt.Sprintf("step_type(%d)", int(s))
	}
}

// DType is the numeric element type of an array.
type DType string

const (
	Float64 DType = "float64"
	Float32 DType = "float32"
	Int32   DType = "int32"
	Uint8   DType = "uint8"
)

// TimeStep is one observation point of an environment.
type TimeStep struct {
	StepType    StepType
	Reward      *float64
	Discount    *float64
	Observation Observation
}

// IsFirst reports whether the step was produced by Reset.
func (t TimeStep) IsFirst() bool { return t.StepType == First }

// IsMid reports whether the step is inside an episode.
func (t TimeStep) IsMid() bool { return t.StepType == Mid }

// IsLast reports whether the step terminates the episode.
func (t TimeStep) IsLast() bool { return t.StepType == Last }

// Restart builds a First TimeStep with unset reward and discount.
func Restart(obs Observation) TimeStep {
	return TimeStep{StepType: First, Observation: obs}
}

// Transition builds a Mid TimeStep.
func Transition(reward, discount float64, obs Observation) TimeStep {
	return TimeStep{StepType: Mid, Reward: &reward, Discount: &discount, Observation: obs}
}

// Termination builds a Last TimeStep.
func Termination(reward, discount float64, obs Observation) TimeStep {
	return TimeStep{StepType: Last, Reward: &reward, Discount: &discount, Observation: obs}
}

// Array is a dense row-major numeric array. Integer dtypes are stored as
// float64 values holding whole numbers.
type Array struct {
	Shape []int
	DType DType
	Data  []float64
}

// NewArray builds an Array and checks that len(data) matches the shape.
func NewArray(dtype DType, shape []int, data []float64) (Array, error) {
	if n := NumElements(shape); n != len(data) {
		return Array{}, fmt.Errorf("array of shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return Array{Shape: append([]int(nil), shape...), DType: dtype, Data: data}, nil
}

// Vector builds a one dimensional float64 array.
func Vector(data ...float64) Array {
	return Array{Shape: []int{len(data)}, DType: Float64, Data: data}
}

// Scalar builds a zero dimensional float64 array.
func Scalar(v float64) Array {
	return Array{Shape: []int{}, DType: Float64, Data: []float64{v}}
}

// Clone returns a deep copy of the array.
func (a Array) Clone() Array {
	return Array{
		Shape: append([]int(nil), a.Shape...),
		DType: a.DType,
		Data:  append([]float64(nil), a.Data...),
	}
}

// NumElements returns the number of elements described by shape.
// The empty shape describes a scalar.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// SameShape reports whether two shapes are identical.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ArraySpec describes the shape and dtype of an array.
type ArraySpec struct {
	Name  string
	Shape []int
	DType DType
}

// BoundedArraySpec is an ArraySpec with per-element bounds. Bounds may be
// infinite.
type BoundedArraySpec struct {
	ArraySpec
	Minimum []float64
	Maximum []float64
}

// NewBoundedArraySpec validates and builds a bounded spec. The bound slices
// must have one entry per element and minimum <= maximum wherever both bounds
// are finite.
func NewBoundedArraySpec(name string, shape []int, dtype DType, minimum, maximum []float64) (BoundedArraySpec, error) {
	if err := checkShape(name, shape); err != nil {
		return BoundedArraySpec{}, err
	}
	n := NumElements(shape)
	if len(minimum) != n || len(maximum) != n {
		return BoundedArraySpec{}, fmt.Errorf("spec %q: bounds need %d elements, got minimum=%d maximum=%d",
			name, n, len(minimum), len(maximum))
	}
	for i := range minimum {
		lo, hi := minimum[i], maximum[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			return BoundedArraySpec{}, fmt.Errorf("spec %q: bound %d is NaN", name, i)
		}
		if !math.IsInf(lo, 0) && !math.IsInf(hi, 0) && lo > hi {
			return BoundedArraySpec{}, fmt.Errorf("spec %q: minimum[%d]=%v exceeds maximum[%d]=%v", name, i, lo, i, hi)
		}
	}
	return BoundedArraySpec{
		ArraySpec: ArraySpec{Name: name, Shape: append([]int(nil), shape...), DType: dtype},
		Minimum:   append([]float64(nil), minimum...),
		Maximum:   append([]float64(nil), maximum...),
	}, nil
}

func checkShape(name string, shape []int) error {
	for i, d := range shape {
		if d < 0 {
			return fmt.Errorf("spec %q: dimension %d is negative (%d)", name, i, d)
		}
	}
	return nil
}

// UniformBounds builds a one dimensional float64 spec with the same bounds in
// every element.
func UniformBounds(name string, size int, lo, hi float64) (BoundedArraySpec, error) {
	minimum := make([]float64, size)
	maximum := make([]float64, size)
	for i := range minimum {
		minimum[i] = lo
		maximum[i] = hi
	}
	return NewBoundedArraySpec(name, []int{size}, Float64, minimum, maximum)
}

// Size returns the number of action elements.
func (s BoundedArraySpec) Size() int {
	return NumElements(s.Shape)
}
