package harness

import (
	"errors"
	"fmt"
)

// CheckError is a conformance failure.
//
// Step is the zero-based position of the offending TimeStep inside the
// trajectory, or -1 when the failure is not tied to a step.
type CheckError struct {
	// Code identifies the failure category.
	Code ErrorCode `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Task is "domain/task" when known.
	Task string `json:"task,omitempty"`

	// Field names the observation field, or "reward", "discount",
	// "step_type", "minimum" and so on.
	Field string `json:"field,omitempty"`

	Step int `json:"step"`

	// Details carries the offending values and expected ranges.
	Details map[string]string `json:"details,omitempty"`
}

// ErrorCode categorizes check failures.
type ErrorCode string

const (
	// CodeSpecMismatch indicates observation keys, shapes or dtypes disagree
	// with the declared spec.
	CodeSpecMismatch ErrorCode = "SPEC_MISMATCH"

	// CodeNonFiniteValue indicates an observation array holds NaN or Inf.
	CodeNonFiniteValue ErrorCode = "NON_FINITE_VALUE"

	// CodeInvariantViolation indicates a reward/discount presence or range
	// rule, a control range or a camera count was broken.
	CodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// CodeDeterminismDivergence indicates two seeded trajectories differ.
	CodeDeterminismDivergence ErrorCode = "DETERMINISM_DIVERGENCE"

	// CodeUnnamedEntity indicates a model entity has an empty name.
	CodeUnnamedEntity ErrorCode = "UNNAMED_ENTITY"

	// CodeEnvironmentError indicates the environment itself failed to load,
	// reset or step.
	CodeEnvironmentError ErrorCode = "ENVIRONMENT_ERROR"
)

// Error implements the error interface.
func (e *CheckError) Error() string {
	var loc string
	switch {
	case e.Task != "" && e.Step >= 0:
		loc = fmt.Sprintf(" (task=%s, step=%d)", e.Task, e.Step)
	case e.Task != "":
		loc = fmt.Sprintf(" (task=%s)", e.Task)
	case e.Step >= 0:
		loc = fmt.Sprintf(" (step=%d)", e.Step)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s%s", e.Code, e.Field, e.Message, loc)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, loc)
}

func newCheckError(code ErrorCode, field, msg string, details map[string]string) *CheckError {
	return &CheckError{Code: code, Message: msg, Field: field, Step: -1, Details: details}
}

// CodeOf returns the code of the first CheckError in err's chain, or
// CodeEnvironmentError for any other non-nil error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeEnvironmentError
}

func hasCode(err error, code ErrorCode) bool {
	var ce *CheckError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsSpecMismatch reports whether err is a spec mismatch.
func IsSpecMismatch(err error) bool { return hasCode(err, CodeSpecMismatch) }

// IsNonFiniteValue reports whether err is a non-finite observation value.
func IsNonFiniteValue(err error) bool { return hasCode(err, CodeNonFiniteValue) }

// IsInvariantViolation reports whether err is an invariant violation.
func IsInvariantViolation(err error) bool { return hasCode(err, CodeInvariantViolation) }

// IsDeterminismDivergence reports whether err is a determinism divergence.
func IsDeterminismDivergence(err error) bool { return hasCode(err, CodeDeterminismDivergence) }

// IsUnnamedEntity reports whether err is an unnamed model entity.
func IsUnnamedEntity(err error) bool { return hasCode(err, CodeUnnamedEntity) }

// annotate fills in task and step on a CheckError found in err. Other
// errors are wrapped into an ENVIRONMENT_ERROR CheckError so results carry a
// uniform shape.
func annotate(err error, task string, step int) *CheckError {
	var ce *CheckError
	if !errors.As(err, &ce) {
		ce = newCheckError(CodeEnvironmentError, "", err.Error(), nil)
	}
	out := *ce
	if out.Task == "" {
		out.Task = task
	}
	if out.Step < 0 {
		out.Step = step
	}
	return &out
}
