package harness

import "github.com/roach88/suitecheck/internal/suite"

// CheckStatus is the outcome of one check on one task.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusFail CheckStatus = "fail"
	StatusSkip CheckStatus = "skip"
)

// TraceEvent records check progress. Seq comes from a deterministic clock so
// traces of identical runs compare equal.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Type  string `json:"type"` // "check_passed", "check_failed" or "check_skipped"
	Task  string `json:"task"`
	Check string `json:"check"`
	Code  string `json:"code,omitempty"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Check  CheckName   `json:"check"`
	Status CheckStatus `json:"status"`

	// Error is set when Status is StatusFail.
	Error *CheckError `json:"error,omitempty"`

	// Steps counts the TimeSteps validated by trajectory checks.
	Steps int `json:"steps,omitempty"`

	// Fingerprint is the trajectory fingerprint of a conformance run.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// TaskResult groups the checks run against one task.
type TaskResult struct {
	Task         suite.TaskID  `json:"task"`
	Benchmarking bool          `json:"benchmarking"`
	Checks       []CheckResult `json:"checks"`
}

// Passed reports whether no check of the task failed.
func (t *TaskResult) Passed() bool {
	for _, c := range t.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Result is the outcome of running a plan.
type Result struct {
	// Pass is true when no check failed.
	Pass bool `json:"pass"`

	Plan string `json:"plan"`

	Seed int64 `json:"seed"`

	Episodes int `json:"episodes"`

	MaxStepsPerEpisode int `json:"max_steps_per_episode"`

	Tasks []TaskResult `json:"tasks"`

	// Trace lists check events in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one line per failed check.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result for p.
func NewResult(p *Plan) *Result {
	return &Result{
		Pass:               true,
		Plan:               p.Name,
		Seed:               p.Seed,
		Episodes:           p.Episodes,
		MaxStepsPerEpisode: p.MaxStepsPerEpisode,
		Tasks:              []TaskResult{},
		Trace:              []TraceEvent{},
		Errors:             []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Counts returns the number of passed, failed and skipped checks.
func (r *Result) Counts() (passed, failed, skipped int) {
	for _, t := range r.Tasks {
		for _, c := range t.Checks {
			switch c.Status {
			case StatusPass:
				passed++
			case StatusFail:
				failed++
			case StatusSkip:
				skipped++
			}
		}
	}
	return passed, failed, skipped
}
