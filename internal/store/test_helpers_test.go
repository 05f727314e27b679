package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/suitecheck/internal/harness"
	"github.com/roach88/suitecheck/internal/suite"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult builds a result with one passing conformance check per
// fingerprint and one failing determinism check.
func createTestResult(seed int64, fingerprints map[string]string) *harness.Result {
	res := harness.NewResult(&harness.Plan{Name: "test", Seed: seed, Episodes: 5, MaxStepsPerEpisode: 10})
	for _, task := range []string{"cartpole/balance", "cartpole/swingup"} {
		fp, ok := fingerprints[task]
		if !ok {
			continue
		}
		domain, name, _ := strings.Cut(task, "/")
		res.Tasks = append(res.Tasks, harness.TaskResult{
			Task:         suite.TaskID{Domain: domain, Task: name},
			Benchmarking: true,
			Checks: []harness.CheckResult{
				{Check: harness.CheckConformance, Status: harness.StatusPass, Steps: 55, Fingerprint: fp},
				{Check: harness.CheckDeterminism, Status: harness.StatusFail, Error: &harness.CheckError{
					Code:    harness.CodeDeterminismDivergence,
					Message: "first=1 second=2",
					Task:    task,
					Field:   "position",
					Step:    7,
				}},
			},
		})
	}
	res.AddError("determinism failed")
	return res
}
