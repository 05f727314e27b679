package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CheckName identifies one check of a plan.
type CheckName string

const (
	// CheckModelNames verifies every model entity has a name.
	CheckModelNames CheckName = "model_names"

	// CheckCameras verifies the model declares enough cameras.
	CheckCameras CheckName = "cameras"

	// CheckControlRange verifies benchmarking action specs span [-1, 1].
	// It is skipped for other tasks.
	CheckControlRange CheckName = "control_range"

	// CheckConformance validates every TimeStep of a seeded run.
	CheckConformance CheckName = "conformance"

	// CheckDeterminism compares two runs built from the same seed.
	CheckDeterminism CheckName = "determinism"

	// CheckRewardVisualization resets with reward visualization enabled and
	// takes two zero-action steps.
	CheckRewardVisualization CheckName = "reward_visualization"
)

// AllChecks lists every check in execution order.
var AllChecks = []CheckName{
	CheckModelNames,
	CheckCameras,
	CheckControlRange,
	CheckConformance,
	CheckDeterminism,
	CheckRewardVisualization,
}

// Plan defaults.
const (
	DefaultEpisodes   = 5
	DefaultMaxSteps   = 10
	DefaultMinCameras = 2
)

// Plan describes which checks to run against which tasks.
type Plan struct {
	// Name identifies this plan in results and golden files.
	Name string `yaml:"name"`

	// Description explains what this plan validates.
	Description string `yaml:"description,omitempty"`

	// Tasks are registry selectors: "all", "benchmarking", a domain, or
	// "domain/task". Empty means "all".
	Tasks []string `yaml:"tasks,omitempty"`

	// Checks to run. Empty means AllChecks.
	Checks []CheckName `yaml:"checks,omitempty"`

	// Episodes per trajectory. Zero means DefaultEpisodes.
	Episodes int `yaml:"episodes,omitempty"`

	// MaxStepsPerEpisode truncates episodes. Zero means DefaultMaxSteps.
	MaxStepsPerEpisode int `yaml:"max_steps_per_episode,omitempty"`

	// Seed seeds both the task and the random policy.
	Seed int64 `yaml:"seed"`

	// MinCameras is the camera floor. Zero means DefaultMinCameras.
	MinCameras int `yaml:"min_cameras,omitempty"`
}

// DefaultPlan runs every check against every task with seed 0.
func DefaultPlan() *Plan {
	p := &Plan{Name: "default", Description: "all checks over all tasks"}
	p.applyDefaults()
	return p
}

// LoadPlan reads and validates a plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	p, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePlan decodes and validates a plan. Unknown fields are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := validatePlan(&p); err != nil {
		return nil, err
	}
	p.applyDefaults()
	return &p, nil
}

func validatePlan(p *Plan) error {
	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}
	if p.Episodes < 0 {
		return fmt.Errorf("plan %s: episodes must not be negative, got %d", p.Name, p.Episodes)
	}
	if p.MaxStepsPerEpisode < 0 {
		return fmt.Errorf("plan %s: max_steps_per_episode must not be negative, got %d", p.Name, p.MaxStepsPerEpisode)
	}
	if p.MinCameras < 0 {
		return fmt.Errorf("plan %s: min_cameras must not be negative, got %d", p.Name, p.MinCameras)
	}
	seen := make(map[CheckName]bool)
	for i, c := range p.Checks {
		if !knownCheck(c) {
			return fmt.Errorf("plan %s: checks[%d]: unknown check %q (known: %v)", p.Name, i, c, AllChecks)
		}
		if seen[c] {
			return fmt.Errorf("plan %s: checks[%d]: duplicate check %q", p.Name, i, c)
		}
		seen[c] = true
	}
	return nil
}

func knownCheck(c CheckName) bool {
	for _, k := range AllChecks {
		if k == c {
			return true
		}
	}
	return false
}

func (p *Plan) applyDefaults() {
	if len(p.Tasks) == 0 {
		p.Tasks = []string{"all"}
	}
	if len(p.Checks) == 0 {
		p.Checks = append([]CheckName(nil), AllChecks...)
	}
	if p.Episodes == 0 {
		p.Episodes = DefaultEpisodes
	}
	if p.MaxStepsPerEpisode == 0 {
		p.MaxStepsPerEpisode = DefaultMaxSteps
	}
	if p.MinCameras == 0 {
		p.MinCameras = DefaultMinCameras
	}
}
