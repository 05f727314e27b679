package suite

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/suitecheck/internal/env"
)

// ErrNeedsReset is returned by Step before the first Reset and after a Last
// step.
var ErrNeedsReset = errors.New("environment needs reset")

// dynamics is the per-domain part of an episodic environment.
type dynamics interface {
	// initialize samples a new initial state.
	initialize(src rand.Source)
	// advance applies a clipped action for one control step.
	advance(action []float64)
	// observe returns the current observation.
	observe() env.Observation
	// reward returns the reward of the current state in [0, 1].
	reward(action []float64) float64
}

// episodic wraps dynamics with episode bookkeeping: seeding, time limit,
// action validation and TimeStep construction.
type episodic struct {
	model      *StaticModel
	actionSpec env.BoundedArraySpec
	obsSpec    env.ObservationSpec
	dyn        dynamics
	src        rand.Source
	timeLimit  int

	steps      int
	needsReset bool

	visualizeReward bool
	rewardTint      float64
}

func newEpisodic(model *StaticModel, task TaskSpec, opts TaskOptions, actionSpec env.BoundedArraySpec,
	obsSpec env.ObservationSpec, dyn dynamics) *episodic {
	limit := task.TimeLimit
	if opts.TimeLimit > 0 {
		limit = opts.TimeLimit
	}
	return &episodic{
		model:      model,
		actionSpec: actionSpec,
		obsSpec:    obsSpec,
		dyn:        dyn,
		src:        taskSource(opts.Random),
		timeLimit:  limit,
		needsReset: true,
	}
}

func taskSource(seed *int64) rand.Source {
	if seed == nil {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	s := uint64(*seed)
	return rand.NewPCG(s, ^s)
}

// jitter draws from a zero-mean normal with standard deviation sigma.
func jitter(src rand.Source, sigma float64) float64 {
	return distuv.Normal{Mu: 0, Sigma: sigma, Src: src}.Rand()
}

// uniform draws from [lo, hi].
func uniform(src rand.Source, lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: src}.Rand()
}

// Reset samples a new initial state and returns a First TimeStep.
func (e *episodic) Reset() (env.TimeStep, error) {
	e.dyn.initialize(e.src)
	e.steps = 0
	e.needsReset = false
	e.rewardTint = 0
	return env.Restart(e.dyn.observe()), nil
}

// Step applies action and returns a Mid TimeStep, or a Last TimeStep when
// the time limit is reached.
func (e *episodic) Step(action []float64) (env.TimeStep, error) {
	if e.needsReset {
		return env.TimeStep{}, ErrNeedsReset
	}
	if len(action) != e.actionSpec.Size() {
		return env.TimeStep{}, fmt.Errorf("action has %d elements, spec %q needs %d",
			len(action), e.actionSpec.Name, e.actionSpec.Size())
	}
	clipped := make([]float64, len(action))
	for i, a := range action {
		if math.IsNaN(a) {
			return env.TimeStep{}, fmt.Errorf("action[%d] is NaN", i)
		}
		clipped[i] = math.Max(e.actionSpec.Minimum[i], math.Min(e.actionSpec.Maximum[i], a))
	}

	e.dyn.advance(clipped)
	e.steps++

	r := e.dyn.reward(clipped)
	if e.visualizeReward {
		e.rewardTint = r
	}
	obs := e.dyn.observe()
	if e.steps >= e.timeLimit {
		e.needsReset = true
		return env.Termination(r, 1.0, obs), nil
	}
	return env.Transition(r, 1.0, obs), nil
}

// ActionSpec returns the action spec.
func (e *episodic) ActionSpec() env.BoundedArraySpec { return e.actionSpec }

// ObservationSpec returns the observation spec.
func (e *episodic) ObservationSpec() env.ObservationSpec { return e.obsSpec }

// Model returns the domain model.
func (e *episodic) Model() env.Model { return e.model }

// SetVisualizeReward toggles reward tinting of the "self" material.
func (e *episodic) SetVisualizeReward(on bool) {
	e.visualizeReward = on
	if !on {
		e.rewardTint = 0
	}
}

// RewardTint returns the reward-derived tint of the last step, or 0 when
// visualization is off.
func (e *episodic) RewardTint() float64 { return e.rewardTint }

// tolerance returns 1 when x is within [lo, hi] and decays with a gaussian
// of the given margin outside it. The value at distance margin is 0.1.
func tolerance(x, lo, hi, margin float64) float64 {
	if x >= lo && x <= hi {
		return 1
	}
	if margin <= 0 {
		return 0
	}
	d := lo - x
	if x > hi {
		d = x - hi
	}
	d /= margin
	scale := math.Sqrt(-2 * math.Log(0.1))
	return math.Exp(-0.5 * (d * scale) * (d * scale))
}

func clampAbs(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// wrapAngle maps an angle to [-pi, pi).
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
