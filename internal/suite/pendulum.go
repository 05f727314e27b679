package suite

import (
	"math"
	"math/rand/v2"

	"github.com/roach88/suitecheck/internal/env"
)

const (
	pendulumGravity  = 9.81
	pendulumLength   = 0.5
	pendulumDamping  = 0.1
	pendulumTimestep = 0.02
	pendulumMaxSpeed = 30.0
	// cos(30 degrees): the pole counts as upright above this.
	pendulumUprightCos = 0.8660254037844387
)

type pendulum struct {
	theta, thetaDot float64
}

// NewPendulum is the Factory of the "pendulum" domain.
func NewPendulum(model *StaticModel, task TaskSpec, opts TaskOptions) (env.Environment, error) {
	actionSpec, err := env.UniformBounds("torque", 1, -1, 1)
	if err != nil {
		return nil, err
	}
	obsSpec, err := env.NewObservationSpec(
		env.ArraySpec{Name: "orientation", Shape: []int{2}, DType: env.Float64},
		env.ArraySpec{Name: "velocity", Shape: []int{1}, DType: env.Float64},
	)
	if err != nil {
		return nil, err
	}
	return newEpisodic(model, task, opts, actionSpec, obsSpec, &pendulum{}), nil
}

func (p *pendulum) initialize(src rand.Source) {
	p.theta = uniform(src, -math.Pi, math.Pi)
	p.thetaDot = 0
}

// advance integrates theta'' = -g/l sin(theta) - b theta' + u with the pole
// angle measured from upright.
func (p *pendulum) advance(action []float64) {
	acc := pendulumGravity/pendulumLength*math.Sin(p.theta) - pendulumDamping*p.thetaDot + action[0]
	p.thetaDot = clampAbs(p.thetaDot+pendulumTimestep*acc, pendulumMaxSpeed)
	p.theta = wrapAngle(p.theta + pendulumTimestep*p.thetaDot)
}

func (p *pendulum) observe() env.Observation {
	sin, cos := math.Sincos(p.theta)
	return env.NewObservation().
		With("orientation", env.Vector(cos, sin)).
		With("velocity", env.Vector(p.thetaDot))
}

func (p *pendulum) reward([]float64) float64 {
	return tolerance(math.Cos(p.theta), pendulumUprightCos, 1, 0)
}
