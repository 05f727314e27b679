package suite

import (
	"math"
	"math/rand/v2"

	"github.com/roach88/suitecheck/internal/env"
)

const (
	pointMassTimestep   = 0.02
	pointMassGain       = 1.0
	pointMassDamping    = 1.0
	pointMassArena      = 0.3
	pointMassTargetSize = 0.015
)

type pointMass struct {
	randomizeGains bool
	gains          [2][2]float64

	pos, vel [2]float64
}

// NewPointMass is the Factory of the "point_mass" domain.
func NewPointMass(model *StaticModel, task TaskSpec, opts TaskOptions) (env.Environment, error) {
	actionSpec, err := env.UniformBounds("tendons", 2, -1, 1)
	if err != nil {
		return nil, err
	}
	obsSpec, err := env.NewObservationSpec(
		env.ArraySpec{Name: "position", Shape: []int{2}, DType: env.Float64},
		env.ArraySpec{Name: "velocity", Shape: []int{2}, DType: env.Float64},
	)
	if err != nil {
		return nil, err
	}
	dyn := &pointMass{randomizeGains: task.RandomizeGains}
	return newEpisodic(model, task, opts, actionSpec, obsSpec, dyn), nil
}

// initialize places the mass uniformly in the arena. With randomized gains
// the two actuators drive orthonormal but random directions.
func (p *pointMass) initialize(src rand.Source) {
	p.gains = [2][2]float64{{1, 0}, {0, 1}}
	if p.randomizeGains {
		angle := uniform(src, 0, 2*math.Pi)
		sin, cos := math.Sincos(angle)
		p.gains = [2][2]float64{{cos, -sin}, {sin, cos}}
	}
	for i := range p.pos {
		p.pos[i] = uniform(src, -pointMassArena, pointMassArena)
		p.vel[i] = 0
	}
}

func (p *pointMass) advance(action []float64) {
	for i := range p.pos {
		force := pointMassGain * (p.gains[i][0]*action[0] + p.gains[i][1]*action[1])
		p.vel[i] += pointMassTimestep * (force - pointMassDamping*p.vel[i])
		p.pos[i] += pointMassTimestep * p.vel[i]
		// Walls are inelastic.
		if p.pos[i] > pointMassArena {
			p.pos[i], p.vel[i] = pointMassArena, 0
		} else if p.pos[i] < -pointMassArena {
			p.pos[i], p.vel[i] = -pointMassArena, 0
		}
	}
}

func (p *pointMass) observe() env.Observation {
	return env.NewObservation().
		With("position", env.Vector(p.pos[0], p.pos[1])).
		With("velocity", env.Vector(p.vel[0], p.vel[1]))
}

func (p *pointMass) reward(action []float64) float64 {
	dist := math.Hypot(p.pos[0], p.pos[1])
	near := tolerance(dist, 0, pointMassTargetSize, 2*pointMassArena)
	control := (tolerance(action[0], 0, 0, 1) + tolerance(action[1], 0, 0, 1)) / 2
	smallControl := (4 + control) / 5
	return near * smallControl
}
