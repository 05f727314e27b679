package suite

import (
	"math"
	"math/rand/v2"

	"github.com/roach88/suitecheck/internal/env"
)

// Cart-pole constants. The pole is a uniform rod hinged on the cart.
const (
	cartpoleGravity    = 9.81
	cartpoleCartMass   = 1.0
	cartpolePoleMass   = 0.1
	cartpoleHalfLength = 0.5
	cartpoleForceGain  = 10.0
	cartpoleTimestep   = 0.01
	cartpoleSubsteps   = 1
	cartpoleMaxSpeed   = 50.0
)

type cartpole struct {
	swingUp bool
	sparse  bool

	x, theta, xDot, thetaDot float64
}

// NewCartpole is the Factory of the "cartpole" domain.
func NewCartpole(model *StaticModel, task TaskSpec, opts TaskOptions) (env.Environment, error) {
	actionSpec, err := env.UniformBounds("slide", 1, -1, 1)
	if err != nil {
		return nil, err
	}
	obsSpec, err := env.NewObservationSpec(
		env.ArraySpec{Name: "position", Shape: []int{3}, DType: env.Float64},
		env.ArraySpec{Name: "velocity", Shape: []int{2}, DType: env.Float64},
	)
	if err != nil {
		return nil, err
	}
	dyn := &cartpole{swingUp: task.SwingUp, sparse: task.Sparse}
	return newEpisodic(model, task, opts, actionSpec, obsSpec, dyn), nil
}

func (c *cartpole) initialize(src rand.Source) {
	if c.swingUp {
		c.x = jitter(src, 0.01)
		c.theta = math.Pi + jitter(src, 0.01)
		c.xDot = jitter(src, 0.01)
		c.thetaDot = jitter(src, 0.01)
		return
	}
	c.x = uniform(src, -0.25, 0.25)
	c.theta = uniform(src, -0.034, 0.034)
	c.xDot = jitter(src, 0.01)
	c.thetaDot = jitter(src, 0.01)
}

func (c *cartpole) advance(action []float64) {
	force := cartpoleForceGain * action[0]
	total := cartpoleCartMass + cartpolePoleMass
	poleMoment := cartpolePoleMass * cartpoleHalfLength

	dt := cartpoleTimestep / cartpoleSubsteps
	for i := 0; i < cartpoleSubsteps; i++ {
		sin, cos := math.Sincos(c.theta)
		temp := (force + poleMoment*c.thetaDot*c.thetaDot*sin) / total
		thetaAcc := (cartpoleGravity*sin - cos*temp) /
			(cartpoleHalfLength * (4.0/3.0 - cartpolePoleMass*cos*cos/total))
		xAcc := temp - poleMoment*thetaAcc*cos/total

		c.xDot = clampAbs(c.xDot+dt*xAcc, cartpoleMaxSpeed)
		c.thetaDot = clampAbs(c.thetaDot+dt*thetaAcc, cartpoleMaxSpeed)
		c.x += dt * c.xDot
		c.theta = wrapAngle(c.theta + dt*c.thetaDot)
	}
}

func (c *cartpole) observe() env.Observation {
	sin, cos := math.Sincos(c.theta)
	return env.NewObservation().
		With("position", env.Vector(c.x, cos, sin)).
		With("velocity", env.Vector(c.xDot, c.thetaDot))
}

// reward follows the balance/swingup shaping: the pole angle gates the
// reward; the smooth variant also rewards a centred cart, small control and
// a slow pole.
func (c *cartpole) reward(action []float64) float64 {
	cos := math.Cos(c.theta)
	if c.sparse {
		return tolerance(c.x, -0.25, 0.25, 0) * tolerance(cos, 0.995, 1, 0)
	}
	upright := (cos + 1) / 2
	centered := (1 + tolerance(c.x, -0.25, 0.25, 2)) / 2
	smallControl := (4 + tolerance(action[0], 0, 0, 1)) / 5
	smallVelocity := (1 + tolerance(c.thetaDot, 0, 0, 5)) / 2
	return upright * centered * smallControl * smallVelocity
}
