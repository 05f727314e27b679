package harness

import (
	"fmt"

	"github.com/roach88/suitecheck/internal/env"
	"github.com/roach88/suitecheck/internal/policy"
)

// Stepper is a pull-based trajectory over a fixed number of episodes.
//
// Each episode starts with Reset and continues with policy actions until the
// environment returns a Last TimeStep or maxSteps steps have been taken in
// the episode. A truncated episode ends on whatever step type the
// environment produced; no Last step is synthesized.
//
// A Stepper consumes its environment and cannot be rewound. Build a new one
// with a fresh environment to replay a trajectory. It is not safe for
// concurrent use.
type Stepper struct {
	env      env.Environment
	policy   policy.Policy
	episodes int
	maxSteps int

	episode   int
	stepCount int
	index     int
	current   env.TimeStep
	inEpisode bool
	done      bool
	err       error
}

// NewStepper returns a stepper running episodes episodes of at most maxSteps
// steps each. A maxSteps below 1 still takes one step per episode, since the
// cap is checked after each step.
func NewStepper(e env.Environment, p policy.Policy, episodes, maxSteps int) *Stepper {
	return &Stepper{
		env:      e,
		policy:   p,
		episodes: episodes,
		maxSteps: maxSteps,
		index:    -1,
	}
}

// Next advances to the next TimeStep. It returns false when the trajectory
// is exhausted or the environment failed; check Err to tell them apart.
func (s *Stepper) Next() bool {
	if s.done {
		return false
	}

	if s.inEpisode && !s.current.IsLast() && !s.capped() {
		action := s.policy(s.current)
		ts, err := s.env.Step(action)
		if err != nil {
			return s.fail(fmt.Errorf("episode %d: step %d: %w", s.episode, s.stepCount+1, err))
		}
		s.current = ts
		s.stepCount++
		s.index++
		return true
	}

	if s.inEpisode {
		s.episode++
		s.inEpisode = false
	}
	if s.episode >= s.episodes {
		s.done = true
		return false
	}

	ts, err := s.env.Reset()
	if err != nil {
		return s.fail(fmt.Errorf("episode %d: reset: %w", s.episode, err))
	}
	s.current = ts
	s.stepCount = 0
	s.index++
	s.inEpisode = true
	return true
}

func (s *Stepper) capped() bool {
	return s.stepCount > 0 && s.stepCount >= s.maxSteps
}

func (s *Stepper) fail(err error) bool {
	s.err = err
	s.done = true
	return false
}

// TimeStep returns the TimeStep produced by the last successful Next.
func (s *Stepper) TimeStep() env.TimeStep { return s.current }

// Episode returns the zero-based episode of the current TimeStep.
func (s *Stepper) Episode() int { return s.episode }

// Index returns the zero-based position of the current TimeStep in the
// whole trajectory.
func (s *Stepper) Index() int { return s.index }

// StepInEpisode returns the number of steps taken in the current episode.
// It is 0 for the First TimeStep.
func (s *Stepper) StepInEpisode() int { return s.stepCount }

// Err returns the environment error that stopped the trajectory, if any.
func (s *Stepper) Err() error { return s.err }

// Collect drains s and returns every TimeStep it produced.
func Collect(s *Stepper) ([]env.TimeStep, error) {
	steps := []env.TimeStep{}
	for s.Next() {
		steps = append(steps, s.TimeStep())
	}
	return steps, s.Err()
}
