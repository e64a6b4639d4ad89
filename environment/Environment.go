// Package environment outlines the interfaces and structs needed to
// implement the navigation control loop and the external
// collaborators it talks to
package environment

import (
	"context"

	"github.com/samuelfneumann/gonav/observation"
	ts "github.com/samuelfneumann/gonav/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should end
type Ender interface {
	End(*ts.TimeStep) bool
}

// RewardResult is the outcome of evaluating a single control cycle
type RewardResult struct {
	Reward     float64
	Done       bool
	DoneReason ts.EndType
	Metrics    map[string]float64
}

// Task implements the reward and termination scheme of an episode.
//
// Reset clears any rolling state the Task keeps between cycles. If
// first is non-nil, the rolling state is seeded from the first frame
// of the new episode.
type Task interface {
	Evaluate(f observation.Frame) RewardResult
	Reset(first *observation.Frame)
}

// Observer provides structured observations of the world
type Observer interface {
	Observe(ctx context.Context) (observation.Frame, error)
}

// Regenerator produces a new start, goal, and obstacle configuration.
// It must reposition the robot, goal, and obstacles before the next
// observation is requested.
type Regenerator interface {
	Reset(ctx context.Context) error
}

// Publisher dispatches commands to the robot. Publishing is fire and
// forget: no acknowledgement is awaited.
type Publisher interface {
	Publish(Command)
}

// Stepper asks a simulator to advance exactly one discrete tick,
// blocking until the tick has elapsed
type Stepper interface {
	StepWorld(ctx context.Context) error
}

// Environment implements an episodic navigation environment
type Environment interface {
	Reset(ctx context.Context) (ts.TimeStep, error)
	Step(ctx context.Context, action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep
	ObservationSpec() Spec
	ActionSpec() Spec
}
