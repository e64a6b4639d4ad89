// Package agent defines an agent interface and the scripted policies
// used to drive the waypoint navigation environment
package agent

import (
	ts "github.com/samuelfneumann/gonav/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns from the transitions
// it observes, and a Policy which chooses actions in each state.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm. Learners are told about
// every timestep in the order in which the environment produces them.
type Learner interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs ts.TimeStep) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(ts.TimeStep) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have. Policies determine
// how agents select actions.
type Policy interface {
	SelectAction(t ts.TimeStep) *mat.VecDense
}

// nonLearning implements the Learner interface for agents which never
// learn
type nonLearning struct{}

func (nonLearning) Step() error { return nil }

func (nonLearning) Observe(mat.Vector, ts.TimeStep) error { return nil }

func (nonLearning) ObserveFirst(ts.TimeStep) error { return nil }

func (nonLearning) EndEpisode() {}
