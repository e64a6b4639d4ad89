package environment

import ts "github.com/samuelfneumann/gonav/timestep"

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// Limit returns the number of steps after which episodes are ended
func (s StepLimit) Limit() int {
	return s.episodeSteps
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// has reached the step limit and has not already ended for another
// reason, End() marks the timestep as the last of its episode with
// EndType timestep.MaxSteps. A timestep that already ended keeps its
// original reason.
func (s StepLimit) End(t *ts.TimeStep) bool {
	if t.Last() {
		return true
	}
	if t.Number >= s.episodeSteps {
		t.SetEnd(ts.MaxSteps)
		return true
	}
	return false
}
