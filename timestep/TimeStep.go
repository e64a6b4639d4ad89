// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"github.com/samuelfneumann/gonav/observation"
	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes why an episode ended. The numeric values of the
// terminal reasons are stable and are reported to callers in the
// "done_reason" info entry.
type EndType int

const (
	None        EndType = -1
	MaxSteps    EndType = 0 // step budget exhausted
	Collision   EndType = 1 // clearance fell below the safe distance
	GoalReached EndType = 2
)

func (e EndType) String() string {
	switch e {
	case MaxSteps:
		return "MaxSteps"
	case Collision:
		return "Collision"
	case GoalReached:
		return "GoalReached"
	default:
		return "None"
	}
}

// DoneReasonKey is the Info key under which the EndType of a terminal
// TimeStep is reported
const DoneReasonKey string = "done_reason"

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	EndType

	Reward float64

	// Observation is the merged observation handed to a policy: stacked
	// scans followed by the auxiliary goal and speed features
	Observation *mat.VecDense

	// Frame is the raw observation the TimeStep was built from
	Frame observation.Frame

	Number  int // step number within the episode
	Episode int

	// Info holds the done reason on the terminal step only
	Info map[string]float64

	// Metrics are auxiliary values computed by the reward evaluator
	Metrics map[string]float64
}

// New returns a new TimeStep
func New(t StepType, r float64, o *mat.VecDense, f observation.Frame,
	n, episode int) TimeStep {
	return TimeStep{
		StepType:    t,
		EndType:     None,
		Reward:      r,
		Observation: o,
		Frame:       f,
		Number:      n,
		Episode:     episode,
		Info:        map[string]float64{},
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd marks the TimeStep as the last in its episode and records
// why the episode ended in both the EndType and the Info map
func (t *TimeStep) SetEnd(e EndType) {
	t.StepType = Last
	t.EndType = e
	if t.Info == nil {
		t.Info = map[string]float64{}
	}
	t.Info[DoneReasonKey] = float64(e)
}

func (t TimeStep) String() string {
	str := "TimeStep | Episode: %v  |  Type: %v  |  Reward:  %.2f  |  " +
		"Step Number:  %v  |  End: %v"

	return fmt.Sprintf(str, t.Episode, t.StepType, t.Reward, t.Number,
		t.EndType)
}
