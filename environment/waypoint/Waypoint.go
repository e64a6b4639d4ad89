// Package waypoint implements the episodic waypoint navigation
// environment. At each step a policy chooses an action, which is
// translated into a navigation target (or velocity command) and
// dispatched to the robot. The simulation is then advanced, and the
// resulting observation is scored by a Task.
//
// Episodes end when the robot reaches the goal, when it comes closer
// to an obstacle than the safe distance, or when the step budget of
// the episode is exhausted. The reason an episode ended is reported in
// the "done_reason" entry of the last TimeStep's Info:
//
//	done_reason		Meaning
//	  0				Exceeded max steps
//	  1				Collision with obstacle
//	  2				Goal reached
package waypoint

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/environment/action"
	"github.com/samuelfneumann/gonav/environment/stepper"
	"github.com/samuelfneumann/gonav/observation"
	ts "github.com/samuelfneumann/gonav/timestep"
	"gonum.org/v1/gonum/mat"
)

// Phase is a state of the episode lifecycle
type Phase int

const (
	Ready Phase = iota // constructed, never reset
	Running
	Done
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "Running"
	case Done:
		return "Done"
	default:
		return "Ready"
	}
}

// EpisodeState is the lifecycle state of the current episode
type EpisodeState struct {
	Phase
	EpisodeID  int
	StepCount  int
	MaxSteps   int
	Done       bool
	DoneReason ts.EndType
}

// Config holds the components an Env is built from. Every Env must own
// its Task and History; neither may be shared with another Env.
type Config struct {
	Space         action.Space
	Task          env.Task
	Coordinator   *stepper.Coordinator
	Regenerator   env.Regenerator
	Publisher     env.Publisher
	MaxSteps      int
	HistoryLength int

	// Logger receives one line per finished episode. If nil, nothing
	// is logged.
	Logger *log.Logger
}

// Env implements the environment.Environment interface. Env is not
// safe for concurrent use: Reset and Step must be called sequentially.
type Env struct {
	space       action.Space
	task        env.Task
	history     *observation.History
	coordinator *stepper.Coordinator
	regenerator env.Regenerator
	publisher   env.Publisher
	stepLimit   env.StepLimit
	logger      *log.Logger

	state       EpisodeState
	faulted     bool
	lastPose    observation.Pose
	currentStep ts.TimeStep
}

// New returns a new Env. The Env starts in the Ready phase and must be
// reset before the first step.
func New(c Config) (*Env, error) {
	switch {
	case c.Space == nil:
		return nil, env.ConfigurationError("new", "an action space is required")
	case c.Task == nil:
		return nil, env.ConfigurationError("new", "a task is required")
	case c.Coordinator == nil:
		return nil, env.ConfigurationError("new",
			"a step coordinator is required")
	case c.Regenerator == nil:
		return nil, env.ConfigurationError("new",
			"a scenario regenerator is required")
	case c.Publisher == nil:
		return nil, env.ConfigurationError("new",
			"a command publisher is required")
	case c.MaxSteps < 1:
		return nil, env.ConfigurationError("new",
			"max steps must be positive, got %v", c.MaxSteps)
	case c.HistoryLength < 1:
		return nil, env.ConfigurationError("new",
			"history length must be positive, got %v", c.HistoryLength)
	}

	logger := c.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Env{
		space:       c.Space,
		task:        c.Task,
		history:     observation.NewHistory(c.HistoryLength),
		coordinator: c.Coordinator,
		regenerator: c.Regenerator,
		publisher:   c.Publisher,
		stepLimit:   env.NewStepLimit(c.MaxSteps),
		logger:      logger,
		state: EpisodeState{
			Phase:      Ready,
			MaxSteps:   c.MaxSteps,
			DoneReason: ts.None,
		},
	}, nil
}

// Reset starts a new episode. The scenario is regenerated, all episode
// state is cleared, the robot is sent a stop command, and the first
// observation of the new episode is returned.
//
// Reset may be called in any phase. If a collaborator fails, the Env
// is left faulted and must be reset again before stepping.
func (e *Env) Reset(ctx context.Context) (ts.TimeStep, error) {
	if err := e.regenerator.Reset(ctx); err != nil {
		e.faulted = true
		return ts.TimeStep{}, env.CollaboratorUnavailable(
			"reset: regenerate scenario", err)
	}

	e.state = EpisodeState{
		Phase:      Running,
		EpisodeID:  e.state.EpisodeID + 1,
		MaxSteps:   e.state.MaxSteps,
		DoneReason: ts.None,
	}
	e.history.Reset()
	e.task.Reset(nil)

	e.publisher.Publish(e.space.Stop())

	frame, err := e.coordinator.Advance(ctx)
	if err != nil {
		e.faulted = true
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	e.faulted = false

	e.history.Push(frame.Scan)
	e.task.Reset(&frame)
	e.lastPose = frame.Robot

	step := ts.New(ts.First, 0, observation.Merge(e.history.Stack(), frame),
		frame, 0, e.state.EpisodeID)
	e.currentStep = step

	return step, nil
}

// Step takes one control cycle given action a and returns the next
// timestep and a bool indicating whether the episode has ended.
//
// The action is translated using the robot pose of the most recent
// observation; Step never waits on a fresh observation before issuing
// the action. Stepping an Env that has not been reset, whose episode
// is done, or that is faulted is a contract violation.
func (e *Env) Step(ctx context.Context, a *mat.VecDense) (ts.TimeStep,
	bool, error) {
	if err := e.checkSteppable(); err != nil {
		return ts.TimeStep{}, false, err
	}

	cmd, err := e.space.Translate(a, e.lastPose)
	if err != nil {
		return ts.TimeStep{}, false, err
	}
	e.publisher.Publish(cmd)
	e.state.StepCount++

	frame, err := e.coordinator.Advance(ctx)
	if err != nil {
		e.faulted = true
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}

	e.history.Push(frame.Scan)
	e.lastPose = frame.Robot
	result := e.task.Evaluate(frame)

	step := ts.New(ts.Mid, result.Reward,
		observation.Merge(e.history.Stack(), frame), frame,
		e.state.StepCount, e.state.EpisodeID)
	step.Metrics = result.Metrics

	if result.Done {
		step.SetEnd(result.DoneReason)
	}

	// The step budget always ends the episode, but never overrides a
	// terminal verdict of the task
	if e.stepLimit.End(&step) {
		e.state.Phase = Done
		e.state.Done = true
		e.state.DoneReason = step.EndType
		e.logger.Printf("episode %v ended after %v steps: %v (return %.3f)",
			e.state.EpisodeID, e.state.StepCount, step.EndType,
			step.Metrics["episode_return"])
	}
	e.currentStep = step

	return step, step.Last(), nil
}

func (e *Env) checkSteppable() error {
	if e.faulted {
		return env.ContractViolation("step",
			"episode %v is faulted, reset required", e.state.EpisodeID)
	}
	switch e.state.Phase {
	case Ready:
		return env.ContractViolation("step",
			"reset must be called before the first step")
	case Done:
		return env.ContractViolation("step",
			"episode %v is done (%v), reset required", e.state.EpisodeID,
			e.state.DoneReason)
	}
	return nil
}

// State returns the lifecycle state of the current episode
func (e *Env) State() EpisodeState {
	return e.state
}

// Faulted returns whether a collaborator failed during the last Reset
// or Step
func (e *Env) Faulted() bool {
	return e.faulted
}

// History returns the stacked scan history of the current episode
func (e *Env) History() *observation.History {
	return e.history
}

// CurrentTimeStep returns the most recent TimeStep
func (e *Env) CurrentTimeStep() ts.TimeStep {
	return e.currentStep
}

// ActionSpec returns the action specification of the environment
func (e *Env) ActionSpec() env.Spec {
	return e.space.Spec()
}

// ObservationSpec returns the observation specification of the
// environment. Observations consist of the stacked scans, oldest scan
// first, followed by the distance and bearing to the goal and the
// linear and angular speed of the robot.
func (e *Env) ObservationSpec() env.Spec {
	scanFeatures := e.history.Cap() * e.coordinator.Beams()
	n := scanFeatures + observation.AuxiliaryFeatures

	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := 0; i < scanFeatures; i++ {
		upper[i] = e.coordinator.MaxRange()
	}

	aux := [][2]float64{
		{0, math.Inf(1)},            // goal distance
		{-math.Pi, math.Pi},         // goal bearing
		{math.Inf(-1), math.Inf(1)}, // linear speed
		{math.Inf(-1), math.Inf(1)}, // angular speed
	}
	for i, bounds := range aux {
		lower[scanFeatures+i] = bounds[0]
		upper[scanFeatures+i] = bounds[1]
	}

	return env.NewSpec(mat.NewVecDense(n, nil), env.Observation,
		mat.NewVecDense(n, lower), mat.NewVecDense(n, upper), env.Continuous)
}

// Close stops the robot. The Env should not be used after Close.
func (e *Env) Close() error {
	e.publisher.Publish(e.space.Stop())
	return nil
}

func (e *Env) String() string {
	return fmt.Sprintf("Waypoint  |  Episode: %v  |  Step: %v/%v  |  "+
		"Phase: %v  |  Pose: (%.2f, %.2f, %.2f)", e.state.EpisodeID,
		e.state.StepCount, e.state.MaxSteps, e.state.Phase, e.lastPose.X,
		e.lastPose.Y, e.lastPose.Theta)
}
