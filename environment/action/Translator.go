// Package action implements the translation of raw policy actions
// into navigation commands.
//
// An action space is either Discrete, where an action indexes a fixed
// ordered table of velocity commands, or Continuous, where an action
// is a heading angle along which a navigation target is projected at
// a fixed radius from the robot:
//
//	target.x = robot.x + radius*cos(angle)
//	target.y = robot.y + radius*sin(angle)
package action

import (
	"math"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
	"github.com/samuelfneumann/gonav/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"
)

// Dims is the dimension of raw actions in both action spaces
const Dims int = 1

// Entry is a single named velocity command in a discrete action table
type Entry struct {
	Name    string  `json:"name"`
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// Space is an action space. It is one of Discrete or Continuous.
type Space interface {
	// Translate turns a raw action into a command given the current
	// robot pose. Illegal actions are reported as contract violations.
	Translate(a mat.Vector, robot observation.Pose) (env.Command, error)

	// Stop returns the neutral command issued when an episode starts
	Stop() env.Command

	// Spec returns the action specification
	Spec() env.Spec
}

// Discrete is an action space where actions index a fixed ordered
// table of (linear, angular) velocity commands. Translation yields a
// velocity command with no geometric projection.
type Discrete struct {
	table []Entry
}

// NewDiscrete returns a new Discrete action space over table
func NewDiscrete(table []Entry) (*Discrete, error) {
	if len(table) == 0 {
		return nil, env.ConfigurationError("newDiscrete",
			"discrete action space requires a non-empty action table")
	}
	return &Discrete{table: append([]Entry(nil), table...)}, nil
}

// Len returns the number of actions in the table
func (d *Discrete) Len() int {
	return len(d.table)
}

// At returns the table entry at index i
func (d *Discrete) At(i int) Entry {
	return d.table[i]
}

// Translate returns the velocity command at the index given by a
func (d *Discrete) Translate(a mat.Vector,
	_ observation.Pose) (env.Command, error) {
	if err := validateDims(a); err != nil {
		return env.Command{}, err
	}

	value := a.AtVec(0)
	if !floatutils.IsFinite(value) || value != math.Trunc(value) {
		return env.Command{}, env.ContractViolation("translate",
			"discrete action %v is not an integer", value)
	}

	index := int(value)
	if index < 0 || index >= len(d.table) {
		return env.Command{}, env.ContractViolation("translate",
			"illegal action %v ∉ [0, %v)", index, len(d.table))
	}

	entry := d.table[index]
	return env.NewVelocity(entry.Name, entry.Linear, entry.Angular), nil
}

// Stop returns a zero velocity command
func (d *Discrete) Stop() env.Command {
	return env.NewVelocity("stop", 0, 0)
}

// Spec returns the action specification of the action space
func (d *Discrete) Spec() env.Spec {
	shape := mat.NewVecDense(Dims, nil)
	lowerBound := mat.NewVecDense(Dims, []float64{0})
	upperBound := mat.NewVecDense(Dims, []float64{float64(len(d.table) - 1)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// Continuous is an action space where an action is a heading angle in
// radians. Translation projects a navigation target at a fixed radius
// from the robot along the heading.
type Continuous struct {
	bounds r1.Interval
	radius float64
}

// NewContinuous returns a new Continuous action space. Angles are
// clipped to bounds and targets are projected radius units away from
// the robot.
func NewContinuous(bounds r1.Interval, radius float64) (*Continuous,
	error) {
	if !(bounds.Min < bounds.Max) {
		return nil, env.ConfigurationError("newContinuous",
			"angular range [%v, %v] is empty", bounds.Min, bounds.Max)
	}
	if !(radius > 0) || !floatutils.IsFinite(radius) {
		return nil, env.ConfigurationError("newContinuous",
			"projection radius must be positive, got %v", radius)
	}
	return &Continuous{bounds: bounds, radius: radius}, nil
}

// Radius returns the projection radius
func (c *Continuous) Radius() float64 {
	return c.radius
}

// Bounds returns the legal range of heading angles
func (c *Continuous) Bounds() r1.Interval {
	return c.bounds
}

// Translate returns a goal command projected from the robot along the
// heading given by a
func (c *Continuous) Translate(a mat.Vector,
	robot observation.Pose) (env.Command, error) {
	if err := validateDims(a); err != nil {
		return env.Command{}, err
	}

	angle := a.AtVec(0)
	if !floatutils.IsFinite(angle) {
		return env.Command{}, env.ContractViolation("translate",
			"continuous action %v is not finite", angle)
	}
	angle = floatutils.ClipInterval(angle, c.bounds)

	offset := r2.Scale(c.radius, r2.Vec{X: math.Cos(angle),
		Y: math.Sin(angle)})
	return env.NewGoal(r2.Add(robot.Vec(), offset), angle), nil
}

// Stop returns a stop command, cancelling the current navigation
// target of the local planner
func (c *Continuous) Stop() env.Command {
	return env.NewStop()
}

// Spec returns the action specification of the action space
func (c *Continuous) Spec() env.Spec {
	shape := mat.NewVecDense(Dims, nil)
	lowerBound := mat.NewVecDense(Dims, []float64{c.bounds.Min})
	upperBound := mat.NewVecDense(Dims, []float64{c.bounds.Max})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Continuous)
}

func validateDims(a mat.Vector) error {
	if a == nil || a.Len() != Dims {
		n := 0
		if a != nil {
			n = a.Len()
		}
		return env.ContractViolation("translate",
			"actions should be %v-dimensional, got %v dimensions", Dims, n)
	}
	return nil
}
