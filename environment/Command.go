package environment

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// CommandKind determines how a Command should be interpreted
type CommandKind int

const (
	// Goal commands carry a world frame navigation target for a local
	// planner to drive to
	Goal CommandKind = iota

	// Velocity commands carry low-level linear and angular speeds
	Velocity

	// Stop commands cancel any target and hold the robot still
	Stop
)

func (c CommandKind) String() string {
	switch c {
	case Velocity:
		return "Velocity"
	case Stop:
		return "Stop"
	default:
		return "Goal"
	}
}

// Command is a navigation target or velocity command dispatched to the
// robot once per control cycle
type Command struct {
	Kind CommandKind

	// Goal commands
	Target  r2.Vec
	Heading float64

	// Velocity commands
	Linear  float64
	Angular float64
	Name    string
}

// NewGoal returns a goal command at target with the given heading
func NewGoal(target r2.Vec, heading float64) Command {
	return Command{Kind: Goal, Target: target, Heading: heading}
}

// NewVelocity returns a velocity command
func NewVelocity(name string, linear, angular float64) Command {
	return Command{Kind: Velocity, Name: name, Linear: linear,
		Angular: angular}
}

// NewStop returns a stop command
func NewStop() Command {
	return Command{Kind: Stop, Name: "stop"}
}

func (c Command) String() string {
	if c.Kind == Stop {
		return "Stop"
	}
	if c.Kind == Velocity {
		return fmt.Sprintf("Velocity(%v) | linear: %.3f | angular: %.3f",
			c.Name, c.Linear, c.Angular)
	}
	return fmt.Sprintf("Goal | x: %.3f | y: %.3f | heading: %.3f",
		c.Target.X, c.Target.Y, c.Heading)
}
