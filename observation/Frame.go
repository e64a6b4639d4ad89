// Package observation implements the sensor frames consumed by the
// navigation control loop and the temporal history of laser scans
// that is stacked to form the input of a policy.
package observation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// Pose is the position and heading of the robot in the world frame
type Pose struct {
	X, Y  float64
	Theta float64
}

// Vec returns the position of the pose
func (p Pose) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Speed is the current linear and angular speed of the robot
type Speed struct {
	Linear  float64
	Angular float64
}

// Polar is a point given in polar coordinates relative to the robot:
// Rho is the distance and Theta the bearing from the robot's heading.
type Polar struct {
	Rho   float64
	Theta float64
}

// Frame is a single structured observation produced by an observation
// provider. A Frame is read-only once produced.
type Frame struct {
	Robot      Pose
	Speed      Speed
	Goal       Polar // goal in the robot frame
	Scan       []float64
	GlobalPlan []r2.Vec
}

// DistanceToGoal returns the distance from the robot to the goal
func (f Frame) DistanceToGoal() float64 {
	return f.Goal.Rho
}

// MinRange returns the minimum range in the laser scan, or +Inf if
// the scan is empty
func (f Frame) MinRange() float64 {
	if len(f.Scan) == 0 {
		return math.Inf(1)
	}
	return floats.Min(f.Scan)
}

// Validate checks that the frame has the expected number of laser beams
// with every range in [0, maxRange], and that the goal is a finite,
// non-negative distance at a finite bearing
func (f Frame) Validate(beams int, maxRange float64) error {
	if len(f.Scan) != beams {
		return fmt.Errorf("validate: expected %v laser beams, got %v",
			beams, len(f.Scan))
	}
	for i, r := range f.Scan {
		if r < 0 || r > maxRange || math.IsNaN(r) {
			return fmt.Errorf("validate: beam %v has range %v outside "+
				"[0, %v]", i, r, maxRange)
		}
	}
	if !finite(f.Goal.Rho) || !finite(f.Goal.Theta) || f.Goal.Rho < 0 {
		return fmt.Errorf("validate: illegal goal (%v, %v)", f.Goal.Rho,
			f.Goal.Theta)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// AuxiliaryFeatures is the number of scalar features appended after the
// stacked scans by Merge
const AuxiliaryFeatures int = 4

// Merge builds the observation vector handed to a policy. The stacked
// scans come first (oldest scan first), followed by the goal distance,
// goal bearing, linear speed, and angular speed.
func Merge(stack *mat.VecDense, f Frame) *mat.VecDense {
	n := 0
	if stack != nil {
		n = stack.Len()
	}

	data := make([]float64, n+AuxiliaryFeatures)
	for i := 0; i < n; i++ {
		data[i] = stack.AtVec(i)
	}
	data[n] = f.Goal.Rho
	data[n+1] = f.Goal.Theta
	data[n+2] = f.Speed.Linear
	data[n+3] = f.Speed.Angular

	return mat.NewVecDense(len(data), data)
}
