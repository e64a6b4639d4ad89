package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType tells whether a Spec describes the raw action a policy
// emits or the merged observation it receives
type SpecType int

const (
	Action SpecType = iota
	Observation
)

// Cardinality tells whether the values a Spec describes are discrete
// (an index into the action table) or continuous (a heading, ranges)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the layout of a vector exchanged with a policy.
//
// Action specs have a single feature: the table index in discrete
// mode, or the heading angle in continuous mode. Observation specs list
// the stacked laser scans, oldest first, followed by the goal distance,
// goal bearing, linear speed, and angular speed.
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec returns a new Spec. The lengths of shape and both bounds
// must agree.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	n := shape.Len()
	if n != lowerBound.Len() || n != upperBound.Len() {
		panic(fmt.Sprintf("newSpec: shape length %v, lower bound length "+
			"%v, and upper bound length %v differ", n, lowerBound.Len(),
			upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Len returns the number of features the Spec describes
func (s Spec) Len() int {
	return s.Shape.Len()
}

// Bounds returns the interval feature i is bounded to
func (s Spec) Bounds(i int) r1.Interval {
	return r1.Interval{Min: s.LowerBound.AtVec(i), Max: s.UpperBound.AtVec(i)}
}
