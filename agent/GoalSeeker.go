package agent

import (
	"math"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/environment/action"
	"github.com/samuelfneumann/gonav/observation"
	ts "github.com/samuelfneumann/gonav/timestep"
	"github.com/samuelfneumann/gonav/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Default GoalSeeker parameters
const (
	DefaultSeekerClearance     float64 = 0.6
	DefaultSeekerCone          float64 = math.Pi / 8
	DefaultSeekerHistoryLength int     = 3
	DefaultSeekerTurnGain      float64 = 1.0
)

// GoalSeekerConfig configures a GoalSeeker agent. Zero valued fields
// take their defaults.
type GoalSeekerConfig struct {
	// Clearance is the range below which a beam is considered blocked
	Clearance float64

	// Cone is the half-angle of the cone around the goal bearing which
	// must be free for the GoalSeeker to head straight for the goal
	Cone float64

	// HistoryLength is the number of recent scans an obstacle must be
	// absent from for a beam to be considered free
	HistoryLength int

	// TurnGain converts a bearing into a desired angular speed when
	// acting in a discrete action space
	TurnGain float64

	// Table is the discrete action table. It is required only for
	// discrete action spaces.
	Table []action.Entry
}

// CreateAgent creates a GoalSeeker agent acting in actionSpec
func (g GoalSeekerConfig) CreateAgent(actionSpec env.Spec,
	_ uint64) (Agent, error) {
	return NewGoalSeeker(g, actionSpec)
}

// Validate returns an error if the Config is invalid
func (g GoalSeekerConfig) Validate() error {
	if g.Clearance < 0 || g.Cone < 0 || g.HistoryLength < 0 ||
		g.TurnGain < 0 {
		return errors.New("validate: goal seeker parameters must be " +
			"non-negative")
	}
	return nil
}

// Type returns the Type of agent the Config creates
func (g GoalSeekerConfig) Type() Type {
	return GoalSeekerType
}

func (g GoalSeekerConfig) withDefaults() GoalSeekerConfig {
	if g.Clearance == 0 {
		g.Clearance = DefaultSeekerClearance
	}
	if g.Cone == 0 {
		g.Cone = DefaultSeekerCone
	}
	if g.HistoryLength == 0 {
		g.HistoryLength = DefaultSeekerHistoryLength
	}
	if g.TurnGain == 0 {
		g.TurnGain = DefaultSeekerTurnGain
	}
	return g
}

// GoalSeeker is a scripted agent which heads for the goal. If any of
// the recent scans shows an obstacle in a cone around the goal
// bearing, it instead heads for the free direction closest to the goal.
//
// In a continuous action space, the GoalSeeker outputs the world frame
// heading to go in. In a discrete action space, it outputs the index of
// the table entry whose angular speed best matches the turn needed.
type GoalSeeker struct {
	nonLearning
	config     GoalSeekerConfig
	continuous bool
	bounds     r1.Interval
	history    *observation.History
}

// NewGoalSeeker returns a new GoalSeeker agent acting in actionSpec
func NewGoalSeeker(c GoalSeekerConfig, actionSpec env.Spec) (*GoalSeeker,
	error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.withDefaults()

	if actionSpec.Len() != action.Dims {
		return nil, errors.Errorf("newGoalSeeker: actions must be "+
			"%v-dimensional", action.Dims)
	}
	continuous := actionSpec.Cardinality == env.Continuous
	if !continuous && len(c.Table) == 0 {
		return nil, errors.New("newGoalSeeker: a discrete action space " +
			"requires the action table")
	}

	return &GoalSeeker{
		config:     c,
		continuous: continuous,
		bounds:     actionSpec.Bounds(0),
		history:    observation.NewHistory(c.HistoryLength),
	}, nil
}

// SelectAction returns the action to take at timestep t
func (g *GoalSeeker) SelectAction(t ts.TimeStep) *mat.VecDense {
	if t.First() {
		g.history.Reset()
	}
	if len(t.Frame.Scan) > 0 {
		g.history.Push(t.Frame.Scan)
	}

	bearing := g.bearing(t.Frame)
	if g.continuous {
		heading := floatutils.NormalizeAngle(t.Frame.Robot.Theta + bearing)
		heading = floatutils.ClipInterval(heading, g.bounds)
		return mat.NewVecDense(action.Dims, []float64{heading})
	}

	index := float64(g.closestTurn(g.config.TurnGain * bearing))
	return mat.NewVecDense(action.Dims, []float64{index})
}

// bearing returns the bearing, relative to the robot heading, to head
// in
func (g *GoalSeeker) bearing(f observation.Frame) float64 {
	ranges := g.clearances()
	beams := len(ranges)
	if beams == 0 {
		return f.Goal.Theta
	}

	beamWidth := 2 * math.Pi / float64(beams)
	angleOf := func(i int) float64 {
		return floatutils.NormalizeAngle(float64(i) * beamWidth)
	}

	blocked := false
	for i, r := range ranges {
		diff := math.Abs(floatutils.NormalizeAngle(angleOf(i) - f.Goal.Theta))
		if diff <= g.config.Cone && r < g.config.Clearance {
			blocked = true
			break
		}
	}
	if !blocked {
		return f.Goal.Theta
	}

	// Head along the free beam closest to the goal, preferring the most
	// open one if no beam is free
	best, bestDiff := -1, math.Inf(1)
	widest := 0
	for i, r := range ranges {
		if r > ranges[widest] {
			widest = i
		}
		if r < g.config.Clearance {
			continue
		}
		diff := math.Abs(floatutils.NormalizeAngle(angleOf(i) - f.Goal.Theta))
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best < 0 {
		best = widest
	}
	return angleOf(best)
}

// clearances returns, per beam, the minimum range over the recent scans
func (g *GoalSeeker) clearances() []float64 {
	stacked := g.history.Tensor()
	if stacked == nil {
		return nil
	}

	shape := stacked.Shape()
	frames, beams := shape[0], shape[1]
	ranges := make([]float64, beams)
	for j := 0; j < beams; j++ {
		ranges[j] = math.Inf(1)
		for i := 0; i < frames; i++ {
			v, err := stacked.At(i, j)
			if err != nil {
				panic(errors.Wrap(err, "clearances"))
			}
			ranges[j] = math.Min(ranges[j], v.(float64))
		}
	}
	return ranges
}

// closestTurn returns the index of the table entry whose angular speed
// is closest to angular, preferring faster entries on ties
func (g *GoalSeeker) closestTurn(angular float64) int {
	best := 0
	for i, entry := range g.config.Table {
		diff := math.Abs(entry.Angular - angular)
		bestDiff := math.Abs(g.config.Table[best].Angular - angular)
		if diff < bestDiff || (diff == bestDiff &&
			entry.Linear > g.config.Table[best].Linear) {
			best = i
		}
	}
	return best
}
