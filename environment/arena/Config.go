package arena

import (
	"math"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// Default physical parameters of the arena
const (
	DefaultWidth           float64 = 10.0
	DefaultHeight          float64 = 10.0
	DefaultMinObstacles    int     = 3
	DefaultMaxObstacles    int     = 8
	DefaultClearance       float64 = 0.4
	DefaultMinGoalDistance float64 = 2.0
	DefaultRobotRadius     float64 = 0.15
	DefaultMaxLinear       float64 = 0.5
	DefaultMaxAngular      float64 = 2.0
	DefaultHeadingGain     float64 = 2.5
	DefaultGoalTolerance   float64 = 0.05
	DefaultTimeStep        float64 = 0.2
	DefaultPlanSpacing     float64 = 0.25
	DefaultBeams           int     = 360
	DefaultMaxRange        float64 = 3.5
)

// Config describes the arena: its size, how obstacles are scattered,
// the robot, the laser, and the local controller which drives the
// robot toward navigation targets
type Config struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	MinObstacles   int         `json:"min_obstacles"`
	MaxObstacles   int         `json:"max_obstacles"`
	ObstacleRadius r1.Interval `json:"obstacle_radius"`

	// Clearance is the free space kept between any two entities (and
	// between entities and walls) when a scenario is sampled
	Clearance       float64 `json:"clearance"`
	MinGoalDistance float64 `json:"min_goal_distance"`

	RobotRadius   float64 `json:"robot_radius"`
	MaxLinear     float64 `json:"max_linear"`
	MaxAngular    float64 `json:"max_angular"`
	HeadingGain   float64 `json:"heading_gain"`
	GoalTolerance float64 `json:"goal_tolerance"`

	Beams    int     `json:"beams"`
	MaxRange float64 `json:"max_range"`

	TimeStep    float64 `json:"time_step"` // simulated seconds per tick
	PlanSpacing float64 `json:"plan_spacing"`
}

// DefaultConfig returns the default arena configuration
func DefaultConfig() Config {
	return Config{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		MinObstacles:    DefaultMinObstacles,
		MaxObstacles:    DefaultMaxObstacles,
		ObstacleRadius:  r1.Interval{Min: 0.2, Max: 0.6},
		Clearance:       DefaultClearance,
		MinGoalDistance: DefaultMinGoalDistance,
		RobotRadius:     DefaultRobotRadius,
		MaxLinear:       DefaultMaxLinear,
		MaxAngular:      DefaultMaxAngular,
		HeadingGain:     DefaultHeadingGain,
		GoalTolerance:   DefaultGoalTolerance,
		Beams:           DefaultBeams,
		MaxRange:        DefaultMaxRange,
		TimeStep:        DefaultTimeStep,
		PlanSpacing:     DefaultPlanSpacing,
	}
}

// Validate returns a configuration error if the Config does not
// describe a usable arena
func (c Config) Validate() error {
	positive := map[string]float64{
		"width":        c.Width,
		"height":       c.Height,
		"robot radius": c.RobotRadius,
		"max linear":   c.MaxLinear,
		"max angular":  c.MaxAngular,
		"heading gain": c.HeadingGain,
		"max range":    c.MaxRange,
		"time step":    c.TimeStep,
		"plan spacing": c.PlanSpacing,
	}
	for name, value := range positive {
		if !(value > 0) || !floatutils.IsFinite(value) {
			return env.ConfigurationError("validate",
				"arena %v must be positive, got %v", name, value)
		}
	}

	if c.Beams < 1 {
		return env.ConfigurationError("validate",
			"arena must have at least one laser beam, got %v", c.Beams)
	}
	if c.MinObstacles < 0 || c.MaxObstacles < c.MinObstacles {
		return env.ConfigurationError("validate",
			"illegal obstacle count range [%v, %v]", c.MinObstacles,
			c.MaxObstacles)
	}
	if c.MaxObstacles > 0 && (!(c.ObstacleRadius.Min > 0) ||
		c.ObstacleRadius.Max < c.ObstacleRadius.Min) {
		return env.ConfigurationError("validate",
			"illegal obstacle radius range [%v, %v]", c.ObstacleRadius.Min,
			c.ObstacleRadius.Max)
	}
	if c.Clearance < 0 || c.MinGoalDistance < 0 || c.GoalTolerance < 0 {
		return env.ConfigurationError("validate",
			"clearance, goal distance, and goal tolerance must be "+
				"non-negative")
	}

	margin := 2 * (c.RobotRadius + c.Clearance)
	if c.MinGoalDistance >= math.Hypot(c.Width-margin, c.Height-margin) {
		return env.ConfigurationError("validate",
			"goal distance %v cannot fit in a %vx%v arena",
			c.MinGoalDistance, c.Width, c.Height)
	}

	return nil
}
