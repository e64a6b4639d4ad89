// Package reward implements the reward and termination scheme of the
// waypoint navigation environment.
//
// Every control cycle is first checked for the two terminal
// conditions, in order:
//
//	Condition                      Reward              Done reason
//	distance to goal < goalRadius  +GoalReward         GoalReached
//	min scan range < safeDist      CollisionReward     Collision
//
// Reaching the goal takes priority over a collision. Each terminal
// check short-circuits every other reward term. On non-terminal cycles
// the shaping terms selected by the configured rule are summed.
package reward

import (
	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
	ts "github.com/samuelfneumann/gonav/timestep"
	"github.com/samuelfneumann/gonav/utils/floatutils"
)

// Metric names reported in every RewardResult
const (
	DistanceToGoal = "distance_to_goal"
	MinClearance   = "min_clearance"
	EpisodeReturn  = "episode_return"
)

// Default reward constants
const (
	DefaultGoalReward      float64 = 15.0
	DefaultCollisionReward float64 = -10.0
	DefaultApproachWeight  float64 = 0.3
	DefaultLeaveWeight     float64 = 0.4
	DefaultTimePenalty     float64 = -0.01
	DefaultProximityBand   float64 = 0.3
	DefaultProximityWeight float64 = 0.25
	DefaultPlanWeight      float64 = 0.1
	DefaultPlanCap         float64 = 1.0
)

// Config configures an Evaluator. GoalRadius and SafeDist are safety
// relevant and are never defaulted. Zero valued weights are replaced
// by the package defaults, see WithDefaults.
type Config struct {
	GoalRadius float64 `json:"goal_radius"`
	SafeDist   float64 `json:"safe_dist"`
	Rule       Rule    `json:"rule"`

	GoalReward      float64 `json:"goal_reward,omitempty"`
	CollisionReward float64 `json:"collision_reward,omitempty"`
	ApproachWeight  float64 `json:"approach_weight,omitempty"`
	LeaveWeight     float64 `json:"leave_weight,omitempty"`
	TimePenalty     float64 `json:"time_penalty,omitempty"`
	ProximityBand   float64 `json:"proximity_band,omitempty"`
	ProximityWeight float64 `json:"proximity_weight,omitempty"`
	PlanWeight      float64 `json:"plan_weight,omitempty"`
	PlanCap         float64 `json:"plan_cap,omitempty"`
}

// WithDefaults returns a copy of the Config with every unset,
// non-critical field replaced by its default
func (c Config) WithDefaults() Config {
	setDefault := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	setDefault(&c.GoalReward, DefaultGoalReward)
	setDefault(&c.CollisionReward, DefaultCollisionReward)
	setDefault(&c.ApproachWeight, DefaultApproachWeight)
	setDefault(&c.LeaveWeight, DefaultLeaveWeight)
	setDefault(&c.TimePenalty, DefaultTimePenalty)
	setDefault(&c.ProximityBand, DefaultProximityBand)
	setDefault(&c.ProximityWeight, DefaultProximityWeight)
	setDefault(&c.PlanWeight, DefaultPlanWeight)
	setDefault(&c.PlanCap, DefaultPlanCap)
	if c.Rule == "" {
		c.Rule = DefaultRule
	}
	return c
}

// Evaluator implements the environment.Task interface. It keeps the
// distance to goal of the previous cycle and the return of the current
// episode as rolling state, both cleared by Reset.
type Evaluator struct {
	Config
	terms []term

	prevDistance  float64
	hasPrev       bool
	episodeReturn float64
}

// New returns a new Evaluator. The shaping terms are resolved from the
// configured rule once, here.
func New(c Config) (*Evaluator, error) {
	if !(c.GoalRadius > 0) || !floatutils.IsFinite(c.GoalRadius) {
		return nil, env.ConfigurationError("new",
			"goal radius must be positive, got %v", c.GoalRadius)
	}
	if !(c.SafeDist > 0) || !floatutils.IsFinite(c.SafeDist) {
		return nil, env.ConfigurationError("new",
			"safe distance must be positive, got %v", c.SafeDist)
	}

	c = c.WithDefaults()
	terms, ok := rules[c.Rule]
	if !ok {
		return nil, env.ConfigurationError("new", "no such reward rule %q",
			c.Rule)
	}

	return &Evaluator{Config: c, terms: terms}, nil
}

// Reset clears the rolling state. If first is non-nil, the distance to
// goal of the first frame seeds the progress term.
func (e *Evaluator) Reset(first *observation.Frame) {
	e.hasPrev = false
	e.prevDistance = 0
	e.episodeReturn = 0

	if first != nil {
		e.prevDistance = first.DistanceToGoal()
		e.hasPrev = true
	}
}

// Evaluate returns the reward and termination verdict for frame f
func (e *Evaluator) Evaluate(f observation.Frame) env.RewardResult {
	distance := f.DistanceToGoal()
	clearance := f.MinRange()

	result := env.RewardResult{
		DoneReason: ts.None,
		Metrics: map[string]float64{
			DistanceToGoal: distance,
			MinClearance:   clearance,
		},
	}

	switch {
	case distance < e.GoalRadius:
		result.Reward = e.GoalReward
		result.Done = true
		result.DoneReason = ts.GoalReached

	case clearance < e.SafeDist:
		result.Reward = e.CollisionReward
		result.Done = true
		result.DoneReason = ts.Collision

	default:
		for _, t := range e.terms {
			value := t.fn(e, f)
			result.Metrics[t.name] = value
			result.Reward += value
		}
	}

	e.prevDistance = distance
	e.hasPrev = true
	e.episodeReturn += result.Reward
	result.Metrics[EpisodeReturn] = e.episodeReturn

	return result
}
