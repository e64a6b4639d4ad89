// Package envconfig provides configuration structs for configuring
// the waypoint navigation environment. Configurations in this package
// are JSON serializable and are read once, at construction.
//
// The goal radius and safe distance are safety relevant and have no
// defaults: a configuration missing either is rejected. Every other
// field falls back to its default when unset.
package envconfig

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"os"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/environment/action"
	"github.com/samuelfneumann/gonav/environment/arena"
	"github.com/samuelfneumann/gonav/environment/reward"
	"github.com/samuelfneumann/gonav/environment/stepper"
	"github.com/samuelfneumann/gonav/environment/waypoint"
	"github.com/samuelfneumann/gonav/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// Defaults of optional configuration fields
const (
	DefaultMaxSteps      int     = 100
	DefaultHistoryLength int     = 3
	DefaultRadius        float64 = 0.8
	DefaultLaserBeams    int     = 360
	DefaultLaserMaxRange float64 = 3.5
)

// DefaultAngularRange is the default range of heading angles in the
// continuous action space
var DefaultAngularRange = r1.Interval{Min: -math.Pi, Max: math.Pi}

// ActionSpace configures the action space. Discrete action spaces use
// DiscreteActions, continuous action spaces use AngularRange and Radius.
type ActionSpace struct {
	Continuous      bool           `json:"continuous"`
	DiscreteActions []action.Entry `json:"discrete_actions,omitempty"`
	AngularRange    *r1.Interval   `json:"angular_range,omitempty"`
	Radius          float64        `json:"radius,omitempty"`
}

// Weights are the reward constants and shaping weights. Zero valued
// fields take the defaults of package reward.
type Weights struct {
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

// Config implements a configuration of the waypoint navigation
// environment
type Config struct {
	ActionSpace ActionSpace `json:"action_space"`

	// Required
	GoalRadius *float64 `json:"goal_radius"`
	SafeDist   *float64 `json:"safe_dist"`

	MaxSteps      int         `json:"max_steps,omitempty"`
	HistoryLength int         `json:"history_length,omitempty"`
	RewardRule    reward.Rule `json:"reward_rule,omitempty"`
	Weights       Weights     `json:"reward_weights"`

	// TrainMode determines whether the simulator is stepped explicitly
	// once per control cycle. Defaults to true.
	TrainMode *bool `json:"train_mode,omitempty"`

	LaserBeams    int     `json:"laser_beams,omitempty"`
	LaserMaxRange float64 `json:"laser_max_range,omitempty"`

	// Arena configures the reference simulator. If nil, the default
	// arena is used.
	Arena *arena.Config `json:"arena,omitempty"`
}

// Example returns a complete Config with every optional field at its
// default and example values for the required fields
func Example() Config {
	goalRadius, safeDist := 0.3, 0.25
	return Config{
		GoalRadius: &goalRadius,
		SafeDist:   &safeDist,
		ActionSpace: ActionSpace{
			Continuous: true,
			DiscreteActions: []action.Entry{
				{Name: "forward", Linear: 0.3, Angular: 0},
				{Name: "left", Linear: 0.05, Angular: 0.6},
				{Name: "right", Linear: 0.05, Angular: -0.6},
			},
		},
	}.WithDefaults()
}

// Load reads a JSON Config from path, fills in the defaults, and
// validates it. Unknown fields are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, env.ConfigurationError("load",
			"could not read %v: %v", path, err)
	}

	var c Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, env.ConfigurationError("load",
			"could not decode %v: %v", path, err)
	}

	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes the Config as indented JSON to path
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "save")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "save")
}

// WithDefaults returns a copy of the Config with every unset optional
// field set to its default. The required fields are left untouched.
func (c Config) WithDefaults() Config {
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.HistoryLength == 0 {
		c.HistoryLength = DefaultHistoryLength
	}
	if c.RewardRule == "" {
		c.RewardRule = reward.DefaultRule
	}
	if c.TrainMode == nil {
		train := true
		c.TrainMode = &train
	}
	if c.LaserBeams == 0 {
		c.LaserBeams = DefaultLaserBeams
	}
	if c.LaserMaxRange == 0 {
		c.LaserMaxRange = DefaultLaserMaxRange
	}

	if c.ActionSpace.Continuous {
		if c.ActionSpace.AngularRange == nil {
			bounds := DefaultAngularRange
			c.ActionSpace.AngularRange = &bounds
		}
		if c.ActionSpace.Radius == 0 {
			c.ActionSpace.Radius = DefaultRadius
		}
	}

	return c
}

// Validate returns a configuration error if the Config is missing a
// required field or a field is out of range
func (c Config) Validate() error {
	if c.GoalRadius == nil {
		return env.ConfigurationError("validate",
			"goal_radius is required")
	}
	if c.SafeDist == nil {
		return env.ConfigurationError("validate", "safe_dist is required")
	}
	if !(*c.GoalRadius > 0) || !floatutils.IsFinite(*c.GoalRadius) {
		return env.ConfigurationError("validate",
			"goal_radius must be positive, got %v", *c.GoalRadius)
	}
	if !(*c.SafeDist > 0) || !floatutils.IsFinite(*c.SafeDist) {
		return env.ConfigurationError("validate",
			"safe_dist must be positive, got %v", *c.SafeDist)
	}

	if c.MaxSteps < 1 {
		return env.ConfigurationError("validate",
			"max_steps must be positive, got %v", c.MaxSteps)
	}
	if c.HistoryLength < 1 {
		return env.ConfigurationError("validate",
			"history_length must be positive, got %v", c.HistoryLength)
	}
	if c.LaserBeams < 1 || !(c.LaserMaxRange > 0) {
		return env.ConfigurationError("validate",
			"illegal laser configuration: %v beams, max range %v",
			c.LaserBeams, c.LaserMaxRange)
	}
	if *c.SafeDist >= c.LaserMaxRange {
		return env.ConfigurationError("validate",
			"safe_dist %v must be below the laser range %v", *c.SafeDist,
			c.LaserMaxRange)
	}

	known := false
	for _, rule := range reward.Rules() {
		known = known || rule == c.RewardRule
	}
	if !known {
		return env.ConfigurationError("validate",
			"no such reward rule %q, expected one of %v", c.RewardRule,
			reward.Rules())
	}

	if !c.ActionSpace.Continuous && len(c.ActionSpace.DiscreteActions) == 0 {
		return env.ConfigurationError("validate",
			"discrete action space requires a non-empty discrete_actions "+
				"table")
	}

	return nil
}

// NewActionSpace returns the action space described by the Config
func (c Config) NewActionSpace() (action.Space, error) {
	if !c.ActionSpace.Continuous {
		space, err := action.NewDiscrete(c.ActionSpace.DiscreteActions)
		if err != nil {
			return nil, err
		}
		return space, nil
	}

	bounds := DefaultAngularRange
	if c.ActionSpace.AngularRange != nil {
		bounds = *c.ActionSpace.AngularRange
	}
	space, err := action.NewContinuous(bounds, c.ActionSpace.Radius)
	if err != nil {
		return nil, err
	}
	return space, nil
}

// NewTask returns the reward evaluator described by the Config
func (c Config) NewTask() (*reward.Evaluator, error) {
	if c.GoalRadius == nil || c.SafeDist == nil {
		return nil, env.ConfigurationError("newTask",
			"goal_radius and safe_dist are required")
	}

	return reward.New(reward.Config{
		GoalRadius:      *c.GoalRadius,
		SafeDist:        *c.SafeDist,
		Rule:            c.RewardRule,
		GoalReward:      c.Weights.GoalReward,
		CollisionReward: c.Weights.CollisionReward,
		ApproachWeight:  c.Weights.ApproachWeight,
		LeaveWeight:     c.Weights.LeaveWeight,
		TimePenalty:     c.Weights.TimePenalty,
		ProximityBand:   c.Weights.ProximityBand,
		ProximityWeight: c.Weights.ProximityWeight,
		PlanWeight:      c.Weights.PlanWeight,
		PlanCap:         c.Weights.PlanCap,
	})
}

// Mode returns the stepping mode described by the Config
func (c Config) Mode() stepper.Mode {
	if c.TrainMode != nil && !*c.TrainMode {
		return stepper.RealTime
	}
	return stepper.Train
}

// Collaborators are the external systems an environment talks to. The
// Stepper may be nil in real-time mode.
type Collaborators struct {
	Observer    env.Observer
	Stepper     env.Stepper
	Regenerator env.Regenerator
	Publisher   env.Publisher
}

// Create returns the environment described by the Config, talking to
// the given collaborators. The environment must be reset before use.
func (c Config) Create(collab Collaborators,
	logger *log.Logger) (*waypoint.Env, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	space, err := c.NewActionSpace()
	if err != nil {
		return nil, err
	}

	task, err := c.NewTask()
	if err != nil {
		return nil, err
	}

	coordinator, err := stepper.New(c.Mode(), collab.Observer,
		collab.Stepper, c.LaserBeams, c.LaserMaxRange)
	if err != nil {
		return nil, err
	}

	return waypoint.New(waypoint.Config{
		Space:         space,
		Task:          task,
		Coordinator:   coordinator,
		Regenerator:   collab.Regenerator,
		Publisher:     collab.Publisher,
		MaxSteps:      c.MaxSteps,
		HistoryLength: c.HistoryLength,
		Logger:        logger,
	})
}

// ArenaConfig returns the configuration of the reference simulator,
// with its laser matching the laser of the Config
func (c Config) ArenaConfig() arena.Config {
	a := arena.DefaultConfig()
	if c.Arena != nil {
		a = *c.Arena
	}
	a.Beams = c.LaserBeams
	a.MaxRange = c.LaserMaxRange
	return a
}

// CreateArena returns the environment described by the Config, running
// on the reference simulator. The simulator is returned so that it can
// be run in real-time mode or rendered.
func (c Config) CreateArena(seed uint64, logger *log.Logger) (*waypoint.Env,
	*arena.World, error) {
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	world, err := arena.New(c.ArenaConfig(), seed)
	if err != nil {
		return nil, nil, err
	}

	var ticker env.Stepper
	if c.Mode() == stepper.Train {
		ticker = world
	}

	e, err := c.Create(Collaborators{
		Observer:    world,
		Stepper:     ticker,
		Regenerator: world,
		Publisher:   world,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return e, world, nil
}
