package envconfig

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/environment/action"
	"github.com/samuelfneumann/gonav/environment/reward"
	"github.com/samuelfneumann/gonav/environment/stepper"
	"gonum.org/v1/gonum/mat"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"action_space": {"continuous": true},
		"goal_radius": 0.3,
		"safe_dist": 0.2
	}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.MaxSteps != DefaultMaxSteps || c.HistoryLength != DefaultHistoryLength {
		t.Errorf("load: expected default max steps and history length, "+
			"got %v and %v", c.MaxSteps, c.HistoryLength)
	}
	if c.RewardRule != reward.Rule00 {
		t.Errorf("load: expected rule %v, got %v", reward.Rule00,
			c.RewardRule)
	}
	if c.ActionSpace.Radius != 0.8 || c.ActionSpace.AngularRange.Min != -math.Pi ||
		c.ActionSpace.AngularRange.Max != math.Pi {
		t.Errorf("load: expected default continuous action space, got %+v",
			c.ActionSpace)
	}
	if c.Mode() != stepper.Train {
		t.Errorf("load: expected train mode, got %v", c.Mode())
	}
	if c.LaserBeams != 360 || c.LaserMaxRange != 3.5 {
		t.Errorf("load: expected default laser, got %v beams and range %v",
			c.LaserBeams, c.LaserMaxRange)
	}
}

func TestLoadRequiresSafetyFields(t *testing.T) {
	for name, contents := range map[string]string{
		"missing goal_radius": `{"action_space": {"continuous": true},
			"safe_dist": 0.2}`,
		"missing safe_dist": `{"action_space": {"continuous": true},
			"goal_radius": 0.3}`,
		"negative safe_dist": `{"action_space": {"continuous": true},
			"goal_radius": 0.3, "safe_dist": -1}`,
		"empty discrete table": `{"action_space": {"continuous": false},
			"goal_radius": 0.3, "safe_dist": 0.2}`,
		"unknown rule": `{"action_space": {"continuous": true},
			"goal_radius": 0.3, "safe_dist": 0.2, "reward_rule": "rule_99"}`,
		"unknown field": `{"action_space": {"continuous": true},
			"goal_radius": 0.3, "safe_dist": 0.2, "safe_distance": 0.2}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, contents))
			if !env.IsConfiguration(err) {
				t.Errorf("load: expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !env.IsConfiguration(err) {
		t.Errorf("load: expected configuration error, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	c := Example()
	c.ActionSpace.Continuous = false
	c.RewardRule = reward.Rule02

	path := filepath.Join(t.TempDir(), "config.json")
	if err := c.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if *loaded.GoalRadius != *c.GoalRadius || *loaded.SafeDist != *c.SafeDist {
		t.Errorf("load: safety fields changed from (%v, %v) to (%v, %v)",
			*c.GoalRadius, *c.SafeDist, *loaded.GoalRadius, *loaded.SafeDist)
	}

	space, err := loaded.NewActionSpace()
	if err != nil {
		t.Fatalf("newActionSpace: %v", err)
	}
	discrete, ok := space.(*action.Discrete)
	if !ok || discrete.Len() != len(c.ActionSpace.DiscreteActions) {
		t.Errorf("newActionSpace: expected discrete space with %v actions, "+
			"got %T", len(c.ActionSpace.DiscreteActions), space)
	}

	task, err := loaded.NewTask()
	if err != nil {
		t.Fatalf("newTask: %v", err)
	}
	if task.Rule != reward.Rule02 {
		t.Errorf("newTask: expected rule %v, got %v", reward.Rule02,
			task.Rule)
	}
}

func TestCreateArena(t *testing.T) {
	c := Example()
	c.LaserBeams = 24
	c.MaxSteps = 5

	e, world, err := c.CreateArena(11, nil)
	if err != nil {
		t.Fatalf("createArena: %v", err)
	}
	if world.Config().Beams != 24 {
		t.Errorf("createArena: arena laser should match, got %v beams",
			world.Config().Beams)
	}

	step, err := e.Reset(context.Background())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if want := c.HistoryLength*24 + 4; step.Observation.Len() != want {
		t.Errorf("reset: expected observation length %v, got %v", want,
			step.Observation.Len())
	}

	done := false
	for i := 0; i < c.MaxSteps && !done; i++ {
		step, done, err = e.Step(context.Background(),
			mat.NewVecDense(1, []float64{step.Frame.Goal.Theta}))
		if err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if !done {
		t.Errorf("step: episode should end within %v steps", c.MaxSteps)
	}
	if world.Ticks() != step.Number+1 {
		t.Errorf("step: expected one tick per cycle plus the reset, got "+
			"%v ticks after %v steps", world.Ticks(), step.Number)
	}
}

func TestCreateRequiresObserver(t *testing.T) {
	_, err := Example().Create(Collaborators{}, nil)
	if !env.IsConfiguration(err) {
		t.Errorf("create: expected configuration error, got %v", err)
	}
}
