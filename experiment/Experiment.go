// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gonav/agent"
	"github.com/samuelfneumann/gonav/environment/arena"
	"github.com/samuelfneumann/gonav/environment/envconfig"
	"github.com/samuelfneumann/gonav/experiment/tracker"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes util the maximum timestep limit is reached, or some
// other ending condition is reached. The RunEpisode() function will
// run a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. New Trackers
// can be registered with an Experiment through the constructor or
// through an Experiment's Register() function.
type Experiment interface {
	Run(ctx context.Context) error

	// Returns whether or not the step budget has been reached
	RunEpisode(ctx context.Context) (bool, error)

	// Save all tracked data to disk
	Save() error

	// Stops the robot. The Experiment should not be run after Close.
	Close() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment
	Register(t tracker.Tracker)
}

// Type is a type of Experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type
	MaxSteps  uint
	Cadence   time.Duration
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfig
}

// CreateExp creates the experiment described by the Config, running on
// the reference simulator. The simulator is returned so that it can be
// run in real-time mode or rendered.
func (c Config) CreateExp(seed uint64, t []tracker.Tracker,
	logger *log.Logger) (Experiment, *arena.World, error) {
	if c.AgentConf.Config == nil {
		return nil, nil, errors.New("createExp: no agent configured")
	}
	if err := c.AgentConf.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "createExp")
	}

	e, world, err := c.EnvConf.CreateArena(seed, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "createExp")
	}

	a, err := c.AgentConf.CreateAgent(e.ActionSpec(), seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "createExp: could not create agent")
	}

	switch c.Type {
	case OnlineExp:
		exp := NewOnline(e, a, c.MaxSteps, c.Cadence, t)
		if logger != nil {
			exp.SetLogger(logger)
		}
		return exp, world, nil
	}

	return nil, nil, errors.Errorf("createExp: no such experiment type %v",
		c.Type)
}
