package experiment

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/gonav/agent"
	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/experiment/tracker"
	ts "github.com/samuelfneumann/gonav/timestep"
	"github.com/samuelfneumann/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
//
// If a cadence is set, each control cycle waits for the next tick of a
// ticker before stepping, so that the agent acts at a fixed rate. A
// cycle that overruns the cadence is followed immediately by the next
// one; cycles never overlap.
type Online struct {
	environment  env.Environment
	agent        agent.Agent
	maxSteps     uint
	currentSteps uint
	cadence      time.Duration
	trackers     []tracker.Tracker
	logger       *log.Logger
	progressBar  *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter
// is a slice of tracker.Tracker which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	cadence time.Duration, t []tracker.Tracker) *Online {
	return &Online{
		environment: e,
		agent:       a,
		maxSteps:    steps,
		cadence:     cadence,
		trackers:    t,
		logger:      log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger which receives one line per episode
func (o *Online) SetLogger(l *log.Logger) {
	o.logger = l
}

// ShowProgress displays a progress bar of the total steps taken while
// the experiment runs
func (o *Online) ShowProgress() {
	o.progressBar = progressbar.New(50, int(o.maxSteps),
		time.Second, true)
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Steps returns the number of steps taken so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// RunEpisode runs a single episode of the experiment. It returns
// whether or not the maximum number of steps has been reached.
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.environment.Reset(ctx)
	if err != nil {
		return false, errors.Wrap(err, "runEpisode")
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return false, errors.Wrap(err, "runEpisode")
	}
	o.track(step)

	var tick <-chan time.Time
	if o.cadence > 0 {
		ticker := time.NewTicker(o.cadence)
		defer ticker.Stop()
		tick = ticker.C
	}

	// Run the next timestep
	for !step.Last() && o.currentSteps < o.maxSteps {
		if tick != nil {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-tick:
			}
		}

		// Select action, step in environment
		action := o.agent.SelectAction(step)
		step, _, err = o.environment.Step(ctx, action)
		if err != nil {
			return false, errors.Wrapf(err, "runEpisode: step %v",
				o.currentSteps)
		}
		o.currentSteps++
		if o.progressBar != nil {
			o.progressBar.Increment()
		}

		// Cache the environment step in each Tracker
		o.track(step)

		// Observe the timestep and step the agent
		if err := o.agent.Observe(action, step); err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}
		if err := o.agent.Step(); err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}
	}

	if step.Last() {
		o.agent.EndEpisode()
		o.logger.Printf("episode %v: %v steps, %v, return %.3f",
			step.Episode, step.Number, step.EndType,
			step.Metrics["episode_return"])
	}

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps, or until ctx is
// done
func (o *Online) Run(ctx context.Context) error {
	if o.progressBar != nil {
		o.progressBar.Display()
		defer o.progressBar.Close()
	}

	for ended := false; !ended; {
		var err error
		if ended, err = o.RunEpisode(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the robot if the environment supports it
func (o *Online) Close() error {
	if c, ok := o.environment.(interface{ Close() error }); ok {
		return errors.Wrap(c.Close(), "close")
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
