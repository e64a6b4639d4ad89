// Package stepper synchronises issuing an action with the simulation
// advancing and the resulting observation being fetched.
package stepper

import (
	"context"
	"sync"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
)

// Mode determines whether the Coordinator steps the simulator itself
type Mode int

const (
	// Train mode explicitly requests the simulator to advance exactly
	// one discrete tick before requesting the observation
	Train Mode = iota

	// RealTime mode assumes a wall-clock driven simulator advancing on
	// its own and only requests the current observation
	RealTime
)

func (m Mode) String() string {
	if m == RealTime {
		return "RealTime"
	}
	return "Train"
}

// Coordinator advances the simulation and fetches the resulting
// observation. At most one advance/observation request is in flight at
// any time, so that an observation always reflects the effects of the
// most recently dispatched action.
//
// There is no timeout: a collaborator that never responds stalls the
// caller unless the caller's context carries a deadline.
type Coordinator struct {
	mu sync.Mutex

	mode     Mode
	observer env.Observer
	stepper  env.Stepper

	beams    int
	maxRange float64
}

// New returns a new Coordinator. Frames returned by observer are
// validated to have beams ranges in [0, maxRange]. The stepper is only
// required in Train mode.
func New(mode Mode, observer env.Observer, stepper env.Stepper, beams int,
	maxRange float64) (*Coordinator, error) {
	if observer == nil {
		return nil, env.ConfigurationError("new",
			"an observation provider is required")
	}
	if mode == Train && stepper == nil {
		return nil, env.ConfigurationError("new",
			"train mode requires a simulation stepper")
	}
	if beams < 1 || !(maxRange > 0) {
		return nil, env.ConfigurationError("new",
			"illegal laser configuration: %v beams, max range %v", beams,
			maxRange)
	}

	return &Coordinator{
		mode:     mode,
		observer: observer,
		stepper:  stepper,
		beams:    beams,
		maxRange: maxRange,
	}, nil
}

// Mode returns the mode of the Coordinator
func (c *Coordinator) Mode() Mode {
	return c.mode
}

// Beams returns the number of laser beams in each observed scan
func (c *Coordinator) Beams() int {
	return c.beams
}

// MaxRange returns the maximum range of the laser
func (c *Coordinator) MaxRange() float64 {
	return c.maxRange
}

// Advance advances the simulation, in Train mode, and returns the
// resulting observation. Failures of either collaborator are returned
// as environment.ErrCollaboratorUnavailable; no stale observation is
// ever returned in their place.
func (c *Coordinator) Advance(ctx context.Context) (observation.Frame,
	error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == Train {
		if err := c.stepper.StepWorld(ctx); err != nil {
			return observation.Frame{}, env.CollaboratorUnavailable(
				"advance: step world", err)
		}
	}

	frame, err := c.observer.Observe(ctx)
	if err != nil {
		return observation.Frame{}, env.CollaboratorUnavailable(
			"advance: observe", err)
	}

	if err := frame.Validate(c.beams, c.maxRange); err != nil {
		return observation.Frame{}, env.CollaboratorUnavailable(
			"advance: malformed observation", err)
	}

	return frame, nil
}
