package agent

import (
	env "github.com/samuelfneumann/gonav/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes, acting
	// in an action space with the given specification
	CreateAgent(actionSpec env.Spec, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the Type of agent the Config creates
	Type() Type
}

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	RandomType     Type = "Random"
	GoalSeekerType Type = "GoalSeeker"
)
