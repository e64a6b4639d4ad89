package agent

import (
	"math"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/gonav/environment"
	ts "github.com/samuelfneumann/gonav/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomConfig configures a Random agent. It has no parameters.
type RandomConfig struct{}

// CreateAgent creates a Random agent acting in actionSpec
func (r RandomConfig) CreateAgent(actionSpec env.Spec,
	seed uint64) (Agent, error) {
	return NewRandom(actionSpec, seed)
}

// Validate always returns nil
func (r RandomConfig) Validate() error {
	return nil
}

// Type returns the Type of agent the Config creates
func (r RandomConfig) Type() Type {
	return RandomType
}

// Random selects actions uniformly at random. Continuous actions are
// drawn uniformly from the bounds of each action dimension. Discrete
// actions are drawn uniformly from the integers within the bounds.
type Random struct {
	nonLearning
	continuous []distuv.Uniform
	discrete   []distuv.Categorical
	offsets    []float64
}

// NewRandom returns a new Random agent acting in actionSpec
func NewRandom(actionSpec env.Spec, seed uint64) (*Random, error) {
	if actionSpec.Type != env.Action {
		return nil, errors.Errorf("newRandom: expected an action spec, got "+
			"spec type %v", actionSpec.Type)
	}

	source := rand.NewSource(seed)
	dims := actionSpec.Len()
	r := &Random{}

	for i := 0; i < dims; i++ {
		bounds := actionSpec.Bounds(i)
		min, max := bounds.Min, bounds.Max
		if !(min <= max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil, errors.Errorf("newRandom: cannot sample from "+
				"bounds [%v, %v]", min, max)
		}

		if actionSpec.Cardinality == env.Continuous {
			r.continuous = append(r.continuous, distuv.Uniform{
				Min: min,
				Max: max,
				Src: source,
			})
			continue
		}

		// Create the weights for the uniform categorical distribution
		n := int(math.Floor(max)-math.Ceil(min)) + 1
		weights := make([]float64, n)
		for j := range weights {
			weights[j] = 1.0 / float64(n)
		}
		r.discrete = append(r.discrete, distuv.NewCategorical(weights, source))
		r.offsets = append(r.offsets, math.Ceil(min))
	}

	return r, nil
}

// SelectAction returns a random action
func (r *Random) SelectAction(_ ts.TimeStep) *mat.VecDense {
	if len(r.continuous) > 0 {
		action := make([]float64, len(r.continuous))
		for i := range r.continuous {
			action[i] = r.continuous[i].Rand()
		}
		return mat.NewVecDense(len(action), action)
	}

	action := make([]float64, len(r.discrete))
	for i := range r.discrete {
		action[i] = r.offsets[i] + r.discrete[i].Rand()
	}
	return mat.NewVecDense(len(action), action)
}
