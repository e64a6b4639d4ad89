package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// IntRange is an inclusive range of integers
type IntRange struct {
	Min, Max int
}

// CategoricalStarter samples integer vectors, drawing each feature
// uniformly from its own inclusive range
type CategoricalStarter struct {
	ranges []IntRange
	seed   uint64
	rand   []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter, sampling
// feature i uniformly from ranges[i]
func NewCategoricalStarter(ranges []IntRange,
	seed uint64) CategoricalStarter {
	source := rand.NewSource(seed)

	dists := make([]distuv.Categorical, len(ranges))
	for i, r := range ranges {
		if r.Max < r.Min {
			panic(fmt.Sprintf("newCategoricalStarter: empty range [%v, %v]",
				r.Min, r.Max))
		}
		weights := make([]float64, r.Max-r.Min+1)
		for j := range weights {
			weights[j] = 1.0
		}
		dists[i] = distuv.NewCategorical(weights, source)
	}

	return CategoricalStarter{ranges, seed, dists}
}

// Start returns a new sample
func (c CategoricalStarter) Start() *mat.VecDense {
	start := make([]float64, len(c.ranges))
	for i := range start {
		start[i] = float64(c.ranges[i].Min) + c.rand[i].Rand()
	}

	return mat.NewVecDense(len(start), start)
}

// Seed returns the seed the starter was created with
func (c CategoricalStarter) Seed() uint64 {
	return c.seed
}
