package arena

import (
	"math"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxPlacementAttempts bounds the rejection sampling of scenarios
const maxPlacementAttempts int = 1000

// Obstacle is a static circular obstacle
type Obstacle struct {
	Center r2.Vec
	Radius float64
}

// Scenario is a start, goal, and obstacle configuration
type Scenario struct {
	Robot     observation.Pose
	Goal      r2.Vec
	Obstacles []Obstacle
}

// sampler samples scenarios with the entities kept apart by the
// configured clearance
type sampler struct {
	config    Config
	positions env.UniformStarter
	counts    env.CategoricalStarter
	radii     distuv.Uniform
	headings  distuv.Uniform
}

func newSampler(c Config, seed uint64) *sampler {
	positions := env.NewUniformStarter([]r1.Interval{
		{Min: 0, Max: c.Width},
		{Min: 0, Max: c.Height},
	}, seed)
	counts := env.NewCategoricalStarter([]env.IntRange{
		{Min: c.MinObstacles, Max: c.MaxObstacles},
	}, seed+1)

	radii := distuv.Uniform{
		Min: c.ObstacleRadius.Min,
		Max: c.ObstacleRadius.Max,
		Src: rand.NewSource(seed + 2),
	}
	headings := distuv.Uniform{
		Min: -math.Pi,
		Max: math.Pi,
		Src: rand.NewSource(seed + 3),
	}

	return &sampler{c, positions, counts, radii, headings}
}

// Sample returns a new scenario
func (s *sampler) Sample() (Scenario, error) {
	for i := 0; i < maxPlacementAttempts; i++ {
		if scenario, ok := s.try(); ok {
			return scenario, nil
		}
	}
	return Scenario{}, errors.Errorf("sample: could not place scenario "+
		"after %v attempts", maxPlacementAttempts)
}

func (s *sampler) try() (Scenario, bool) {
	n := int(s.counts.Start().AtVec(0))
	obstacles := make([]Obstacle, 0, n)

	for len(obstacles) < n {
		radius := s.radii.Rand()
		center := s.position()
		if !s.free(center, radius, obstacles) {
			return Scenario{}, false
		}
		obstacles = append(obstacles, Obstacle{center, radius})
	}

	robot := s.position()
	if !s.free(robot, s.config.RobotRadius, obstacles) {
		return Scenario{}, false
	}

	goal := s.position()
	if !s.free(goal, s.config.RobotRadius, obstacles) ||
		r2.Norm(r2.Sub(goal, robot)) < s.config.MinGoalDistance {
		return Scenario{}, false
	}

	return Scenario{
		Robot:     observation.Pose{X: robot.X, Y: robot.Y, Theta: s.headings.Rand()},
		Goal:      goal,
		Obstacles: obstacles,
	}, true
}

func (s *sampler) position() r2.Vec {
	p := s.positions.Start()
	return r2.Vec{X: p.AtVec(0), Y: p.AtVec(1)}
}

// free returns whether a disk of the given radius at center keeps the
// clearance to the walls and all obstacles
func (s *sampler) free(center r2.Vec, radius float64,
	obstacles []Obstacle) bool {
	margin := radius + s.config.Clearance
	if center.X < margin || center.X > s.config.Width-margin ||
		center.Y < margin || center.Y > s.config.Height-margin {
		return false
	}

	for _, o := range obstacles {
		if r2.Norm(r2.Sub(center, o.Center)) < margin+o.Radius {
			return false
		}
	}
	return true
}

// straightPlan returns waypoints along the segment from start to goal,
// spaced at most spacing apart. Both endpoints are included.
func straightPlan(start, goal r2.Vec, spacing float64) []r2.Vec {
	delta := r2.Sub(goal, start)
	n := int(math.Ceil(r2.Norm(delta) / spacing))
	if n < 1 {
		return []r2.Vec{goal}
	}

	plan := make([]r2.Vec, n+1)
	for i := range plan {
		plan[i] = r2.Add(start, r2.Scale(float64(i)/float64(n), delta))
	}
	return plan
}
