// Package arena implements a reference simulator for the waypoint
// navigation environment: a walled 2D arena with static circular
// obstacles and a differential drive robot carrying a planar laser
// scanner, simulated with Box2D.
//
// A World implements every external collaborator of the control loop.
// It regenerates scenarios (environment.Regenerator), receives commands
// (environment.Publisher), advances one discrete tick on request
// (environment.Stepper), and produces observations
// (environment.Observer). In real-time mode, Run advances the World on
// a wall clock instead.
//
// Navigation targets are tracked by a simple local controller, which
// turns toward the target proportionally to the heading error and
// drives forward once roughly facing it.
package arena

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ByteArena/box2d"
	"github.com/pkg/errors"
	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
	"github.com/samuelfneumann/gonav/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r2"
)

// Solver iterations per tick
const (
	velocityIterations int = 8
	positionIterations int = 3
)

// World is a Box2D simulation of the arena. A World is safe for
// concurrent use.
type World struct {
	mu sync.Mutex

	config  Config
	sampler *sampler
	seed    uint64

	world    box2d.B2World
	robot    *box2d.B2Body
	scenario Scenario
	plan     []r2.Vec
	command  env.Command
	ticks    int
	hasReset bool
}

// New returns a new World. The World must be reset before it can be
// stepped or observed.
func New(c Config, seed uint64) (*World, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &World{
		config:  c,
		sampler: newSampler(c, seed),
		seed:    seed,
		command: env.NewStop(),
	}, nil
}

// Config returns the configuration of the World
func (w *World) Config() Config {
	return w.config
}

// Seed returns the seed the World was created with
func (w *World) Seed() uint64 {
	return w.seed
}

// Reset samples a new scenario and rebuilds the world around it
func (w *World) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	scenario, err := w.sampler.Sample()
	if err != nil {
		return errors.Wrap(err, "reset")
	}

	w.place(scenario)
	return nil
}

// Place rebuilds the world around a given scenario. The robot starts
// at rest, holding still until it receives a command.
func (w *World) Place(s Scenario) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.place(s)
}

func (w *World) place(s Scenario) {
	w.world = box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	w.createWalls()
	for _, o := range s.Obstacles {
		w.createObstacle(o)
	}
	w.robot = w.createRobot(s.Robot)

	w.scenario = Scenario{
		Robot:     s.Robot,
		Goal:      s.Goal,
		Obstacles: append([]Obstacle(nil), s.Obstacles...),
	}
	w.plan = straightPlan(s.Robot.Vec(), s.Goal, w.config.PlanSpacing)
	w.command = env.NewStop()
	w.ticks = 0
	w.hasReset = true
}

func (w *World) createWalls() {
	corners := []box2d.B2Vec2{
		box2d.MakeB2Vec2(0, 0),
		box2d.MakeB2Vec2(w.config.Width, 0),
		box2d.MakeB2Vec2(w.config.Width, w.config.Height),
		box2d.MakeB2Vec2(0, w.config.Height),
	}

	wallDef := box2d.MakeB2BodyDef()
	wallDef.Type = 0 // Static body
	walls := w.world.CreateBody(&wallDef)

	for i := range corners {
		edge := box2d.NewB2EdgeShape()
		edge.Set(corners[i], corners[(i+1)%len(corners)])

		fix := box2d.MakeB2FixtureDef()
		fix.Shape = edge
		fix.Friction = 0.1
		walls.CreateFixtureFromDef(&fix)
	}
}

func (w *World) createObstacle(o Obstacle) {
	def := box2d.MakeB2BodyDef()
	def.Type = 0 // Static body
	def.Position = box2d.MakeB2Vec2(o.Center.X, o.Center.Y)
	body := w.world.CreateBody(&def)

	shape := box2d.NewB2CircleShape()
	shape.M_radius = o.Radius

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Friction = 0.1
	body.CreateFixtureFromDef(&fix)
}

func (w *World) createRobot(pose observation.Pose) *box2d.B2Body {
	def := box2d.MakeB2BodyDef()
	def.Type = 2 // Dynamic body
	def.Position = box2d.MakeB2Vec2(pose.X, pose.Y)
	def.Angle = pose.Theta
	body := w.world.CreateBody(&def)

	shape := box2d.NewB2CircleShape()
	shape.M_radius = w.config.RobotRadius

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Density = 1.0
	fix.Friction = 0.1
	fix.Restitution = 0.0
	body.CreateFixtureFromDef(&fix)

	return body
}

// Publish stores cmd as the command the robot follows from the next
// tick onwards
func (w *World) Publish(cmd env.Command) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.command = cmd
}

// Command returns the command the robot is currently following
func (w *World) Command() env.Command {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.command
}

// StepWorld advances the simulation by exactly one tick
func (w *World) StepWorld(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick()
}

// Run advances the simulation one tick every period until ctx is
// done, emulating a wall-clock driven simulator. Run returns the
// context's error.
func (w *World) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			// Ticks before the first reset are dropped
			w.mu.Lock()
			if w.hasReset {
				w.tick()
			}
			w.mu.Unlock()
		}
	}
}

// Ready returns whether the World has been reset at least once
func (w *World) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasReset
}

// Ticks returns the number of ticks since the last reset
func (w *World) Ticks() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ticks
}

func (w *World) tick() error {
	if !w.hasReset {
		return errors.New("tick: world has not been reset")
	}

	linear, angular := w.control()
	heading := w.robot.GetAngle()
	w.robot.SetLinearVelocity(box2d.MakeB2Vec2(linear*math.Cos(heading),
		linear*math.Sin(heading)))
	w.robot.SetAngularVelocity(angular)

	w.world.Step(w.config.TimeStep, velocityIterations, positionIterations)
	w.ticks++

	return nil
}

// control returns the linear and angular velocity the local controller
// applies for the current command
func (w *World) control() (linear, angular float64) {
	switch w.command.Kind {
	case env.Velocity:
		linear = floatutils.Clip(w.command.Linear, -w.config.MaxLinear,
			w.config.MaxLinear)
		angular = floatutils.Clip(w.command.Angular, -w.config.MaxAngular,
			w.config.MaxAngular)
		return linear, angular

	case env.Goal:
		pose := w.pose()
		delta := r2.Sub(w.command.Target, pose.Vec())
		distance := r2.Norm(delta)
		if distance < w.config.GoalTolerance {
			return 0, 0
		}

		headingErr := floatutils.NormalizeAngle(
			math.Atan2(delta.Y, delta.X) - pose.Theta)
		angular = floatutils.Clip(w.config.HeadingGain*headingErr,
			-w.config.MaxAngular, w.config.MaxAngular)

		// Slow down near the target and when facing away from it
		linear = w.config.MaxLinear * math.Max(0, math.Cos(headingErr)) *
			math.Min(1, distance)
		return linear, angular

	default:
		return 0, 0
	}
}

// Observe returns the current observation of the robot
func (w *World) Observe(ctx context.Context) (observation.Frame, error) {
	if err := ctx.Err(); err != nil {
		return observation.Frame{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.hasReset {
		return observation.Frame{}, errors.New("observe: world has not " +
			"been reset")
	}

	pose := w.pose()
	delta := r2.Sub(w.scenario.Goal, pose.Vec())

	vel := w.robot.GetLinearVelocity()
	speed := observation.Speed{
		Linear:  vel.X*math.Cos(pose.Theta) + vel.Y*math.Sin(pose.Theta),
		Angular: w.robot.GetAngularVelocity(),
	}

	return observation.Frame{
		Robot: pose,
		Speed: speed,
		Goal: observation.Polar{
			Rho: r2.Norm(delta),
			Theta: floatutils.NormalizeAngle(
				math.Atan2(delta.Y, delta.X) - pose.Theta),
		},
		Scan:       w.scan(pose),
		GlobalPlan: append([]r2.Vec(nil), w.plan...),
	}, nil
}

// Scenario returns the scenario of the current episode
func (w *World) Scenario() Scenario {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scenario
}

// Pose returns the current pose of the robot
func (w *World) Pose() observation.Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pose()
}

func (w *World) pose() observation.Pose {
	pos := w.robot.GetPosition()
	return observation.Pose{
		X:     pos.X,
		Y:     pos.Y,
		Theta: floatutils.NormalizeAngle(w.robot.GetAngle()),
	}
}
