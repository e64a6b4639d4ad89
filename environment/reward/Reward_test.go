package reward

import (
	"math"
	"testing"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
	ts "github.com/samuelfneumann/gonav/timestep"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func newEvaluator(t *testing.T, rule Rule) *Evaluator {
	t.Helper()
	e, err := New(Config{GoalRadius: 0.25, SafeDist: 0.35, Rule: rule})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func frame(distance, clearance float64) observation.Frame {
	return observation.Frame{
		Goal: observation.Polar{Rho: distance},
		Scan: []float64{3.5, clearance, 3.5},
	}
}

func TestGoalReached(t *testing.T) {
	e := newEvaluator(t, Rule02)
	r := e.Evaluate(frame(0.1, 3.0))

	if !r.Done || r.DoneReason != ts.GoalReached {
		t.Errorf("evaluate: expected GoalReached, got %v", r.DoneReason)
	}
	if r.Reward != DefaultGoalReward {
		t.Errorf("evaluate: expected reward %v, got %v", DefaultGoalReward,
			r.Reward)
	}
}

func TestCollision(t *testing.T) {
	e := newEvaluator(t, Rule02)
	r := e.Evaluate(frame(2.0, 0.2))

	if !r.Done || r.DoneReason != ts.Collision {
		t.Errorf("evaluate: expected Collision, got %v", r.DoneReason)
	}
	if r.Reward != DefaultCollisionReward {
		t.Errorf("evaluate: expected reward %v, got %v",
			DefaultCollisionReward, r.Reward)
	}
}

func TestGoalTakesPriorityOverCollision(t *testing.T) {
	for _, rule := range Rules() {
		e := newEvaluator(t, rule)
		r := e.Evaluate(frame(0.1, 0.05))
		if r.DoneReason != ts.GoalReached {
			t.Errorf("%v: expected GoalReached, got %v", rule, r.DoneReason)
		}
	}
}

func TestProgressShaping(t *testing.T) {
	e := newEvaluator(t, Rule00)
	first := frame(3.0, 3.0)
	e.Reset(&first)

	r := e.Evaluate(frame(2.0, 3.0))
	want := DefaultApproachWeight*1.0 + DefaultTimePenalty
	if r.Done || math.Abs(r.Reward-want) > tol {
		t.Errorf("evaluate: approaching expected %v, got %v", want, r.Reward)
	}

	r = e.Evaluate(frame(2.5, 3.0))
	want = -DefaultLeaveWeight*0.5 + DefaultTimePenalty
	if math.Abs(r.Reward-want) > tol {
		t.Errorf("evaluate: regressing expected %v, got %v", want, r.Reward)
	}

	r = e.Evaluate(frame(2.5, 3.0))
	if math.Abs(r.Reward-DefaultTimePenalty) > tol {
		t.Errorf("evaluate: stalling expected %v, got %v",
			DefaultTimePenalty, r.Reward)
	}
}

func TestResetClearsRollingState(t *testing.T) {
	e := newEvaluator(t, Rule00)
	e.Evaluate(frame(10.0, 3.0))

	// Reset twice, the rolling state must come from nowhere but the
	// latest reset
	e.Reset(nil)
	e.Reset(nil)
	r := e.Evaluate(frame(2.0, 3.0))
	if math.Abs(r.Reward-DefaultTimePenalty) > tol {
		t.Errorf("evaluate: progress should be zero after reset, got %v",
			r.Reward)
	}
	if math.Abs(r.Metrics[EpisodeReturn]-DefaultTimePenalty) > tol {
		t.Errorf("evaluate: episode return should restart, got %v",
			r.Metrics[EpisodeReturn])
	}

	first := frame(4.0, 3.0)
	e.Reset(&first)
	e.Reset(&first)
	r = e.Evaluate(frame(3.0, 3.0))
	want := DefaultApproachWeight + DefaultTimePenalty
	if math.Abs(r.Reward-want) > tol {
		t.Errorf("evaluate: expected %v from seeded reset, got %v", want,
			r.Reward)
	}
}

func TestProximityShaping(t *testing.T) {
	e := newEvaluator(t, Rule01)
	e.Reset(nil)

	far := e.Evaluate(frame(2.0, 0.35+DefaultProximityBand+0.1))
	if far.Metrics["proximity"] != 0 {
		t.Errorf("proximity: expected 0 outside band, got %v",
			far.Metrics["proximity"])
	}

	mid := e.Evaluate(frame(2.0, 0.35+DefaultProximityBand/2))
	want := -DefaultProximityWeight * 0.25
	if math.Abs(mid.Metrics["proximity"]-want) > tol {
		t.Errorf("proximity: expected %v, got %v", want,
			mid.Metrics["proximity"])
	}

	near := e.Evaluate(frame(2.0, 0.35+1e-6))
	if near.Done || near.Metrics["proximity"] >= mid.Metrics["proximity"] {
		t.Errorf("proximity: penalty should grow toward safe distance, "+
			"got %v", near.Metrics["proximity"])
	}
}

func TestPlanDeviation(t *testing.T) {
	e := newEvaluator(t, Rule02)
	e.Reset(nil)

	f := frame(2.0, 3.0)
	f.Robot = observation.Pose{X: 0, Y: 0.5}
	f.GlobalPlan = []r2.Vec{{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}}

	r := e.Evaluate(f)
	want := -DefaultPlanWeight * 0.5
	if math.Abs(r.Metrics["plan_deviation"]-want) > tol {
		t.Errorf("planDeviation: expected %v, got %v", want,
			r.Metrics["plan_deviation"])
	}
}

func TestRuleDoesNotChangeTerminalChecks(t *testing.T) {
	for _, rule := range Rules() {
		e := newEvaluator(t, rule)
		if r := e.Evaluate(frame(2.0, 0.1)); r.DoneReason != ts.Collision ||
			r.Reward != DefaultCollisionReward {
			t.Errorf("%v: collision check changed: %+v", rule, r)
		}
	}
}

func TestConfigurationErrors(t *testing.T) {
	tests := []Config{
		{SafeDist: 0.3},
		{GoalRadius: 0.3},
		{GoalRadius: -1, SafeDist: 0.3},
		{GoalRadius: 0.3, SafeDist: math.NaN()},
		{GoalRadius: 0.3, SafeDist: 0.3, Rule: "rule_99"},
	}

	for _, c := range tests {
		if _, err := New(c); !env.IsConfiguration(err) {
			t.Errorf("new(%+v): expected configuration error, got %v", c, err)
		}
	}
}
