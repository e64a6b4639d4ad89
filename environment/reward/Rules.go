package reward

import (
	"math"
	"sort"

	"github.com/samuelfneumann/gonav/observation"
	"gonum.org/v1/gonum/spatial/r2"
)

// Rule names a set of shaping terms
type Rule string

// Available rules. Each rule extends the previous one.
//
//	Rule     Terms
//	rule_00  progress, time penalty
//	rule_01  rule_00 + proximity
//	rule_02  rule_01 + global plan deviation
const (
	Rule00 Rule = "rule_00"
	Rule01 Rule = "rule_01"
	Rule02 Rule = "rule_02"

	DefaultRule = Rule00
)

// term is a single shaping term of a reward rule
type term struct {
	name string
	fn   func(e *Evaluator, f observation.Frame) float64
}

var (
	progressTerm  = term{"progress", progress}
	timeTerm      = term{"time", timePenalty}
	proximityTerm = term{"proximity", proximity}
	planTerm      = term{"plan_deviation", planDeviation}
)

var rules = map[Rule][]term{
	Rule00: {progressTerm, timeTerm},
	Rule01: {progressTerm, timeTerm, proximityTerm},
	Rule02: {progressTerm, timeTerm, proximityTerm, planTerm},
}

// Rules returns the names of all registered rules, sorted
func Rules() []Rule {
	names := make([]Rule, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// progress rewards the decrease in distance to goal since the previous
// cycle. Moving away from the goal is penalised more heavily than
// moving toward it is rewarded.
func progress(e *Evaluator, f observation.Frame) float64 {
	if !e.hasPrev {
		return 0
	}

	diff := e.prevDistance - f.DistanceToGoal()
	if diff > 0 {
		return e.ApproachWeight * diff
	}
	return e.LeaveWeight * diff
}

func timePenalty(e *Evaluator, _ observation.Frame) float64 {
	return e.TimePenalty
}

// proximity is zero outside [safeDist, safeDist+band) and grows
// quadratically to -ProximityWeight as the clearance reaches safeDist
func proximity(e *Evaluator, f observation.Frame) float64 {
	margin := f.MinRange() - e.SafeDist
	if margin >= e.ProximityBand {
		return 0
	}

	closeness := 1 - math.Max(margin, 0)/e.ProximityBand
	return -e.ProximityWeight * closeness * closeness
}

// planDeviation penalises the distance from the robot to the nearest
// waypoint of the global plan, capped at PlanCap
func planDeviation(e *Evaluator, f observation.Frame) float64 {
	if len(f.GlobalPlan) == 0 {
		return 0
	}

	robot := f.Robot.Vec()
	nearest := math.Inf(1)
	for _, waypoint := range f.GlobalPlan {
		nearest = math.Min(nearest, r2.Norm(r2.Sub(waypoint, robot)))
	}
	return -e.PlanWeight * math.Min(nearest, e.PlanCap)
}
