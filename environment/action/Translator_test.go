package action

import (
	"math"
	"testing"

	env "github.com/samuelfneumann/gonav/environment"
	"github.com/samuelfneumann/gonav/observation"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

const tol = 1e-9

var table = []Entry{
	{Name: "forward", Linear: 0.3, Angular: 0},
	{Name: "left", Linear: 0.15, Angular: 0.75},
	{Name: "right", Linear: 0.15, Angular: -0.75},
}

func act(v float64) *mat.VecDense {
	return mat.NewVecDense(1, []float64{v})
}

func TestContinuousProjection(t *testing.T) {
	c, err := NewContinuous(r1.Interval{Min: -math.Pi, Max: math.Pi}, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	robot := observation.Pose{X: 2.0, Y: 3.0}

	tests := []struct {
		angle, x, y float64
	}{
		{0, 2.8, 3.0},
		{math.Pi / 2, 2.0, 3.8},
		{math.Pi, 1.2, 3.0},
	}

	for _, test := range tests {
		cmd, err := c.Translate(act(test.angle), robot)
		if err != nil {
			t.Fatalf("translate(%v): %v", test.angle, err)
		}
		if cmd.Kind != env.Goal {
			t.Errorf("translate(%v): expected a goal command", test.angle)
		}
		if math.Abs(cmd.Target.X-test.x) > tol ||
			math.Abs(cmd.Target.Y-test.y) > tol {
			t.Errorf("translate(%v): expected (%v, %v), got (%v, %v)",
				test.angle, test.x, test.y, cmd.Target.X, cmd.Target.Y)
		}
	}
}

func TestContinuousClipsAndRejectsNonFinite(t *testing.T) {
	c, err := NewContinuous(r1.Interval{Min: -1, Max: 1}, 1)
	if err != nil {
		t.Fatal(err)
	}

	cmd, err := c.Translate(act(3), observation.Pose{})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Heading != 1 {
		t.Errorf("translate: expected heading clipped to 1, got %v",
			cmd.Heading)
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := c.Translate(act(v), observation.Pose{}); !env.IsContractViolation(err) {
			t.Errorf("translate(%v): expected contract violation, got %v",
				v, err)
		}
	}

	if _, err := c.Translate(mat.NewVecDense(2, nil), observation.Pose{}); !env.IsContractViolation(err) {
		t.Errorf("translate: expected contract violation on 2-d action, "+
			"got %v", err)
	}
}

func TestDiscreteTable(t *testing.T) {
	d, err := NewDiscrete(table)
	if err != nil {
		t.Fatal(err)
	}

	cmd, err := d.Translate(act(0), observation.Pose{X: 5, Y: 5})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Kind != env.Velocity || cmd.Linear != table[0].Linear ||
		cmd.Angular != table[0].Angular || cmd.Name != table[0].Name {
		t.Errorf("translate(0): expected %v, got %v", table[0], cmd)
	}

	for _, v := range []float64{3, -1, 0.5, math.NaN()} {
		if _, err := d.Translate(act(v), observation.Pose{}); !env.IsContractViolation(err) {
			t.Errorf("translate(%v): expected contract violation, got %v",
				v, err)
		}
	}
}

func TestConstructionErrors(t *testing.T) {
	if _, err := NewDiscrete(nil); !env.IsConfiguration(err) {
		t.Errorf("newDiscrete: expected configuration error, got %v", err)
	}
	if _, err := NewContinuous(r1.Interval{Min: 1, Max: -1}, 1); !env.IsConfiguration(err) {
		t.Errorf("newContinuous: expected configuration error, got %v", err)
	}
	if _, err := NewContinuous(r1.Interval{Min: -1, Max: 1}, 0); !env.IsConfiguration(err) {
		t.Errorf("newContinuous: expected configuration error, got %v", err)
	}
}

func TestStopAndSpec(t *testing.T) {
	d, _ := NewDiscrete(table)
	if stop := d.Stop(); stop.Kind != env.Velocity || stop.Linear != 0 ||
		stop.Angular != 0 {
		t.Errorf("stop: expected zero velocity, got %v", stop)
	}
	if spec := d.Spec(); spec.UpperBound.AtVec(0) != 2 ||
		spec.Cardinality != env.Discrete {
		t.Errorf("spec: unexpected discrete spec %v", spec)
	}

	c, _ := NewContinuous(r1.Interval{Min: -1, Max: 1}, 0.8)
	if stop := c.Stop(); stop.Kind != env.Stop {
		t.Errorf("stop: expected a stop command, got %v", stop)
	}
	if spec := c.Spec(); spec.LowerBound.AtVec(0) != -1 ||
		spec.Cardinality != env.Continuous {
		t.Errorf("spec: unexpected continuous spec %v", spec)
	}
}
