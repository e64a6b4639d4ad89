package environment

import (
	"context"
	"fmt"
	"testing"

	"github.com/samuelfneumann/gonav/observation"
	ts "github.com/samuelfneumann/gonav/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)

	step := ts.New(ts.Mid, 0, nil, observation.Frame{}, 2, 1)
	if limit.End(&step) {
		t.Error("end: step 2 of 3 should not end the episode")
	}

	step = ts.New(ts.Mid, 0, nil, observation.Frame{}, 3, 1)
	if !limit.End(&step) {
		t.Fatal("end: step 3 of 3 should end the episode")
	}
	if step.EndType != ts.MaxSteps || step.Info[ts.DoneReasonKey] != 0 {
		t.Errorf("end: expected MaxSteps, got %v", step.EndType)
	}

	// An episode that already ended keeps its reason
	step = ts.New(ts.Mid, 0, nil, observation.Frame{}, 3, 1)
	step.SetEnd(ts.Collision)
	limit.End(&step)
	if step.EndType != ts.Collision {
		t.Errorf("end: expected Collision to be kept, got %v", step.EndType)
	}
}

func TestErrorClassification(t *testing.T) {
	config := ConfigurationError("load", "missing %v", "safe_dist")
	contract := ContractViolation("step", "episode done")
	collaborator := CollaboratorUnavailable("observe",
		context.DeadlineExceeded)

	if !IsConfiguration(config) || IsContractViolation(config) {
		t.Errorf("configuration error misclassified: %v", config)
	}
	if !IsContractViolation(contract) || IsCollaboratorUnavailable(contract) {
		t.Errorf("contract violation misclassified: %v", contract)
	}
	if !IsCollaboratorUnavailable(collaborator) {
		t.Errorf("collaborator error misclassified: %v", collaborator)
	}

	wrapped := fmt.Errorf("outer: %w", collaborator)
	if !IsCollaboratorUnavailable(wrapped) {
		t.Error("wrapped collaborator error should still be classified")
	}
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}, {Min: 5, Max: 5}}
	s := NewUniformStarter(bounds, 12)

	for i := 0; i < 100; i++ {
		start := s.Start()
		if start.AtVec(0) < -1 || start.AtVec(0) > 1 {
			t.Errorf("start: feature 0 out of bounds: %v", start.AtVec(0))
		}
		if start.AtVec(1) != 5 {
			t.Errorf("start: feature 1 should be 5, got %v", start.AtVec(1))
		}
	}
}

func TestCategoricalStarter(t *testing.T) {
	s := NewCategoricalStarter([]IntRange{{Min: 3, Max: 5}, {Min: 2, Max: 2}},
		7)

	seen := make(map[float64]bool)
	for i := 0; i < 200; i++ {
		start := s.Start()
		if start.AtVec(0) < 3 || start.AtVec(0) > 5 {
			t.Errorf("start: feature 0 out of range: %v", start.AtVec(0))
		}
		if start.AtVec(1) != 2 {
			t.Errorf("start: feature 1 should be 2, got %v", start.AtVec(1))
		}
		seen[start.AtVec(0)] = true
	}
	if len(seen) != 3 {
		t.Errorf("start: expected 3, 4 and 5 to be sampled, got %v", seen)
	}
}

func TestSpec(t *testing.T) {
	s := NewSpec(mat.NewVecDense(2, nil), Observation,
		mat.NewVecDense(2, []float64{0, -1}),
		mat.NewVecDense(2, []float64{3.5, 1}), Continuous)
	if s.Len() != 2 {
		t.Errorf("len: expected 2, got %v", s.Len())
	}
	if b := s.Bounds(1); b.Min != -1 || b.Max != 1 {
		t.Errorf("bounds: expected [-1, 1], got %v", b)
	}

	defer func() {
		if recover() == nil {
			t.Error("newSpec: expected a panic on mismatched bounds")
		}
	}()
	NewSpec(mat.NewVecDense(2, nil), Action, mat.NewVecDense(1, nil),
		mat.NewVecDense(2, nil), Discrete)
}
