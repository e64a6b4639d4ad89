package observation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func scan(v float64) []float64 {
	return []float64{v, v + 0.5}
}

func TestHistoryPadsWithEarliestScan(t *testing.T) {
	h := NewHistory(3)
	if h.Snapshot() != nil {
		t.Error("snapshot: expected nil snapshot on empty history")
	}

	h.Push(scan(1))
	snapshot := h.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("snapshot: expected length 3, got %v", len(snapshot))
	}
	for i, s := range snapshot {
		if !floats.Equal(s, scan(1)) {
			t.Errorf("snapshot: entry %v should be the first scan, got %v",
				i, s)
		}
	}

	h.Push(scan(2))
	snapshot = h.Snapshot()
	want := [][]float64{scan(1), scan(1), scan(2)}
	for i := range want {
		if !floats.Equal(snapshot[i], want[i]) {
			t.Errorf("snapshot: entry %v expected %v, got %v", i, want[i],
				snapshot[i])
		}
	}
}

func TestHistoryKeepsLastN(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 7; i++ {
		h.Push(scan(float64(i)))
	}

	if h.Len() != 3 {
		t.Errorf("len: expected 3, got %v", h.Len())
	}

	snapshot := h.Snapshot()
	want := [][]float64{scan(4), scan(5), scan(6)}
	for i := range want {
		if !floats.Equal(snapshot[i], want[i]) {
			t.Errorf("snapshot: entry %v expected %v, got %v", i, want[i],
				snapshot[i])
		}
	}
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory(2)
	h.Push(scan(1))
	h.Push(scan(2))
	h.Reset()

	if h.Len() != 0 || h.Snapshot() != nil {
		t.Fatal("reset: history should be empty")
	}

	h.Push(scan(9))
	for i, s := range h.Snapshot() {
		if !floats.Equal(s, scan(9)) {
			t.Errorf("snapshot: entry %v should be the post-reset scan, "+
				"got %v", i, s)
		}
	}
}

func TestHistoryCopiesPushedScan(t *testing.T) {
	h := NewHistory(1)
	s := scan(1)
	h.Push(s)
	s[0] = 100

	if got := h.Snapshot()[0][0]; got != 1 {
		t.Errorf("push: history should hold a copy, got %v", got)
	}
}

func TestHistoryStackAndTensor(t *testing.T) {
	h := NewHistory(2)
	h.Push(scan(1))
	h.Push(scan(2))

	stack := h.Stack()
	want := mat.NewVecDense(4, []float64{1, 1.5, 2, 2.5})
	if !mat.Equal(stack, want) {
		t.Errorf("stack: expected %v, got %v", mat.Formatted(want.T()),
			mat.Formatted(stack.T()))
	}

	ten := h.Tensor()
	shape := ten.Shape()
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 2 {
		t.Fatalf("tensor: expected shape (2, 2), got %v", shape)
	}
	v, err := ten.At(1, 0)
	if err != nil {
		t.Fatalf("tensor: %v", err)
	}
	if v.(float64) != 2 {
		t.Errorf("tensor: expected newest scan in row 1, got %v", v)
	}
}

func TestMerge(t *testing.T) {
	f := Frame{
		Goal:  Polar{Rho: 3, Theta: 0.5},
		Speed: Speed{Linear: 0.2, Angular: -0.1},
	}
	merged := Merge(mat.NewVecDense(2, []float64{1, 2}), f)
	want := mat.NewVecDense(6, []float64{1, 2, 3, 0.5, 0.2, -0.1})
	if !mat.Equal(merged, want) {
		t.Errorf("merge: expected %v, got %v", mat.Formatted(want.T()),
			mat.Formatted(merged.T()))
	}
}

func TestFrameValidate(t *testing.T) {
	f := Frame{Scan: []float64{1, 2, 3}}
	if err := f.Validate(3, 3.5); err != nil {
		t.Errorf("validate: unexpected error %v", err)
	}
	if err := f.Validate(4, 3.5); err == nil {
		t.Error("validate: expected error on wrong beam count")
	}
	if err := f.Validate(3, 2.5); err == nil {
		t.Error("validate: expected error on out of range beam")
	}
	for _, goal := range []Polar{
		{Rho: math.NaN(), Theta: 0},
		{Rho: math.Inf(1), Theta: 0},
		{Rho: 1, Theta: math.Inf(-1)},
		{Rho: -1, Theta: 0},
	} {
		bad := Frame{Scan: []float64{1, 2, 3}, Goal: goal}
		if err := bad.Validate(3, 3.5); err == nil {
			t.Errorf("validate: expected error on goal %+v", goal)
		}
	}
	if f.MinRange() != 1 {
		t.Errorf("minRange: expected 1, got %v", f.MinRange())
	}
}
