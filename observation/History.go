package observation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// History is a fixed capacity FIFO queue of the most recent laser
// scans. It gives a policy short-term temporal context (e.g. to infer
// obstacle velocity) without requiring the policy to be stateful.
//
// Scans are stored in a ring so that pushing never reallocates once
// the buffer is full.
type History struct {
	scans [][]float64
	next  int // ring index the next scan is written to
	size  int
}

// NewHistory returns a new History holding at most capacity scans
func NewHistory(capacity int) *History {
	if capacity < 1 {
		panic(fmt.Sprintf("newHistory: capacity must be positive, got %v",
			capacity))
	}
	return &History{scans: make([][]float64, capacity)}
}

// Cap returns the capacity N of the history
func (h *History) Cap() int {
	return len(h.scans)
}

// Len returns the number of scans pushed since the last reset, up to
// the capacity
func (h *History) Len() int {
	return h.size
}

// Push appends a copy of scan, evicting the oldest scan if the history
// is full
func (h *History) Push(scan []float64) {
	h.scans[h.next] = append([]float64(nil), scan...)
	h.next = (h.next + 1) % len(h.scans)
	if h.size < len(h.scans) {
		h.size++
	}
}

// Reset empties the history
func (h *History) Reset() {
	for i := range h.scans {
		h.scans[i] = nil
	}
	h.next = 0
	h.size = 0
}

// Snapshot returns the last N scans, oldest first. If fewer than N
// scans have been pushed since the last reset, the earliest available
// scan is repeated at the front so that the snapshot always has
// exactly N entries. An empty history returns nil.
//
// The returned scans are shared with the History and must not be
// modified.
func (h *History) Snapshot() [][]float64 {
	if h.size == 0 {
		return nil
	}

	capacity := len(h.scans)
	oldest := (h.next - h.size + capacity) % capacity

	snapshot := make([][]float64, capacity)
	pad := capacity - h.size
	for i := 0; i < pad; i++ {
		snapshot[i] = h.scans[oldest]
	}
	for i := 0; i < h.size; i++ {
		snapshot[pad+i] = h.scans[(oldest+i)%capacity]
	}
	return snapshot
}

// Stack returns the snapshot flattened into a single vector, oldest
// scan first. An empty history returns nil.
func (h *History) Stack() *mat.VecDense {
	snapshot := h.Snapshot()
	if snapshot == nil {
		return nil
	}

	beams := len(snapshot[0])
	data := make([]float64, 0, beams*len(snapshot))
	for _, scan := range snapshot {
		data = append(data, scan...)
	}
	return mat.NewVecDense(len(data), data)
}

// Tensor returns the snapshot as a tensor of shape (N, beams), the
// layout expected by convolutional policies over stacked scans. An
// empty history returns nil.
func (h *History) Tensor() *tensor.Dense {
	stack := h.Stack()
	if stack == nil {
		return nil
	}

	beams := stack.Len() / h.Cap()
	return tensor.New(
		tensor.WithShape(h.Cap(), beams),
		tensor.WithBacking(stack.RawVector().Data),
	)
}
