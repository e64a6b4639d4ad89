package trackers

import (
	"github.com/samuelfneumann/gonav/experiment/tracker"
	ts "github.com/samuelfneumann/gonav/timestep"
)

// DoneReason tracks why each episode of an experiment ended. The saved
// data holds one entry per finished episode, the numeric value of its
// timestep.EndType.
type DoneReason struct {
	reasons  []float64
	counts   map[ts.EndType]int
	filename string
}

// NewDoneReason returns a new DoneReason tracker which will save its
// data at filename
func NewDoneReason(filename string) *DoneReason {
	return &DoneReason{
		counts:   make(map[ts.EndType]int),
		filename: filename,
	}
}

// Track records the end type of t if t is the last timestep of its
// episode
func (d *DoneReason) Track(t ts.TimeStep) {
	if !t.Last() {
		return
	}
	d.reasons = append(d.reasons, float64(t.EndType))
	d.counts[t.EndType]++
}

// Count returns the number of episodes which ended for reason e
func (d *DoneReason) Count(e ts.EndType) int {
	return d.counts[e]
}

// Data returns the end type of every finished episode
func (d *DoneReason) Data() []float64 {
	return d.reasons
}

// Save saves the data tracked by the DoneReason Tracker to disk
func (d *DoneReason) Save() error {
	return tracker.SaveData(d.filename, d.reasons)
}
