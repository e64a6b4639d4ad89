// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// IsFinite returns whether value is neither NaN nor ±Inf
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// NormalizeAngle wraps an angle in radians into the range (-π, π]
func NormalizeAngle(th float64) float64 {
	th = math.Mod(th, 2*math.Pi)
	if th <= -math.Pi {
		th += 2 * math.Pi
	} else if th > math.Pi {
		th -= 2 * math.Pi
	}
	return th
}

// Min calculates and returns the minimum float64 in a list. If the
// list is empty, +Inf is returned.
func Min(floats ...float64) float64 {
	min := math.Inf(1)
	for _, val := range floats {
		if val < min {
			min = val
		}
	}
	return min
}
