// Package critical selects critical points from candidate root sets by the
// magnitude of a derivative curve at each root.
package critical

import "math"

// Magnitude evaluates a curve at each x.
type Magnitude func(xs []float64) []float64

// DropNaN returns roots without NaN entries, preserving order. Root sets
// mark identically-zero pieces with a NaN after the piece's left
// breakpoint; those placeholders are never critical points.
func DropNaN(roots []float64) []float64 {
	out := make([]float64, 0, len(roots))
	for _, r := range roots {
		if !math.IsNaN(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMagnitude keeps the roots where |f(root)| is strictly greater than
// threshold, in input order. NaN roots never pass.
func FilterByMagnitude(roots []float64, f Magnitude, threshold float64) []float64 {
	out := make([]float64, 0, len(roots))
	if len(roots) == 0 {
		return out
	}
	vals := f(roots)
	for i, r := range roots {
		if math.IsNaN(r) {
			continue
		}
		if math.Abs(vals[i]) > threshold {
			out = append(out, r)
		}
	}
	return out
}

// Select drops NaN placeholders from roots and applies FilterByMagnitude.
func Select(roots []float64, f Magnitude, threshold float64) []float64 {
	return FilterByMagnitude(DropNaN(roots), f, threshold)
}
