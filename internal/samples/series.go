// Package samples loads (x, y) sample series for the curve model from CSV
// files, SQLite tables, or a seeded synthetic generator.
package samples

import (
	"errors"
	"sort"
)

// ErrNoSamples is returned when a source yields no usable rows.
var ErrNoSamples = errors.New("no samples")

// Series is a sample series ordered by x.
type Series struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.X) }

// Less and Swap make Series a sort.Interface over x.
func (s Series) Less(i, j int) bool { return s.X[i] < s.X[j] }

func (s Series) Swap(i, j int) {
	s.X[i], s.X[j] = s.X[j], s.X[i]
	s.Y[i], s.Y[j] = s.Y[j], s.Y[i]
}

// SortByX orders the samples by x in place. Rows with equal x keep their
// relative order; the curve model rejects them later.
func (s Series) SortByX() { sort.Stable(s) }
