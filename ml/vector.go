package ml

import (
	"math"
	"sort"
)

// Vector is a sparse feature vector in FeatureSpace coordinates.
// Absent columns are zero.
type Vector map[int]float64

// Columns returns the occupied column indices in ascending order. Float
// accumulation is not associative, so any sum over a Vector must walk the
// columns in this fixed order rather than ranging over the map, whose
// iteration order changes per call.
func (v Vector) Columns() []int {
	cols := make([]int, 0, len(v))
	for idx := range v {
		cols = append(cols, idx)
	}
	sort.Ints(cols)
	return cols
}

// Dot computes the dot product with a dense weight row.
func (v Vector) Dot(weights []float64) float64 {
	var sum float64
	for _, idx := range v.Columns() {
		if idx >= 0 && idx < len(weights) {
			sum += v[idx] * weights[idx]
		}
	}
	return sum
}

// Norm returns the L2 norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, idx := range v.Columns() {
		value := v[idx]
		sum += value * value
	}
	return math.Sqrt(sum)
}

// Scale multiplies every component in place.
func (v Vector) Scale(factor float64) {
	for idx := range v {
		v[idx] *= factor
	}
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for idx, value := range v {
		out[idx] = value
	}
	return out
}
