// Package ensemble holds the posterior of an age-depth model: one row per
// MCMC iteration with the age at the top of the core followed by the
// accumulation rate (time per unit depth) of each fixed-thickness segment.
package ensemble

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/uyouii/agedepth-algorithms/common"
)

type Ensemble struct {
	samples   *mat.Dense
	depthMin  float64
	thickness float64
	k         int
}

// New wraps an iterations x (1+K) matrix. The matrix is not copied and must
// not be modified afterwards.
func New(samples *mat.Dense, depthMin, thickness float64) (*Ensemble, error) {
	if samples == nil {
		return nil, common.InvalidValuef("ensemble has no samples")
	}
	rows, cols := samples.Dims()
	if rows == 0 || cols < 2 {
		return nil, common.InvalidValuef("ensemble needs at least one iteration and one segment, got %dx%d", rows, cols)
	}
	if !(thickness > 0) || math.IsInf(thickness, 0) {
		return nil, common.InvalidValuef("segment thickness must be positive, got %v", thickness)
	}
	if math.IsNaN(depthMin) || math.IsInf(depthMin, 0) {
		return nil, common.InvalidValuef("top depth %v", depthMin)
	}
	return &Ensemble{
		samples:   samples,
		depthMin:  depthMin,
		thickness: thickness,
		k:         cols - 1,
	}, nil
}

func FromRows(rows [][]float64, depthMin, thickness float64) (*Ensemble, error) {
	if len(rows) == 0 {
		return nil, common.InvalidValuef("ensemble has no samples")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, common.InvalidValuef("iteration %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	if cols == 0 {
		return nil, common.InvalidValuef("ensemble has no columns")
	}
	return New(mat.NewDense(len(rows), cols, data), depthMin, thickness)
}

func (e *Ensemble) Iterations() int {
	rows, _ := e.samples.Dims()
	return rows
}

// K is the number of segments.
func (e *Ensemble) K() int { return e.k }

func (e *Ensemble) Thickness() float64 { return e.thickness }

func (e *Ensemble) DepthMin() float64 { return e.depthMin }

func (e *Ensemble) DepthMax() float64 { return e.depthMin + float64(e.k)*e.thickness }

// Elbows are the K+1 segment boundary depths.
func (e *Ensemble) Elbows() []float64 {
	res := make([]float64, e.k+1)
	for i := range res {
		res[i] = e.depthMin + float64(i)*e.thickness
	}
	return res
}

func (e *Ensemble) StartAge(iter int) float64 {
	return e.samples.At(iter, 0)
}

func (e *Ensemble) Rates(iter int) []float64 {
	return mat.Row(nil, iter, e.samples)[1:]
}

// Segment returns the draws of segment k's rate over all iterations.
func (e *Ensemble) Segment(k int) []float64 {
	return mat.Col(nil, k+1, e.samples)
}

// Trajectory returns the ages at every elbow for one iteration:
// startAge, startAge + rate_1*thickness, ...
func (e *Ensemble) Trajectory(iter int) []float64 {
	ages := make([]float64, e.k+1)
	ages[0] = e.samples.At(iter, 0)
	for k := 1; k <= e.k; k++ {
		ages[k] = ages[k-1] + e.thickness*e.samples.At(iter, k)
	}
	return ages
}

// segmentIndex is the last segment whose top elbow is at or above depth.
// The bottom elbow belongs to the last segment.
func (e *Ensemble) segmentIndex(depth float64) (int, bool) {
	if math.IsNaN(depth) || depth < e.depthMin || depth > e.DepthMax() {
		return 0, false
	}
	k := int(math.Floor((depth-e.depthMin)/e.thickness + 1e-9))
	if k >= e.k {
		k = e.k - 1
	}
	return k, true
}

// AgeAtDepth interpolates one iteration's trajectory, NaN outside the elbows.
func (e *Ensemble) AgeAtDepth(iter int, depth float64) float64 {
	k, ok := e.segmentIndex(depth)
	if !ok {
		return math.NaN()
	}
	age := e.samples.At(iter, 0)
	for i := 1; i <= k; i++ {
		age += e.thickness * e.samples.At(iter, i)
	}
	top := e.depthMin + float64(k)*e.thickness
	return age + (depth-top)*e.samples.At(iter, k+1)
}

func (e *Ensemble) AgesAtDepth(depth float64) []float64 {
	res := make([]float64, e.Iterations())
	for i := range res {
		res[i] = e.AgeAtDepth(i, depth)
	}
	return res
}

// RateAtDepth is one iteration's accumulation rate at depth, NaN outside the elbows.
func (e *Ensemble) RateAtDepth(iter int, depth float64) float64 {
	k, ok := e.segmentIndex(depth)
	if !ok {
		return math.NaN()
	}
	return e.samples.At(iter, k+1)
}
