package ensemble

import (
	"context"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/uyouii/agedepth-algorithms/utils"
)

// AccrateAtDepth returns the posterior rate draws (one per iteration) of the
// segment holding depth, or nil when depth lies outside the elbows.
func (e *Ensemble) AccrateAtDepth(ctx context.Context, depth float64) []float64 {
	k, ok := e.segmentIndex(depth)
	if !ok {
		utils.GetLogger(ctx).Warn("depth outside the age-depth model", zap.Float64("depth", depth),
			zap.Float64("min_depth", e.depthMin), zap.Float64("max_depth", e.DepthMax()))
		return nil
	}
	return e.Segment(k)
}

// AccrateAtAge collects, for every iteration whose trajectory passes age, the
// rate of the segment bracketing it. Segments are half-open except the last. Iterations that never reach age add
// nothing.
func (e *Ensemble) AccrateAtAge(ctx context.Context, age float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	accs := []float64{}

	for iter := 0; iter < e.Iterations(); iter++ {
		ages := e.Trajectory(iter)
		lo = math.Min(lo, floats.Min(ages))
		hi = math.Max(hi, floats.Max(ages))

		for k := 1; k < len(ages); k++ {
			// the last segment includes the bottom of the trajectory
			if ages[k-1] <= age && (age < ages[k] || (k == len(ages)-1 && age == ages[k])) {
				accs = append(accs, e.samples.At(iter, k))
				break
			}
		}
	}

	if age < lo || age > hi {
		utils.GetLogger(ctx).Warn("age outside the age-depth model", zap.Float64("age", age),
			zap.Float64("min_age", lo), zap.Float64("max_age", hi))
	}
	return accs
}

// Invert turns time/length rates into length/time rates and back.
func Invert(rates []float64) []float64 {
	res := make([]float64, len(rates))
	for i, r := range rates {
		res[i] = 1 / r
	}
	return res
}
