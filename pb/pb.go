// Package pb is the forward model of Pb-210 activity in a sediment slice.
package pb

import (
	"context"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/ensemble"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// AgeModel maps a depth to a calendar age.
type AgeModel func(depth float64) float64

type Params struct {
	// Density is the dry bulk density of the slice.
	Density   float64
	Influx    float64
	Supported float64
	Unit      Unit
	// ReferenceAge is the age of the core top, times are counted from it.
	ReferenceAge float64
}

// ModelledActivity is the activity expected between depths top and bottom:
//
//	supported + influx/(λ·f·density) · (exp(-λ·t_top) - exp(-λ·t_bottom))
//
// with t = ageModel(depth) - ReferenceAge.
func ModelledActivity(top, bottom float64, params Params, ageModel AgeModel) (float64, error) {
	if !(top < bottom) {
		return math.NaN(), common.DomainErrorf("slice top %v must be above its bottom %v", top, bottom)
	}
	if ageModel == nil {
		return math.NaN(), common.InvalidValuef("no age model")
	}
	if !(params.Density > 0) {
		return math.NaN(), common.InvalidValuef("dry bulk density must be positive, got %v", params.Density)
	}

	tTop := ageModel(top) - params.ReferenceAge
	tBottom := ageModel(bottom) - params.ReferenceAge
	decayed := math.Exp(-Lambda*tTop) - math.Exp(-Lambda*tBottom)
	return params.Supported + params.Influx/(Lambda*params.Unit.factor()*params.Density)*decayed, nil
}

// Slice is a dated interval of the core.
type Slice struct {
	Top, Bottom float64
	Density     float64
}

// ModelledActivities evaluates every slice for every iteration of the
// ensemble, with that iteration's influx and supported activity. The result
// has one row per iteration and one column per slice. Slices reaching outside
// the model are NaN.
func ModelledActivities(ctx context.Context, e *ensemble.Ensemble, slices []Slice,
	influx, supported []float64, unit Unit, referenceAge float64) (*mat.Dense, error) {
	iterations := e.Iterations()
	if len(influx) != iterations || len(supported) != iterations {
		return nil, common.InvalidValuef("need %d influx and supported draws, got %d and %d",
			iterations, len(influx), len(supported))
	}
	if len(slices) == 0 {
		return nil, common.InvalidValuef("no slices")
	}
	for _, s := range slices {
		if !(s.Top < s.Bottom) {
			return nil, common.DomainErrorf("slice top %v must be above its bottom %v", s.Top, s.Bottom)
		}
	}

	outside := 0
	res := mat.NewDense(iterations, len(slices), nil)
	for iter := 0; iter < iterations; iter++ {
		ageModel := func(depth float64) float64 { return e.AgeAtDepth(iter, depth) }
		params := Params{
			Influx:       influx[iter],
			Supported:    supported[iter],
			Unit:         unit,
			ReferenceAge: referenceAge,
		}
		for j, s := range slices {
			params.Density = s.Density
			v, err := ModelledActivity(s.Top, s.Bottom, params, ageModel)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(v) && iter == 0 {
				outside++
			}
			res.Set(iter, j, v)
		}
	}
	if outside > 0 {
		utils.GetLogger(ctx).Warn("slices outside the age-depth model", zap.Int("slices", outside),
			zap.Float64("min_depth", e.DepthMin()), zap.Float64("max_depth", e.DepthMax()))
	}
	return res, nil
}
