// Package ghost turns posterior samples at a sequence of depths or ages into
// density fields for grey-scale "ghost" plots.
package ghost

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/ensemble"
	"github.com/uyouii/agedepth-algorithms/kde"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

type Options struct {
	// Prob is the mass of the central credible interval.
	Prob     float64
	GridSize int
	// Peak is the intensity the highest density of the field is scaled to.
	Peak   float64
	Cutoff float64
	// Workers bounds the query points summarized at once, GOMAXPROCS if 0.
	Workers int
	// Invert draws length/time instead of time/length.
	Invert      bool
	FromDensity bool
}

func DefaultOptions() Options {
	return Options{
		Prob:     DefaultProb,
		GridSize: kde.DefaultGridSize,
		Peak:     DefaultPeak,
		Cutoff:   DefaultCutoff,
	}
}

func (o Options) validate() error {
	if math.IsNaN(o.Prob) || o.Prob <= 0 || o.Prob >= 1 {
		return common.InvalidValuef("credible interval probability %v outside (0, 1)", o.Prob)
	}
	if !(o.Peak > 0) {
		return common.InvalidValuef("peak intensity must be positive, got %v", o.Peak)
	}
	if o.Cutoff < 0 || o.Cutoff >= 1 {
		return common.InvalidValuef("cutoff %v outside [0, 1)", o.Cutoff)
	}
	if o.Workers < 0 {
		return common.InvalidValuef("workers %d", o.Workers)
	}
	return nil
}

// SampleFunc returns the posterior samples of query point i.
type SampleFunc func(ctx context.Context, i int) []float64

// Render summarizes the samples of every query point and rescales all
// densities jointly. Query points are independent and summarized in parallel;
// each writes only its own index of the field.
func Render(ctx context.Context, points []float64, sample SampleFunc, opts Options) (*model.DensityField, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := utils.GetLogger(ctx)

	n := len(points)
	field := &model.DensityField{
		QueryPoints: append([]float64(nil), points...),
		Densities:   make([][]model.Density, n),
		Lower:       nanSlice(n),
		Upper:       nanSlice(n),
		Mean:        nanSlice(n),
		SampleCount: make([]int, n),
		Prob:        opts.Prob,
		Peak:        opts.Peak,
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range points {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Render recover panic error!", zap.Any("err", r),
						zap.String("panic info", utils.GetPanicInfo()), zap.Float64("point", points[i]))
					err = fmt.Errorf("%w: query point %v: panic: %v", common.ErrorInvalidValue, points[i], r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			return summarizePoint(gctx, field, i, sample(gctx, i), opts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scale(field, opts)
	return field, nil
}

func summarizePoint(ctx context.Context, field *model.DensityField, i int, samples []float64, opts Options) error {
	if opts.Invert {
		samples = ensemble.Invert(samples)
	}
	finite := 0
	for _, v := range samples {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite++
		}
	}
	field.SampleCount[i] = finite
	if finite < kde.MinSampleCnt {
		return nil
	}

	summary, err := kde.Summarize(ctx, samples, kde.SummaryOptions{
		Prob:        opts.Prob,
		GridSize:    opts.GridSize,
		FromDensity: opts.FromDensity,
	})
	if err != nil {
		return fmt.Errorf("query point %v: %w", field.QueryPoints[i], err)
	}
	field.Densities[i] = summary.Density
	field.Lower[i] = summary.Interval.Lower.Value
	field.Upper[i] = summary.Interval.Upper.Value
	field.Mean[i] = summary.Mean
	return nil
}

// scale maps the global maximum density to opts.Peak and zeroes what falls
// below opts.Cutoff of it.
func scale(field *model.DensityField, opts Options) {
	maxDensity := 0.0
	for _, density := range field.Densities {
		for _, d := range density {
			maxDensity = math.Max(maxDensity, d.Value)
		}
	}
	field.MaxDensity = maxDensity
	if maxDensity <= 0 {
		return
	}

	factor := opts.Peak / maxDensity
	floor := opts.Cutoff * opts.Peak
	for _, density := range field.Densities {
		for j := range density {
			v := density[j].Value * factor
			if v < floor {
				v = 0
			}
			density[j].Value = v
		}
	}
}

func nanSlice(n int) []float64 {
	res := make([]float64, n)
	floats.AddConst(math.NaN(), res)
	return res
}

// AccrateDepth is the ghost of accumulation rates against depth.
func AccrateDepth(ctx context.Context, e *ensemble.Ensemble, depths []float64, opts Options) (*model.DensityField, error) {
	return Render(ctx, depths, func(ctx context.Context, i int) []float64 {
		return e.AccrateAtDepth(ctx, depths[i])
	}, opts)
}

// AccrateAge is the ghost of accumulation rates against calendar age.
func AccrateAge(ctx context.Context, e *ensemble.Ensemble, ages []float64, opts Options) (*model.DensityField, error) {
	return Render(ctx, ages, func(ctx context.Context, i int) []float64 {
		return e.AccrateAtAge(ctx, ages[i])
	}, opts)
}
