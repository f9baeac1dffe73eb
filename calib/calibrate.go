package calib

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

type Options struct {
	Cutoff       float64
	MinSupport   int
	ResampleSize int
}

func DefaultOptions() Options {
	return Options{
		Cutoff:       DefaultCutoff,
		MinSupport:   MinSupport,
		ResampleSize: ResampleSize,
	}
}

func (o Options) validate() error {
	if math.IsNaN(o.Cutoff) || o.Cutoff < 0 || o.Cutoff >= 1 {
		return common.ConfigurationErrorf("cutoff %v outside [0, 1)", o.Cutoff)
	}
	if o.ResampleSize < 2 {
		return common.ConfigurationErrorf("resample size %d below 2", o.ResampleSize)
	}
	if o.MinSupport < 0 {
		return common.ConfigurationErrorf("min support %d is negative", o.MinSupport)
	}
	return nil
}

func DefaultNoiseModel() model.NoiseModel {
	return model.NoiseModel{TA: DefaultTA, TB: DefaultTB}
}

func ValidateNoiseModel(noise model.NoiseModel) error {
	if !noise.Symmetric() {
		return common.ConfigurationErrorf("t.b - t.a should always be 1, got t.a=%v t.b=%v", noise.TA, noise.TB)
	}
	if noise.TA <= 0 && !noise.Normal {
		return common.ConfigurationErrorf("t.a must be positive, got %v", noise.TA)
	}
	return nil
}

// Calibrate turns a measurement with the given mean and variance into a
// calendar age distribution over the curve's grid.
//
// Each curve row gets the likelihood of the measurement: a Normal density
// with the curve and measurement variances added, or the Student-t kernel
// (t.b + (mean-mu)^2 / (2*(sigma^2+variance)))^-(t.a+0.5). Rows at or above
// opts.Cutoff are kept when there are more than opts.MinSupport of them,
// otherwise the distribution is resampled onto opts.ResampleSize even steps so
// that very precise dates keep a usable spread.
func Calibrate(c *curve.Curve, mean, variance float64, noise model.NoiseModel, opts Options) (*model.CalibratedDistribution, error) {
	if err := ValidateNoiseModel(noise); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if c == nil || c.Len() == 0 {
		return nil, common.InvalidValuef("calibration needs a curve")
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, common.InvalidValuef("measurement mean %v", mean)
	}
	if !(variance > 0) || math.IsInf(variance, 0) {
		return nil, common.InvalidValuef("measurement variance must be positive, got %v", variance)
	}

	// ascending calendar ages
	n := c.Len()
	ages, logLik := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		p := c.Point(n - 1 - i)
		ages[i] = p.CalAge
		logLik[i] = logLikelihood(p, mean, variance, noise)
	}

	if total := LogSumExp(logLik); math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, common.InvalidValuef("measurement %v has zero likelihood on curve %s", mean, c.Name())
	}
	probs := ListExp(NormalizeData(logLik))

	if sparseAges, sparseProbs := keepSupport(ages, probs, opts.Cutoff); len(sparseAges) > opts.MinSupport {
		floats.Scale(1/floats.Sum(sparseProbs), sparseProbs)
		return &model.CalibratedDistribution{Ages: sparseAges, Probs: sparseProbs}, nil
	}

	grid := utils.Linspace(ages[0], ages[n-1], opts.ResampleSize)
	if n == 1 {
		grid = []float64{ages[0]}
	}
	resampled := utils.Approx(ages, probs, grid, true)
	sum := floats.Sum(resampled)
	if !(sum > 0) {
		return nil, common.InvalidValuef("measurement %v collapsed to zero probability", mean)
	}
	floats.Scale(1/sum, resampled)
	return &model.CalibratedDistribution{Ages: grid, Probs: resampled}, nil
}

// keepSupport returns the ages whose probability is at or above cutoff.
func keepSupport(ages, probs []float64, cutoff float64) ([]float64, []float64) {
	keptAges, keptProbs := []float64{}, []float64{}
	for i, p := range probs {
		if p >= cutoff {
			keptAges = append(keptAges, ages[i])
			keptProbs = append(keptProbs, p)
		}
	}
	return keptAges, keptProbs
}

func logLikelihood(p model.CurvePoint, mean, variance float64, noise model.NoiseModel) float64 {
	s2 := p.Error*p.Error + variance
	if noise.Normal {
		return distuv.Normal{Mu: p.Mean, Sigma: math.Sqrt(s2)}.LogProb(mean)
	}
	d := mean - p.Mean
	return -(noise.TA + 0.5) * math.Log(noise.TB+d*d/(2*s2))
}
