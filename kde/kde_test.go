package kde

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
)

// normalSamples returns evenly spaced quantiles of Normal(mu, sigma).
func normalSamples(n int, mu, sigma float64) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	res := make([]float64, n)
	for i := range res {
		// interleave to make sure nothing relies on sorted input
		j := (i * 7919) % n
		res[i] = dist.Quantile((float64(j) + 0.5) / float64(n))
	}
	return res
}

func trapezoid(density []model.Density) float64 {
	sum := 0.0
	for i := 1; i < len(density); i++ {
		sum += (density[i].X - density[i-1].X) * (density[i].Value + density[i-1].Value) / 2
	}
	return sum
}

func TestKdensity(t *testing.T) {
	samples := normalSamples(1000, 50, 5)
	orig := append([]float64(nil), samples...)

	k, err := NewKDEUnivariate(samples, nil, 1, 0, 0, nil)
	require.NoError(t, err)
	density, bw := k.Kdensity()

	assert.Equal(t, orig, samples, "input must not be reordered")
	assert.Len(t, density, DefaultGridSize)
	assert.Greater(t, bw, 0.0)
	_, again := k.Kdensity()
	assert.Equal(t, bw, again)
	assert.InDelta(t, 1, trapezoid(density), 0.01)

	peak := density[0]
	for _, d := range density {
		if d.Value > peak.Value {
			peak = d
		}
	}
	assert.InDelta(t, 50, peak.X, 1)
}

func TestKdensityTruncatedAtZero(t *testing.T) {
	exp := distuv.Exponential{Rate: 1}
	samples := make([]float64, 500)
	for i := range samples {
		samples[i] = exp.Quantile((float64(i) + 0.5) / 500)
	}

	k, err := NewKDEUnivariate(samples, nil, 1, 0, 128, nil)
	require.NoError(t, err)
	density, _ := k.Kdensity()
	require.Len(t, density, 128)
	assert.Equal(t, 0.0, density[0].X)
	for _, d := range density {
		assert.GreaterOrEqual(t, d.X, 0.0)
	}
}

func TestQuantile(t *testing.T) {
	k, err := NewKDEUnivariate(normalSamples(400, 100, 10), nil, 1, 0, 256, nil)
	require.NoError(t, err)

	cdf, err := k.Cdf()
	require.NoError(t, err)
	assert.InDelta(t, 1, cdf[len(cdf)-1].Value, 0.01)
	for i := 1; i < len(cdf); i++ {
		assert.GreaterOrEqual(t, cdf[i].Value, cdf[i-1].Value)
	}

	median, err := k.Quantile(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 100, median.Value, 0.5)
	assert.Equal(t, 0.5, median.Quantile)

	low, err := k.Quantile(0)
	require.NoError(t, err)
	assert.Equal(t, cdf[0].X, low.Value)

	_, err = k.Quantile(1.5)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestNewKDEUnivariateValidation(t *testing.T) {
	_, err := NewKDEUnivariate(nil, nil, 1, 0, 0, nil)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = NewKDEUnivariate([]float64{1, 2}, []float64{1}, 1, 0, 0, nil)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = NewKDEUnivariate([]float64{-1, -2}, nil, 1, 0, 0, &model.Clip{Lower: 0, Upper: 10})
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestWeightsFollowSorting(t *testing.T) {
	k, err := NewKDEUnivariate([]float64{10, 1}, []float64{0, 1}, 1, 0, 64, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 10}, k.Endog)
	assert.Equal(t, []float64{1, 0}, k.Weights)
}

func TestClip(t *testing.T) {
	x, w := Clip([]float64{-1, 0, 1, 5, 20}, InitOnes(5), &model.Clip{Lower: 0, Upper: 10})
	assert.Equal(t, []float64{1, 5}, x)
	assert.Equal(t, []float64{1, 1}, w)
}

func TestBandWidthIdenticalSamples(t *testing.T) {
	bw := NewNormalReferenceBandWidth(nil).BandWidth([]float64{4, 4, 4, 4})
	assert.False(t, math.IsNaN(bw))
	assert.Greater(t, bw, 0.0)

	bw = NewNormalReferenceBandWidth(nil).BandWidth([]float64{0, 0})
	assert.Greater(t, bw, 0.0)
}

func TestNormalReferenceConstant(t *testing.T) {
	assert.InDelta(t, 1.059, NewGaussianKernel().NormalReferenceConstant(), 1e-3)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	samples := normalSamples(2000, 50, 5)

	t.Run("empirical interval", func(t *testing.T) {
		s, err := Summarize(ctx, samples, SummaryOptions{Prob: 0.95, GridSize: 256})
		require.NoError(t, err)
		assert.Equal(t, 2000, s.N)
		assert.InDelta(t, 50, s.Mean, 1e-6)
		assert.InDelta(t, 50-1.96*5, s.Interval.Lower.Value, 0.1)
		assert.InDelta(t, 50+1.96*5, s.Interval.Upper.Value, 0.1)
		assert.InDelta(t, 0.025, s.Interval.Lower.Quantile, 1e-12)
		assert.InDelta(t, 0.975, s.Interval.Upper.Quantile, 1e-12)
		assert.Len(t, s.Density, 256)
	})

	t.Run("density interval is a little wider", func(t *testing.T) {
		s, err := Summarize(ctx, samples, SummaryOptions{Prob: 0.95, GridSize: 256, FromDensity: true})
		require.NoError(t, err)
		assert.Less(t, s.Interval.Lower.Value, 50-1.96*5+0.1)
		assert.Greater(t, s.Interval.Lower.Value, 50-1.96*6)
		assert.Greater(t, s.Interval.Upper.Value, 50+1.96*5-0.1)
		assert.Less(t, s.Interval.Upper.Value, 50+1.96*6)
	})

	t.Run("ignores NaN samples", func(t *testing.T) {
		s, err := Summarize(ctx, []float64{1, math.NaN(), 2, 3}, SummaryOptions{Prob: 0.5})
		require.NoError(t, err)
		assert.Equal(t, 3, s.N)
		assert.InDelta(t, 2, s.Mean, 1e-12)
		assert.Len(t, s.Density, DefaultGridSize)
		assert.True(t, floats.Max([]float64{s.Density[0].Value, s.Density[1].Value}) >= 0)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := Summarize(ctx, []float64{1}, SummaryOptions{Prob: 0.95})
		assert.ErrorIs(t, err, common.ErrorInvalidValue)
		_, err = Summarize(ctx, samples, SummaryOptions{Prob: 1})
		assert.ErrorIs(t, err, common.ErrorInvalidValue)
	})
}
