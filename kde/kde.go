package kde

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// KDEUnivariate is a Gaussian kernel density estimate whose grid starts no
// lower than zero.
type KDEUnivariate struct {
	Weights []float64

	// If gridsize is 0, DefaultGridSize is used.
	gridSize int

	// An adjustment factor for the bw. Bandwidth becomes bw * adjust.
	bwAdjust float64

	// Defines the length of the grid past the lowest and highest values
	// of x so that the kernel goes to zero. The end points are
	// ``max(min(x) - cut * bw, 0)`` and ``max(x) + cut * bw``.
	cut float64

	// endogenous variable, sorted
	Endog []float64

	density []model.Density
	cdf     []model.Cdf
	grid    []float64
	bw      float64
	fited   bool
	kernel  *GaussianKernel
}

// NewKDEUnivariate copies endog and weights, callers keep ownership of theirs.
func NewKDEUnivariate(endog []float64, weights []float64,
	bwAdjust float64, cut float64, gridSize int, clip *model.Clip) (*KDEUnivariate, error) {
	if len(endog) == 0 {
		return nil, common.ErrorInvalidValue
	}

	if len(weights) == 0 {
		weights = InitOnes(len(endog))
	} else if len(weights) != len(endog) {
		return nil, common.ErrorInvalidValue
	}

	order := make([]int, len(endog))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return endog[order[a]] < endog[order[b]] })
	sortedX, sortedW := make([]float64, len(endog)), make([]float64, len(endog))
	for i, j := range order {
		sortedX[i], sortedW[i] = endog[j], weights[j]
	}

	if clip != nil {
		sortedX, sortedW = Clip(sortedX, sortedW, clip)
		if len(sortedX) == 0 {
			return nil, common.ErrorInvalidValue
		}
	}

	if cut == 0 {
		cut = DefaultCut
	}
	if bwAdjust == 0 {
		bwAdjust = DefaultBwAdjust
	}
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}

	kde := &KDEUnivariate{
		Weights:  sortedW,
		gridSize: gridSize,
		bwAdjust: bwAdjust,
		cut:      cut,
		Endog:    sortedX,
	}

	return kde, nil
}

func (kde *KDEUnivariate) Kdensity() ([]model.Density, float64) {
	if kde.fited {
		return kde.density, kde.bw
	}

	kernel := NewGaussianKernel()
	bandWidth := NewNormalReferenceBandWidth(kernel)

	bw := bandWidth.BandWidth(kde.Endog)

	bw = bw * kde.bwAdjust
	kernel.SetH(bw)
	kernel.SetWeights(kde.Weights)

	// truncated at zero, rates and fluxes cannot be negative
	a := max(floats.Min(kde.Endog)-kde.cut*bw, 0)
	b := floats.Max(kde.Endog) + kde.cut*bw
	grid := utils.Linspace(a, b, kde.gridSize)

	res := make([]model.Density, len(grid))
	for i, x := range grid {
		res[i] = model.Density{
			X:     x,
			Value: kernel.Density(kde.Endog, x),
		}
	}

	kde.density = res
	kde.bw = bw
	kde.grid = grid
	kde.fited = true
	kde.kernel = kernel

	return res, bw
}

func (kde *KDEUnivariate) Cdf() ([]model.Cdf, error) {
	if !kde.fited {
		kde.Kdensity()
	}

	if len(kde.cdf) > 0 {
		return kde.cdf, nil
	}

	a := 0.0
	newGrid := []float64{a}
	newGrid = append(newGrid, kde.grid...)
	gridsize := len(newGrid)

	f := func(x float64) float64 {
		return kde.kernel.Density(kde.Endog, x)
	}

	res := []model.Cdf{}

	var cumSum float64

	for i := 1; i < gridsize; i++ {
		if newGrid[i] > newGrid[i-1] {
			cumSum += quad.Fixed(f, newGrid[i-1], newGrid[i], CdfQuadNodes, nil, 0)
		}
		res = append(res, model.Cdf{
			X:     newGrid[i],
			Value: cumSum,
		})
	}

	kde.cdf = res
	return res, nil
}

// Quantile inverts the CDF by linear interpolation between grid points.
func (kde *KDEUnivariate) Quantile(p float64) (*model.QuantileValue, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, common.ErrorInvalidValue
	}

	cdf, err := kde.Cdf()
	if err != nil {
		return nil, err
	}

	if len(cdf) == 0 {
		return nil, common.ErrorInvalidValue
	}
	if p <= cdf[0].Value {
		return &model.QuantileValue{
			Quantile: p,
			Value:    cdf[0].X,
		}, nil
	}

	if p >= cdf[len(cdf)-1].Value {
		return &model.QuantileValue{
			Quantile: p,
			Value:    cdf[len(cdf)-1].X,
		}, nil
	}

	for i := 1; i < len(cdf); i++ {
		if cdf[i].Value > p {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			value := lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP)
			return &model.QuantileValue{
				Quantile: p,
				Value:    value,
			}, nil
		}
	}
	return &model.QuantileValue{
		Quantile: p,
		Value:    cdf[len(cdf)-1].X,
	}, nil
}
