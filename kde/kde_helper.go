package kde

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

type SummaryOptions struct {
	// Prob is the mass of the central credible interval.
	Prob     float64
	GridSize int
	Cut      float64
	// FromDensity takes the interval from the density's CDF instead of the
	// empirical sample quantiles.
	FromDensity bool
}

type Summary struct {
	Density  []model.Density
	Interval model.ConfidenceInterval
	Mean     float64
	N        int
}

// Summarize estimates the density of posterior samples, truncated at zero,
// with a central credible interval of opts.Prob and the sample mean.
func Summarize(ctx context.Context, values []float64, opts SummaryOptions) (summary *Summary, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Summarize recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.Int("valueCnt", len(values)))
			summary, err = nil, fmt.Errorf("%w: summarize panic: %v", common.ErrorInvalidValue, r)
		}
	}()

	if math.IsNaN(opts.Prob) || opts.Prob <= 0 || opts.Prob >= 1 {
		return nil, common.InvalidValuef("credible interval probability %v outside (0, 1)", opts.Prob)
	}

	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sorted = append(sorted, v)
	}
	if len(sorted) < MinSampleCnt {
		logger.Debug("point too little, skip calculate", zap.Int("cnt", len(sorted)))
		return nil, common.InvalidValuef("%d samples, need %d", len(sorted), MinSampleCnt)
	}
	sort.Float64s(sorted)

	k, err := NewKDEUnivariate(sorted, nil, DefaultBwAdjust, opts.Cut, opts.GridSize, nil)
	if err != nil {
		logger.Error("NewKDEUnivariate failed", zap.Error(err))
		return nil, err
	}
	density, _ := k.Kdensity()

	lowerP, upperP := (1-opts.Prob)/2, 1-(1-opts.Prob)/2
	var lower, upper *model.QuantileValue
	if opts.FromDensity {
		if lower, err = k.Quantile(lowerP); err != nil {
			logger.Error("kde Quantile failed", zap.Error(err), zap.Float64("value", lowerP))
			return nil, err
		}
		if upper, err = k.Quantile(upperP); err != nil {
			logger.Error("kde Quantile failed", zap.Error(err), zap.Float64("value", upperP))
			return nil, err
		}
	} else {
		lower = &model.QuantileValue{Quantile: lowerP, Value: stat.Quantile(lowerP, stat.LinInterp, sorted, nil)}
		upper = &model.QuantileValue{Quantile: upperP, Value: stat.Quantile(upperP, stat.LinInterp, sorted, nil)}
	}

	return &Summary{
		Density:  density,
		Interval: model.ConfidenceInterval{Lower: lower, Upper: upper},
		Mean:     stat.Mean(sorted, nil),
		N:        len(sorted),
	}, nil
}
