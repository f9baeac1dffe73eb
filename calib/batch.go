package calib

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// CurveSource resolves calibration curves, see curve.Store.
type CurveSource interface {
	Resolve(ctx context.Context, id model.CurveID, postbomb curve.PostbombID) (*curve.Curve, error)
}

// Defaults apply to every date that does not carry its own value.
type Defaults struct {
	Curve    model.CurveID
	Postbomb curve.PostbombID
	Offset   model.Offset
	Noise    model.NoiseModel
	Options  Options
}

func DefaultDefaults() Defaults {
	return Defaults{
		Curve:   model.CurveIntCal20,
		Noise:   DefaultNoiseModel(),
		Options: DefaultOptions(),
	}
}

func (d Defaults) validate() error {
	if d.Curve == model.CurveDefault {
		return common.ConfigurationErrorf("default curve must name a curve")
	}
	if _, err := curve.PostbombIDFromCode(int(d.Postbomb)); err != nil {
		return err
	}
	if err := ValidateNoiseModel(d.Noise); err != nil {
		return err
	}
	return d.Options.validate()
}

// plan is what one date is calibrated with.
type plan struct {
	curve    model.CurveID // CurveNone means an identity curve
	mean     float64
	variance float64
	sdev     float64
	noise    model.NoiseModel
}

func planDate(record model.DateRecord, defaults Defaults) (plan, error) {
	core := record.Core()
	if !(core.Error > 0) {
		return plan{}, common.InvalidValuef("error must be positive, got %v", core.Error)
	}

	p := plan{
		curve:    model.CurveNone,
		mean:     core.Mean,
		variance: core.Error * core.Error,
		sdev:     core.Error,
		noise:    defaults.Noise,
	}
	// rows only override the Student-t shape, the likelihood stays the batch's
	if core.Noise != nil {
		p.noise.TA, p.noise.TB = core.Noise.TA, core.Noise.TB
		if err := ValidateNoiseModel(p.noise); err != nil {
			return plan{}, err
		}
	}

	switch r := record.(type) {
	case model.RadiocarbonDate:
		p.curve = r.Curve
		if p.curve == model.CurveDefault {
			p.curve = defaults.Curve
		}
		// offsets only shift dates that are calibrated against a curve
		if p.curve != model.CurveNone {
			offset := defaults.Offset
			if r.Offset != nil {
				if !math.IsNaN(r.Offset.Mean) {
					offset.Mean = r.Offset.Mean
				}
				if !math.IsNaN(r.Offset.Error) {
					offset.Error = r.Offset.Error
				}
			}
			p.mean -= offset.Mean
			p.variance += offset.Error * offset.Error
		}
	case model.CalendarDate, model.PbActivityDate:
	default:
		return plan{}, common.InvalidValuef("unsupported date record %T", record)
	}
	return p, nil
}

// CalibrateBatch calibrates every date in order. The i-th distribution
// belongs to dates[i] and carries its ID and depth.
func CalibrateBatch(ctx context.Context, source CurveSource, dates []model.DateRecord,
	defaults Defaults) (res []*model.CalibratedDistribution, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("CalibrateBatch recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()))
			res, err = nil, fmt.Errorf("calibrate batch: panic: %v", r)
		}
	}()

	if err := defaults.validate(); err != nil {
		return nil, err
	}

	res = make([]*model.CalibratedDistribution, 0, len(dates))
	for i, record := range dates {
		core := record.Core()
		dist, err := calibrateDate(ctx, source, record, defaults)
		if err != nil {
			logger.Error("calibrate date failed", zap.Int("row", i), zap.String("id", core.ID), zap.Error(err))
			return nil, fmt.Errorf("date %d (%s): %w", i, core.ID, err)
		}
		dist.ID, dist.Depth = core.ID, core.Depth
		res = append(res, dist)
	}

	logger.Info("calibrated dates", zap.Int("count", len(res)), zap.Stringer("cc", defaults.Curve))
	return res, nil
}

func calibrateDate(ctx context.Context, source CurveSource, record model.DateRecord,
	defaults Defaults) (*model.CalibratedDistribution, error) {
	p, err := planDate(record, defaults)
	if err != nil {
		return nil, err
	}

	var cc *curve.Curve
	if p.curve == model.CurveNone {
		cc, err = curve.Identity(p.mean, p.sdev)
	} else {
		if source == nil {
			return nil, common.ConfigurationErrorf("no curve source for %s", p.curve)
		}
		cc, err = source.Resolve(ctx, p.curve, defaults.Postbomb)
	}
	if err != nil {
		return nil, err
	}

	if p.curve != model.CurveNone && !coversMeasurement(cc, p.mean) {
		utils.GetLogger(ctx).Warn("date outside calibration curve range",
			zap.String("id", record.Core().ID), zap.Float64("mean", p.mean), zap.String("curve", cc.Name()))
	}
	return Calibrate(cc, p.mean, p.variance, p.noise, defaults.Options)
}

// coversMeasurement reports whether mean falls between the smallest and
// largest curve means.
func coversMeasurement(cc *curve.Curve, mean float64) bool {
	lo, hi := cc.Point(0).Mean, cc.Point(0).Mean
	for i := 1; i < cc.Len(); i++ {
		m := cc.Point(i).Mean
		lo, hi = min(lo, m), max(hi, m)
	}
	return mean >= lo && mean <= hi
}
