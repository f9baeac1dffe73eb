package calib

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/floats"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// linearCurve tabulates mean = offset + age with a constant error.
func linearCurve(maxAge, step, offset, sdev float64) string {
	var sb strings.Builder
	for age := maxAge; age >= 0; age -= step {
		fmt.Fprintf(&sb, "%v %v %v\n", age, age+offset, sdev)
	}
	return sb.String()
}

func testStore() *curve.Store {
	return curve.NewStore(fstest.MapFS{
		"3Col_intcal20.14C": {Data: []byte(linearCurve(10000, 10, 0, 20))},
		"3Col_marine20.14C": {Data: []byte(linearCurve(10000, 10, 400, 25))},
		"3Col_shcal20.14C":  {Data: []byte(linearCurve(10000, 10, -20, 20))},
		"postbomb_NH1.14C":  {Data: []byte("-1 -300 5\n-60 -9000 5\n")},
	})
}

func mustCurve(t *testing.T, id model.CurveID) *curve.Curve {
	c, err := testStore().Load(context.Background(), id)
	require.NoError(t, err)
	return c
}

func gaussian() model.NoiseModel {
	return model.NoiseModel{Normal: true, TA: DefaultTA, TB: DefaultTB}
}

func TestCalibrateSumsToOne(t *testing.T) {
	cc := mustCurve(t, model.CurveIntCal20)

	for _, noise := range []model.NoiseModel{gaussian(), DefaultNoiseModel(), {TA: 10, TB: 11}} {
		for _, mean := range []float64{150, 2000, 9990} {
			dist, err := Calibrate(cc, mean, 30*30, noise, DefaultOptions())
			require.NoError(t, err)
			assert.InDelta(t, 1, floats.Sum(dist.Probs), 1e-9)
			assert.Equal(t, len(dist.Ages), len(dist.Probs))
			for i := 1; i < len(dist.Ages); i++ {
				assert.Less(t, dist.Ages[i-1], dist.Ages[i])
			}
			for _, p := range dist.Probs {
				assert.Greater(t, p, DefaultCutoff*0.9)
			}
		}
	}
}

func TestCalibrateCentresOnCurve(t *testing.T) {
	cc := mustCurve(t, model.CurveMarine20)

	dist, err := Calibrate(cc, 2400, 25*25, gaussian(), DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2000, Mean(dist), 2)
	// curve and measurement errors add in quadrature
	assert.InDelta(t, math.Sqrt(25*25+25*25), StdDev(dist), 4)
}

func TestCalibrateStudentTIsWider(t *testing.T) {
	cc := mustCurve(t, model.CurveIntCal20)

	normal, err := Calibrate(cc, 3000, 40*40, gaussian(), DefaultOptions())
	require.NoError(t, err)
	student, err := Calibrate(cc, 3000, 40*40, DefaultNoiseModel(), DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, Mean(normal), Mean(student), 1)
	assert.Greater(t, StdDev(student), StdDev(normal))
}

func TestCalibrateRejectsAsymmetricStudentT(t *testing.T) {
	cc := mustCurve(t, model.CurveIntCal20)

	for _, noise := range []model.NoiseModel{
		{TA: 3, TB: 3},
		{TA: 3, TB: 5},
		{TA: 4, TB: 3},
		{Normal: true, TA: 1, TB: 3},
	} {
		for _, mean := range []float64{-50, 100, 5000} {
			_, err := Calibrate(cc, mean, 100, noise, DefaultOptions())
			assert.ErrorIs(t, err, common.ErrorConfiguration, "noise %+v mean %v", noise, mean)
		}
	}
}

func TestCalibratePreciseDateIsResampled(t *testing.T) {
	coarse, err := curve.New("coarse", func() []model.CurvePoint {
		points := []model.CurvePoint{}
		for age := 0.0; age <= 5000; age += 100 {
			points = append(points, model.CurvePoint{CalAge: age, Mean: age})
		}
		return points
	}())
	require.NoError(t, err)

	dist, err := Calibrate(coarse, 2000, 1, gaussian(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, dist.Ages, ResampleSize)
	assert.Equal(t, 0.0, dist.Ages[0])
	assert.Equal(t, 5000.0, dist.Ages[ResampleSize-1])
	assert.InDelta(t, 1, floats.Sum(dist.Probs), 1e-9)
	assert.InDelta(t, 2000, Mode(dist), 60)
}

func TestCalibrateIdentityCurve(t *testing.T) {
	for _, sdev := range []float64{10, 50, 300} {
		cc, err := curve.Identity(1000, sdev)
		require.NoError(t, err)

		dist, err := Calibrate(cc, 1000, sdev*sdev, gaussian(), DefaultOptions())
		require.NoError(t, err)
		assert.InDelta(t, 1000, Mean(dist), sdev*0.02)
		assert.InEpsilon(t, sdev, StdDev(dist), 0.1, "sdev %v", sdev)
	}
}

func TestCalibrateInvalidInput(t *testing.T) {
	cc := mustCurve(t, model.CurveIntCal20)

	_, err := Calibrate(cc, 1000, 0, gaussian(), DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = Calibrate(nil, 1000, 1, gaussian(), DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = Calibrate(cc, math.NaN(), 1, gaussian(), DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = Calibrate(cc, 1000, 1, gaussian(), Options{Cutoff: 2, ResampleSize: 100})
	assert.ErrorIs(t, err, common.ErrorConfiguration)
}

func TestCalibrateBatch(t *testing.T) {
	ctx := context.Background()
	store := testStore()
	defaults := DefaultDefaults()

	t.Run("row order and identity", func(t *testing.T) {
		dates := []model.DateRecord{
			model.RadiocarbonDate{DateCore: model.DateCore{ID: "c14", Depth: 10, Mean: 2000, Error: 30}},
			model.CalendarDate{DateCore: model.DateCore{ID: "cal", Depth: 5, Mean: 500, Error: 20}},
			model.PbActivityDate{DateCore: model.DateCore{ID: "pb", Depth: 1, Mean: 50, Error: 5}},
		}
		res, err := CalibrateBatch(ctx, store, dates, defaults)
		require.NoError(t, err)
		require.Len(t, res, 3)
		for i, d := range dates {
			assert.Equal(t, d.Core().ID, res[i].ID)
			assert.Equal(t, d.Core().Depth, res[i].Depth)
			assert.InDelta(t, 1, floats.Sum(res[i].Probs), 1e-9)
		}
		assert.InDelta(t, 500, Mean(res[1]), 2)
	})

	t.Run("equivalent rows calibrate identically", func(t *testing.T) {
		core := model.DateCore{Mean: 3000, Error: 40}
		dates := []model.DateRecord{
			model.RadiocarbonDate{DateCore: core},
			model.RadiocarbonDate{DateCore: core, Curve: model.CurveIntCal20},
			model.RadiocarbonDate{DateCore: core, Curve: model.CurveNone, Offset: &model.Offset{Mean: 100}},
			model.CalendarDate{DateCore: core},
			model.PbActivityDate{DateCore: core},
		}
		res, err := CalibrateBatch(ctx, store, dates, defaults)
		require.NoError(t, err)
		assert.Equal(t, res[0].Probs, res[1].Probs)
		assert.Equal(t, res[2].Ages, res[3].Ages)
		assert.Equal(t, res[2].Probs, res[3].Probs)
		assert.Equal(t, res[3].Probs, res[4].Probs)
	})

	t.Run("offsets", func(t *testing.T) {
		core := model.DateCore{Mean: 3000, Error: 40}
		withDefault := defaults
		withDefault.Offset = model.Offset{Mean: 100, Error: 30}

		res, err := CalibrateBatch(ctx, store, []model.DateRecord{
			model.RadiocarbonDate{DateCore: core},
			model.RadiocarbonDate{DateCore: core, Offset: &model.Offset{}},
		}, withDefault)
		require.NoError(t, err)

		cc := mustCurve(t, model.CurveIntCal20)
		want, err := Calibrate(cc, 2900, 40*40+30*30, defaults.Noise, defaults.Options)
		require.NoError(t, err)
		assert.Equal(t, want.Probs, res[0].Probs)
		assert.InDelta(t, 3000, Mean(res[1]), 3)
	})

	t.Run("per row noise model", func(t *testing.T) {
		core := model.DateCore{Mean: 3000, Error: 40, Noise: &model.NoiseModel{TA: 3, TB: 5}}
		_, err := CalibrateBatch(ctx, store, []model.DateRecord{model.RadiocarbonDate{DateCore: core}}, defaults)
		assert.ErrorIs(t, err, common.ErrorConfiguration)

		core.Noise = &model.NoiseModel{TA: 20, TB: 21}
		res, err := CalibrateBatch(ctx, store, []model.DateRecord{model.RadiocarbonDate{DateCore: core}}, defaults)
		require.NoError(t, err)
		wide, err := CalibrateBatch(ctx, store, []model.DateRecord{model.RadiocarbonDate{DateCore: model.DateCore{Mean: 3000, Error: 40}}}, defaults)
		require.NoError(t, err)
		assert.Less(t, StdDev(res[0]), StdDev(wide[0]))
	})

	t.Run("per row noise model keeps a gaussian batch gaussian", func(t *testing.T) {
		normal := defaults
		normal.Noise = gaussian()
		plain := model.DateCore{Mean: 3000, Error: 40}
		shaped := plain
		shaped.Noise = &model.NoiseModel{TA: 3, TB: 4}

		res, err := CalibrateBatch(ctx, store, []model.DateRecord{
			model.RadiocarbonDate{DateCore: plain},
			model.RadiocarbonDate{DateCore: shaped},
		}, normal)
		require.NoError(t, err)
		assert.Equal(t, res[0].Ages, res[1].Ages)
		assert.Equal(t, res[0].Probs, res[1].Probs)

		shaped.Noise = &model.NoiseModel{TA: 3, TB: 5}
		_, err = CalibrateBatch(ctx, store, []model.DateRecord{model.RadiocarbonDate{DateCore: shaped}}, normal)
		assert.ErrorIs(t, err, common.ErrorConfiguration)
	})

	t.Run("partial offset keeps the batch default", func(t *testing.T) {
		core := model.DateCore{Mean: 3000, Error: 40}
		withDefault := defaults
		withDefault.Offset = model.Offset{Mean: 100, Error: 30}

		res, err := CalibrateBatch(ctx, store, []model.DateRecord{
			model.RadiocarbonDate{DateCore: core, Offset: &model.Offset{Mean: math.NaN(), Error: 10}},
			model.RadiocarbonDate{DateCore: core, Offset: &model.Offset{Mean: 50, Error: math.NaN()}},
		}, withDefault)
		require.NoError(t, err)

		cc := mustCurve(t, model.CurveIntCal20)
		wantError, err := Calibrate(cc, 2900, 40*40+10*10, defaults.Noise, defaults.Options)
		require.NoError(t, err)
		wantMean, err := Calibrate(cc, 2950, 40*40+30*30, defaults.Noise, defaults.Options)
		require.NoError(t, err)
		assert.Equal(t, wantError.Probs, res[0].Probs)
		assert.Equal(t, wantMean.Probs, res[1].Probs)
	})

	t.Run("invalid defaults", func(t *testing.T) {
		bad := defaults
		bad.Noise = model.NoiseModel{TA: 1, TB: 1}
		_, err := CalibrateBatch(ctx, store, nil, bad)
		assert.ErrorIs(t, err, common.ErrorConfiguration)

		bad = defaults
		bad.Postbomb = curve.PostbombID(7)
		_, err = CalibrateBatch(ctx, store, nil, bad)
		assert.ErrorIs(t, err, common.ErrorConfiguration)

		bad = defaults
		bad.Curve = model.CurveDefault
		_, err = CalibrateBatch(ctx, store, nil, bad)
		assert.ErrorIs(t, err, common.ErrorConfiguration)
	})

	t.Run("missing curve", func(t *testing.T) {
		_, err := CalibrateBatch(ctx, store, []model.DateRecord{
			model.RadiocarbonDate{DateCore: model.DateCore{ID: "m", Mean: 100, Error: 10}, Curve: model.CurveMixed},
		}, defaults)
		var notFound *common.CurveNotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Contains(t, err.Error(), "date 0 (m)")
	})

	t.Run("postbomb dates", func(t *testing.T) {
		withBomb := defaults
		withBomb.Postbomb = curve.PostbombNH1
		withBomb.Noise = gaussian()
		res, err := CalibrateBatch(ctx, store, []model.DateRecord{
			model.RadiocarbonDate{DateCore: model.DateCore{Mean: -4650, Error: 20}},
		}, withBomb)
		require.NoError(t, err)
		assert.Less(t, Mean(res[0]), 0.0)
	})

	t.Run("warns outside the curve", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		wctx := utils.WithLogger(ctx, zap.New(core))
		_, err := CalibrateBatch(wctx, store, []model.DateRecord{
			model.RadiocarbonDate{DateCore: model.DateCore{ID: "old", Mean: 10100, Error: 50}},
		}, defaults)
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("date outside calibration curve range").Len())
	})
}

func TestConversions(t *testing.T) {
	t.Run("post-bomb pMC gives negative ages", func(t *testing.T) {
		age, _, err := PMCToAge(110, 0.5)
		require.NoError(t, err)
		assert.Less(t, age, 0.0)
		assert.InDelta(t, -766, age, 1)

		age, _, err = PMCToAge(80, 0.5)
		require.NoError(t, err)
		assert.Greater(t, age, 0.0)
	})

	t.Run("round trips", func(t *testing.T) {
		for _, c := range [][2]float64{{110, 0.5}, {80, 0.5}, {100, 1}, {3.2, 0.1}} {
			age, ageSdev, err := PMCToAge(c[0], c[1])
			require.NoError(t, err)
			pmc, sdev := AgeToPMC(age, ageSdev)
			assert.InDelta(t, c[0], pmc, 1e-9)
			assert.InDelta(t, c[1], sdev, 1e-9)
		}
		for _, c := range [][2]float64{{-500, 20}, {0, 30}, {12000, 80}} {
			pmc, sdev := AgeToPMC(c[0], c[1])
			age, ageSdev, err := PMCToAge(pmc, sdev)
			require.NoError(t, err)
			assert.InDelta(t, c[0], age, 1e-6)
			assert.InDelta(t, c[1], ageSdev, 1e-6)
		}
	})

	t.Run("F14C", func(t *testing.T) {
		f, fs := AgeToF14C(1000, 30)
		age, sdev, err := F14CToAge(f, fs)
		require.NoError(t, err)
		assert.InDelta(t, 1000, age, 1e-6)
		assert.InDelta(t, 30, sdev, 1e-6)
	})

	t.Run("invalid pMC", func(t *testing.T) {
		_, _, err := PMCToAge(0, 1)
		assert.ErrorIs(t, err, common.ErrorInvalidValue)
	})

	t.Run("BC/AD", func(t *testing.T) {
		assert.Equal(t, 1950.0, CalBPToBCAD(0))
		assert.Equal(t, -50.0, CalBPToBCAD(2000))
		assert.Equal(t, 2000.0, BCADToCalBP(CalBPToBCAD(2000)))
	})
}

func TestSummaries(t *testing.T) {
	dist := &model.CalibratedDistribution{
		Ages:  []float64{100, 110, 120, 130, 140, 150},
		Probs: []float64{0.05, 0.4, 0.05, 0.02, 0.38, 0.1},
	}
	assert.Equal(t, 110.0, Mode(dist))
	assert.InDelta(t, 0.05*100+0.4*110+0.05*120+0.02*130+0.38*140+0.1*150, Mean(dist), 1e-9)
	assert.Equal(t, 110.0, Quantile(dist, 0.3))
	assert.Equal(t, 150.0, Quantile(dist, 0.99))

	ranges := HPD(dist, 0.85)
	require.Len(t, ranges, 2)
	assert.Equal(t, Range{From: 110, To: 110, Prob: 0.4}, ranges[0])
	assert.Equal(t, 140.0, ranges[1].From)
	assert.Equal(t, 150.0, ranges[1].To)
	assert.InDelta(t, 0.48, ranges[1].Prob, 1e-12)

	empty := &model.CalibratedDistribution{}
	assert.True(t, math.IsNaN(Mean(empty)))
	assert.Nil(t, HPD(empty, 0.95))
}

func TestLogSumExp(t *testing.T) {
	assert.InDelta(t, math.Log(3), LogSumExp([]float64{0, 0, 0}), 1e-12)
	assert.True(t, math.IsInf(LogSumExp([]float64{math.Inf(-1)}), -1))
	probs := ListExp(NormalizeData([]float64{-1000, -1000 + math.Log(3)}))
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, probs, 1e-12)
}

func TestKeepSupport(t *testing.T) {
	ages := []float64{10, 20, 30, 40}
	probs := []float64{0.0005, 0.001, 0.5, 0.4985}

	keptAges, keptProbs := keepSupport(ages, probs, 0.001)
	assert.Equal(t, []float64{20, 30, 40}, keptAges)
	assert.Equal(t, []float64{0.001, 0.5, 0.4985}, keptProbs)

	keptAges, _ = keepSupport(ages, probs, 0.6)
	assert.Empty(t, keptAges)
}
