package ensemble

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// three iterations, four 5 cm segments from 10 cm
func testEnsemble(t *testing.T) *Ensemble {
	e, err := FromRows([][]float64{
		{100, 10, 20, 30, 40},
		{110, 12, 18, 32, 38},
		{90, 8, 22, 28, 42},
	}, 10, 5)
	require.NoError(t, err)
	return e
}

func observed(level zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return utils.WithLogger(context.Background(), zap.New(core)), logs
}

func TestEnsembleShape(t *testing.T) {
	e := testEnsemble(t)
	assert.Equal(t, 3, e.Iterations())
	assert.Equal(t, 4, e.K())
	assert.Equal(t, []float64{10, 15, 20, 25, 30}, e.Elbows())
	assert.Equal(t, 30.0, e.DepthMax())
	assert.Equal(t, []float64{12, 18, 32, 38}, e.Rates(1))
	assert.Equal(t, []float64{20, 18, 22}, e.Segment(1))
	assert.Equal(t, []float64{100, 150, 250, 400, 600}, e.Trajectory(0))
}

func TestNewValidation(t *testing.T) {
	_, err := FromRows(nil, 0, 1)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = FromRows([][]float64{{1}}, 0, 1)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = FromRows([][]float64{{1, 2}, {1}}, 0, 1)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = FromRows([][]float64{{1, 2}}, 0, 0)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestAgeAtDepth(t *testing.T) {
	e := testEnsemble(t)
	assert.Equal(t, 100.0, e.AgeAtDepth(0, 10))
	assert.Equal(t, 125.0, e.AgeAtDepth(0, 12.5))
	assert.Equal(t, 200.0, e.AgeAtDepth(0, 17.5))
	assert.Equal(t, 600.0, e.AgeAtDepth(0, 30))
	assert.True(t, math.IsNaN(e.AgeAtDepth(0, 9)))
	assert.True(t, math.IsNaN(e.AgeAtDepth(0, 31)))
	assert.Equal(t, []float64{125, 140, 110}, e.AgesAtDepth(12.5))
	assert.Equal(t, 30.0, e.RateAtDepth(0, 20))
	assert.True(t, math.IsNaN(e.RateAtDepth(0, 40)))
}

func TestAccrateAtDepth(t *testing.T) {
	e := testEnsemble(t)
	ctx := context.Background()

	t.Run("inside the elbows", func(t *testing.T) {
		assert.Equal(t, []float64{10, 12, 8}, e.AccrateAtDepth(ctx, 10))
		assert.Equal(t, []float64{10, 12, 8}, e.AccrateAtDepth(ctx, 14.9))
		assert.Equal(t, []float64{20, 18, 22}, e.AccrateAtDepth(ctx, 15))
		// the bottom elbow belongs to the last segment
		assert.Equal(t, []float64{40, 38, 42}, e.AccrateAtDepth(ctx, 30))
		for _, d := range []float64{10, 11, 19.99, 25, 29} {
			assert.Len(t, e.AccrateAtDepth(ctx, d), e.Iterations())
		}
	})

	t.Run("outside the elbows", func(t *testing.T) {
		wctx, logs := observed(zapcore.WarnLevel)
		assert.Nil(t, e.AccrateAtDepth(wctx, 9.99))
		assert.Nil(t, e.AccrateAtDepth(wctx, 30.01))
		assert.Equal(t, 2, logs.Len())
	})
}

func TestAccrateAtAge(t *testing.T) {
	e := testEnsemble(t)
	// trajectories: 100 150 250 400 600 / 110 170 260 420 610 / 90 130 240 380 590

	t.Run("brackets per iteration", func(t *testing.T) {
		ctx, logs := observed(zapcore.WarnLevel)
		assert.Equal(t, []float64{20, 12, 22}, e.AccrateAtAge(ctx, 160))
		assert.Equal(t, []float64{8}, e.AccrateAtAge(ctx, 95))
		assert.Equal(t, []float64{38}, e.AccrateAtAge(ctx, 605))
		assert.Equal(t, []float64{10, 12, 22}, e.AccrateAtAge(ctx, 130))
		assert.Zero(t, logs.Len())
	})

	t.Run("bottom of a trajectory", func(t *testing.T) {
		ctx, logs := observed(zapcore.WarnLevel)
		assert.Equal(t, []float64{40, 38}, e.AccrateAtAge(ctx, 600))
		assert.Equal(t, []float64{38}, e.AccrateAtAge(ctx, 610))
		assert.Equal(t, []float64{40, 38, 42}, e.AccrateAtAge(ctx, 590))
		assert.Zero(t, logs.Len())
	})

	t.Run("outside every trajectory", func(t *testing.T) {
		ctx, logs := observed(zapcore.WarnLevel)
		assert.Empty(t, e.AccrateAtAge(ctx, 50))
		assert.Empty(t, e.AccrateAtAge(ctx, 700))
		assert.Equal(t, 2, logs.FilterMessage("age outside the age-depth model").Len())
	})
}

func TestInvert(t *testing.T) {
	assert.Equal(t, []float64{0.1, 0.05, 2}, Invert([]float64{10, 20, 0.5}))
}

func TestReadOut(t *testing.T) {
	out := `100 10 20 0.5 -120.3
110 12 18 0.4 -119.8

90 8 22 0.6 -121.0
`
	m, err := ReadOut(strings.NewReader(out), 2)
	require.NoError(t, err)
	rows, cols := m.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 22.0, m.At(2, 2))

	all, err := ReadOut(strings.NewReader(out), 0)
	require.NoError(t, err)
	_, cols = all.Dims()
	assert.Equal(t, 5, cols)

	_, err = ReadOut(strings.NewReader(out), 5)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = ReadOut(strings.NewReader(""), 2)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = ReadOut(strings.NewReader("1 x 3\n"), 2)
	assert.Error(t, err)
}
