package ghost

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/ensemble"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// FluxProfile is one proxy's concentration against depth.
type FluxProfile struct {
	Proxy  string
	Depths []float64
	Values []float64
}

// ReadFluxProfile reads a comma-separated table whose first column is depth
// and keeps concentration column proxy (1 is the first after depth). Rows
// missing either value are dropped.
func ReadFluxProfile(r io.Reader, proxy int) (*FluxProfile, error) {
	if proxy < 1 {
		return nil, common.InvalidValuef("proxy column %d, use 1 or higher", proxy)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "flux file header")
	}
	if proxy >= len(header) {
		return nil, common.InvalidValuef("proxy column %d not in header with %d concentration columns", proxy, len(header)-1)
	}

	profile := &FluxProfile{Proxy: strings.TrimSpace(header[proxy])}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "flux file line %d", line)
		}
		if proxy >= len(row) {
			continue
		}
		depth, ok, err := parseValue(row[0])
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "flux file line %d depth", line)
		}
		value, ok2, err := parseValue(row[proxy])
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "flux file line %d %s", line, profile.Proxy)
		}
		if !ok || !ok2 {
			continue
		}
		profile.Depths = append(profile.Depths, depth)
		profile.Values = append(profile.Values, value)
	}
	if len(profile.Depths) == 0 {
		return nil, common.InvalidValuef("flux file has no values for %s", profile.Proxy)
	}
	return profile, nil
}

func parseValue(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if missingValues[s] {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, !math.IsNaN(v), nil
}

// Fluxes computes, for every iteration, concentration / accumulation rate at
// each proxy depth and interpolates it at ages. The result has one row per
// iteration and one column per age; ages an iteration does not reach are NaN.
func Fluxes(ctx context.Context, e *ensemble.Ensemble, profile *FluxProfile, ages []float64) *mat.Dense {
	logger := utils.GetLogger(ctx)

	depths, values := []float64{}, []float64{}
	for i, d := range profile.Depths {
		if d < e.DepthMin() || d > e.DepthMax() {
			continue
		}
		depths = append(depths, d)
		values = append(values, profile.Values[i])
	}
	if skipped := len(profile.Depths) - len(depths); skipped > 0 {
		logger.Warn("proxy depths outside the age-depth model", zap.Int("skipped", skipped),
			zap.Float64("min_depth", e.DepthMin()), zap.Float64("max_depth", e.DepthMax()))
	}

	if len(ages) == 0 {
		return nil
	}
	res := mat.NewDense(e.Iterations(), len(ages), nil)
	iterAges := make([]float64, len(depths))
	iterFlux := make([]float64, len(depths))
	for iter := 0; iter < e.Iterations(); iter++ {
		for j, d := range depths {
			iterAges[j] = e.AgeAtDepth(iter, d)
			iterFlux[j] = values[j] / e.RateAtDepth(iter, d)
		}
		res.SetRow(iter, utils.Approx(iterAges, iterFlux, ages, false))
	}
	return res
}

// FluxAge is the ghost of proxy flux against calendar age.
func FluxAge(ctx context.Context, e *ensemble.Ensemble, profile *FluxProfile, ages []float64, opts Options) (*model.DensityField, error) {
	if profile == nil || len(profile.Depths) == 0 {
		return nil, common.InvalidValuef("empty flux profile")
	}
	fluxes := Fluxes(ctx, e, profile, ages)
	if fluxes == nil {
		return Render(ctx, nil, nil, opts)
	}
	return Render(ctx, ages, func(ctx context.Context, i int) []float64 {
		return mat.Col(nil, i, fluxes)
	}, opts)
}
