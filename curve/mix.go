package curve

import (
	"fmt"
	"math"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
)

// Mix blends cc2 into cc1 on cc1's calendar grid. cc2 is interpolated
// (clamped at its ends), shifted by offset.Mean and widened by offset.Error in
// quadrature. Means and errors are then combined as
// proportion*cc1 + (1-proportion)*cc2.
//
// The error combination is a weighted sum, not a variance combination.
func Mix(cc1, cc2 *Curve, proportion float64, offset model.Offset) (*Curve, error) {
	if cc1 == nil || cc2 == nil {
		return nil, common.InvalidValuef("mix needs two curves")
	}
	if math.IsNaN(proportion) || proportion < 0 || proportion > 1 {
		return nil, common.InvalidValuef("mix proportion %v outside [0, 1]", proportion)
	}

	means2, errors2 := cc2.Resample(cc1.ages)

	points := make([]model.CurvePoint, cc1.Len())
	for i := range points {
		mu2 := means2[i] + offset.Mean
		err2 := math.Sqrt(errors2[i]*errors2[i] + offset.Error*offset.Error)
		points[i] = model.CurvePoint{
			CalAge: cc1.ages[i],
			Mean:   proportion*cc1.means[i] + (1-proportion)*mu2,
			Error:  proportion*cc1.errors[i] + (1-proportion)*err2,
		}
	}
	return New(fmt.Sprintf("%s+%s(%v)", cc1.name, cc2.name, proportion), points)
}
